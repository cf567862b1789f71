/*
Package tunnel implements prepaid service tunnels.

A payer funds a tunnel with the price of a fixed amount of service time.
Once a short, fixed delay has passed, an authorizer releases the whole
payment to an account of the payee and the tunnel is closed. Each payer can
have a single open tunnel.

The authorizer is a placeholder for a threshold signature of the service
operators. It must sign the payout but is not checked against any set of
operators.
*/
package tunnel
