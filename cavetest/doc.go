/*
Package cavetest provides mocks and helpers shared by the tests of all
extensions: authenticators, transactions, handlers, decorators, keys and
stores.
*/
package cavetest
