/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each extension keeps a single configuration object, loaded from the genesis
file under the "conf" key and stored in the database under a key derived
from the package name. Handlers load it at runtime with Load.
*/
package gconf
