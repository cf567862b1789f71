// Package timelock holds the lifecycle errors and the deadline arithmetic
// shared by time-locked extensions.
package timelock
