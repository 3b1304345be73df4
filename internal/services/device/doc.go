// Package device manages the local device identity.
//
// The identity is a random UUID created on first use and kept across
// logouts. It is only replaced when the operator asks for a reset.
package device
