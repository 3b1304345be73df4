// Package memzero clears key material once it is no longer needed.
package memzero

import "runtime"

// Zero overwrites b with zeros. It is best effort: copies the runtime made
// earlier are not reached.
//
//go:noinline
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
