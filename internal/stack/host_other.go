//go:build !linux

package stack

// Host returns the backend for the running platform.
func Host() (Stack, error) { return nil, ErrUnsupported }
