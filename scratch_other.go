//go:build !linux

package semisort

// prefaultRegion is a no-op on non-Linux platforms.
func prefaultRegion(data []byte) {}
