//go:build linux

package semisort

import "golang.org/x/sys/unix"

// MADV_POPULATE_WRITE was added in Linux 5.14.
// On older kernels, madvise returns EINVAL which we ignore.
const madvPopulateWrite = 23

// prefaultRegion asks the kernel to prefault the mapped scratch for writing
// and hints that it will be accessed at random (sample flags, run markers).
func prefaultRegion(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, madvPopulateWrite)
	_ = unix.Madvise(data, unix.MADV_RANDOM)
}
