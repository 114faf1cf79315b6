package fusefs

import (
	"errors"
	"syscall"
)

// toErrno finds the syscall.Errno inside of err. Errors without one, like
// ErrCorruptVolume, are reported as EIO.
func toErrno(err error) syscall.Errno {
	if err == nil {
		return 0
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return syscall.EIO
}
