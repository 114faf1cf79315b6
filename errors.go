package fat12

import "errors"

// These errors describe why an operation on a volume failed.
// Most of them are returned wrapped by a checkpoint together with the matching
// syscall.Errno, so errors.Is works for both, e.g. with fs.ErrNotExist.
var (
	ErrInvalidVolume  = errors.New("invalid FAT12 volume")
	ErrOutOfRange     = errors.New("sector range out of bounds")
	ErrNotFound       = errors.New("no such file or directory")
	ErrNotADirectory  = errors.New("not a directory")
	ErrCorruptVolume  = errors.New("corrupt FAT12 volume")
	ErrInvalidCluster = errors.New("invalid cluster number")
	ErrInvalidSlot    = errors.New("invalid directory entry slot")
	ErrReadOnly       = errors.New("the FAT12 filesystem is read-only")
)

// These errors may occur while processing a file.
var (
	ErrReadFile = errors.New("could not read file completely")
	ErrSeekFile = errors.New("could not seek inside of the file")
	ErrReadDir  = errors.New("could not read the directory")
)
