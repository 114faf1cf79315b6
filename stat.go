package fat12

import (
	"os"
	"time"
)

// FileInfo returns the entry as os.FileInfo.
func (e DirEntry) FileInfo() os.FileInfo {
	return entryFileInfo{e}
}

type entryFileInfo struct {
	entry DirEntry
}

func (e entryFileInfo) Name() string {
	return e.entry.Name
}

// Size is only meaningful for files, directories always report 0.
func (e entryFileInfo) Size() int64 {
	if e.entry.IsDirectory {
		return 0
	}
	return int64(e.entry.Size)
}

// Mode never contains write permissions as the filesystem is read-only.
func (e entryFileInfo) Mode() os.FileMode {
	if e.IsDir() {
		return os.ModeDir | 0555
	}
	return 0444
}

func (e entryFileInfo) ModTime() time.Time {
	return e.entry.Created
}

func (e entryFileInfo) IsDir() bool {
	return e.entry.IsDirectory
}

func (e entryFileInfo) Sys() interface{} {
	return e.entry
}
