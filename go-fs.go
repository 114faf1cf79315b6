package fat12

import (
	"io"

	"github.com/spf13/afero"
)

// NewIOFS opens a FAT12 volume from the given reader as fs.FS compatible filesystem.
// Paths have to follow the rules of fs.ValidPath, so they must not start with '/'.
func NewIOFS(reader io.ReadSeeker, opts ...Option) (afero.IOFS, error) {
	fs, err := New(reader, opts...)
	if err != nil {
		return afero.IOFS{}, err
	}

	return afero.NewIOFS(fs), nil
}
