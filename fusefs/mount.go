package fusefs

import (
	"time"

	"github.com/aligator/fat12"
	"github.com/aligator/fat12/checkpoint"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/sirupsen/logrus"
)

// Options configure the mount.
type Options struct {
	// FsName is shown as source in the mount table, e.g. the image path.
	FsName string
	// AllowOther allows other users to access the mount.
	AllowOther bool
	// Debug logs all FUSE requests.
	Debug bool
	// Timeout is the time the kernel may cache entries and attributes.
	// The default is one minute, the volume never changes while mounted.
	Timeout time.Duration

	Log logrus.FieldLogger
}

// Mount serves fsys read-only at mountpoint. The returned server has to be
// unmounted by the caller, Wait blocks until that happens.
func Mount(mountpoint string, fsys *fat12.Fs, opts Options) (*fuse.Server, error) {
	if opts.Timeout == 0 {
		opts.Timeout = time.Minute
	}
	if opts.FsName == "" {
		opts.FsName = "fat12"
	}

	root := NewRoot(fsys, opts.Log)

	server, err := fs.Mount(mountpoint, root, &fs.Options{
		MountOptions: fuse.MountOptions{
			FsName:     opts.FsName,
			Name:       "fat12",
			AllowOther: opts.AllowOther,
			Debug:      opts.Debug,
			Options:    []string{"ro"},
		},
		EntryTimeout: &opts.Timeout,
		AttrTimeout:  &opts.Timeout,
	})
	if err != nil {
		return nil, checkpoint.From(err)
	}

	root.log.WithFields(logrus.Fields{
		"mountpoint": mountpoint,
		"label":      fsys.Label(),
	}).Info("mounted FAT12 volume")

	return server, nil
}
