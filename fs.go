package fat12

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/aligator/fat12/checkpoint"
	"github.com/spf13/afero"
)

// Fs is a read-only afero.Fs on top of a FAT12 Volume.
// It is safe for concurrent use, all access to the volume is serialized.
type Fs struct {
	lock   sync.Mutex
	volume *Volume
}

// New opens a FAT12 volume from reader and returns it as afero.Fs.
func New(reader io.ReadSeeker, opts ...Option) (*Fs, error) {
	volume, err := Open(reader, opts...)
	if err != nil {
		return nil, err
	}

	return NewFromVolume(volume), nil
}

// NewSkipChecks opens a FAT12 volume just like New but it skips most of the
// boot sector validations which may allow you to open not perfectly standard volumes.
// Use with caution!
func NewSkipChecks(reader io.ReadSeeker, opts ...Option) (*Fs, error) {
	return New(reader, append(opts, SkipChecks())...)
}

// NewFromVolume wraps an already opened volume.
func NewFromVolume(volume *Volume) *Fs {
	return &Fs{volume: volume}
}

// Volume returns the underlying volume. It must not be used concurrently to the Fs.
func (fs *Fs) Volume() *Volume {
	return fs.volume
}

// Label returns the volume label.
func (fs *Fs) Label() string {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.volume.Label()
}

// Usage returns the cluster statistics of the volume.
func (fs *Fs) Usage() Usage {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.volume.Usage()
}

// Close closes the volume.
func (fs *Fs) Close() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.volume.Close()
}

func (fs *Fs) readFileAt(entry DirEntry, offset int64, readSize int64) ([]byte, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.volume.ReadFileAt(entry, offset, readSize)
}

func (fs *Fs) readDir(entry DirEntry) ([]DirEntry, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.volume.ReadDir(entry)
}

func (fs *Fs) resolve(name string) (DirEntry, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.volume.Resolve(cleanPath(name))
}

// cleanPath converts the name into an absolute slash separated path.
// "", "." and "/" all refer to the root directory.
func cleanPath(name string) string {
	return path.Clean("/" + filepath.ToSlash(name))
}

func (fs *Fs) Create(name string) (afero.File, error) {
	return nil, readOnly()
}

func (fs *Fs) Mkdir(name string, perm os.FileMode) error {
	return readOnly()
}

func (fs *Fs) MkdirAll(path string, perm os.FileMode) error {
	return readOnly()
}

func (fs *Fs) Open(name string) (afero.File, error) {
	return fs.OpenFile(name, os.O_RDONLY, 0)
}

// OpenFile opens a file or directory. Only os.O_RDONLY is supported, all flags
// which would allow modifications fail with ErrReadOnly.
func (fs *Fs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 {
		return nil, readOnly()
	}

	entry, err := fs.resolve(name)
	if err != nil {
		return nil, err
	}

	return &File{
		fs:    fs,
		path:  name,
		entry: entry,
	}, nil
}

func (fs *Fs) Remove(name string) error {
	return readOnly()
}

func (fs *Fs) RemoveAll(path string) error {
	return readOnly()
}

func (fs *Fs) Rename(oldname, newname string) error {
	return readOnly()
}

func (fs *Fs) Stat(name string) (os.FileInfo, error) {
	entry, err := fs.resolve(name)
	if err != nil {
		return nil, err
	}

	return entry.FileInfo(), nil
}

func (fs *Fs) Name() string {
	return "fat12"
}

func (fs *Fs) Chmod(name string, mode os.FileMode) error {
	return readOnly()
}

func (fs *Fs) Chown(name string, uid, gid int) error {
	return readOnly()
}

func (fs *Fs) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return readOnly()
}

func readOnly() error {
	return checkpoint.Wrap(syscall.EROFS, ErrReadOnly)
}
