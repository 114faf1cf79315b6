package fat12

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/aligator/fat12/checkpoint"
	"github.com/spf13/afero"
)

// fileSource provides all methods needed from the filesystem for File.
// It mainly exists to be able to mock the Fs in tests.
// Generated mock using mockgen:
//  mockgen -source=file.go -destination=file_mock_test.go -package fat12
type fileSource interface {
	readFileAt(entry DirEntry, offset int64, readSize int64) ([]byte, error)
	readDir(entry DirEntry) ([]DirEntry, error)
}

// File is an opened file or directory of a FAT12 volume. It implements afero.File.
// All writing methods fail with ErrReadOnly.
type File struct {
	fs     fileSource
	path   string
	entry  DirEntry
	offset int64

	// dirContent is loaded on the first Readdir call.
	dirContent []DirEntry
}

func (f *File) Close() error {
	*f = File{}
	return nil
}

func (f *File) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}

	if f.entry.IsDirectory {
		return 0, checkpoint.Wrap(syscall.EISDIR, ErrReadFile)
	}

	// Reading a file if the size has been already reached, makes no sense.
	if f.size() <= f.offset {
		return 0, io.EOF
	}

	data, err := f.fs.readFileAt(f.entry, f.offset, int64(len(p)))
	n = copy(p, data)

	// Seek even if an error occurred, errors from reading are used even if seek also errors.
	_, seekErr := f.Seek(int64(n), io.SeekCurrent)

	if err != nil {
		return n, checkpoint.Wrap(err, ErrReadFile)
	}

	if seekErr != nil {
		return n, checkpoint.Wrap(seekErr, ErrReadFile)
	}

	return n, nil
}

func (f *File) ReadAt(p []byte, off int64) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}

	if f.entry.IsDirectory {
		return 0, checkpoint.Wrap(syscall.EISDIR, ErrReadFile)
	}

	// Reading over the end makes no sense.
	if f.size() <= off {
		return 0, io.EOF
	}

	data, err := f.fs.readFileAt(f.entry, off, int64(len(p)))
	n = copy(p, data)

	if err != nil {
		return n, checkpoint.Wrap(err, ErrReadFile)
	}

	// ReaderAt has to return an error if less than len(p) bytes are read.
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Seek jumps to a specific offset in the file. This affects all Read operations except ReadAt.
// May return a syscall.EINVAL error if the whence value is invalid.
// May return an afero.ErrOutOfRange error if the offset is out of range.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset = f.offset + offset
	case io.SeekEnd:
		offset = f.size() + offset
	default:
		return 0, checkpoint.Wrap(ErrSeekFile, fmt.Errorf("%w, offset: %v, whence: %v", syscall.EINVAL, offset, whence))
	}

	if offset < 0 || offset > f.size() {
		return 0, checkpoint.Wrap(afero.ErrOutOfRange, fmt.Errorf("%w, offset: %v, whence: %v", ErrSeekFile, offset, whence))
	}

	f.offset = offset
	return offset, nil
}

func (f *File) Write(p []byte) (n int, err error) {
	return 0, checkpoint.Wrap(syscall.EROFS, ErrReadOnly)
}

func (f *File) WriteAt(p []byte, off int64) (n int, err error) {
	return 0, checkpoint.Wrap(syscall.EROFS, ErrReadOnly)
}

// Name returns the name the file was opened with.
func (f *File) Name() string {
	return f.path
}

// Readdir reads the contents of a directory like os.File.Readdir.
// If count > 0 at most count entries are returned and io.EOF at the end of the directory.
// If count <= 0 all remaining entries are returned.
// May return syscall.ENOTDIR if the current File is no directory.
func (f *File) Readdir(count int) ([]os.FileInfo, error) {
	if !f.entry.IsDirectory {
		return nil, checkpoint.Wrap(syscall.ENOTDIR, ErrReadDir)
	}

	if f.dirContent == nil {
		content, err := f.fs.readDir(f.entry)
		if err != nil {
			return nil, checkpoint.Wrap(err, ErrReadDir)
		}

		// Remember that the directory was read, even if it is empty.
		f.dirContent = make([]DirEntry, 0, len(content))
		f.dirContent = append(f.dirContent, content...)
	}

	start := int(f.offset)
	if start > len(f.dirContent) {
		start = len(f.dirContent)
	}

	end := len(f.dirContent)
	if count > 0 {
		if start == end {
			return []os.FileInfo{}, io.EOF
		}
		if start+count < end {
			end = start + count
		}
	}
	f.offset = int64(end)

	result := make([]os.FileInfo, end-start)
	for i, entry := range f.dirContent[start:end] {
		result[i] = entry.FileInfo()
	}

	return result, nil
}

func (f *File) Readdirnames(count int) ([]string, error) {
	content, err := f.Readdir(count)

	names := make([]string, len(content))
	for i, entry := range content {
		names[i] = entry.Name()
	}

	if err != nil {
		return names, checkpoint.Wrap(err, ErrReadDir)
	}
	return names, nil
}

func (f *File) Stat() (os.FileInfo, error) {
	return f.entry.FileInfo(), nil
}

func (f *File) Sync() error {
	return nil
}

func (f *File) Truncate(size int64) error {
	return checkpoint.Wrap(syscall.EROFS, ErrReadOnly)
}

func (f *File) WriteString(s string) (ret int, err error) {
	return f.Write([]byte(s))
}

func (f *File) size() int64 {
	if f.entry.IsDirectory {
		return 0
	}
	return int64(f.entry.Size)
}
