package fat12

import (
	"errors"
	"fmt"
	"io"
	"syscall"

	"github.com/aligator/fat12/checkpoint"
)

// entrySet yields the slots of one directory in stored order.
// For the root directory these come from the in-memory copy, for all other
// directories from the clusters of their chain, which are read one at a time.
type entrySet struct {
	volume *Volume
	chain  *chainWalker
	buffer []byte
	pos    int
}

// entries returns the entry set of dir, which has to be a directory.
func (v *Volume) entries(dir DirEntry) *entrySet {
	if dir.IsRoot() {
		root := v.root
		if size := int(v.geometry.RootDirEntryCount) * DirEntrySize; size < len(root) {
			root = root[:size]
		}
		return &entrySet{volume: v, buffer: root}
	}

	return &entrySet{volume: v, chain: v.walkChain(dir.FirstCluster)}
}

// Next decodes the next slot. It returns io.EOF after the last one.
func (s *entrySet) Next() (DirEntry, error) {
	for s.pos+DirEntrySize > len(s.buffer) {
		if s.chain == nil {
			return DirEntry{}, io.EOF
		}

		cluster, err := s.chain.Next()
		if err != nil {
			return DirEntry{}, err
		}

		s.buffer, err = s.volume.ReadCluster(cluster)
		if errors.Is(err, ErrOutOfRange) {
			return DirEntry{}, s.chain.corrupt(err)
		}
		if err != nil {
			return DirEntry{}, err
		}
		// A directory cluster cut by the end of the image would hide its last entries.
		if len(s.buffer) < int(s.volume.geometry.BytesPerCluster()) {
			return DirEntry{}, s.chain.corrupt(fmt.Errorf("the image ends inside of directory cluster %v: %w", cluster, io.ErrUnexpectedEOF))
		}
		s.pos = 0
	}

	entry, err := DecodeEntry(s.buffer[s.pos : s.pos+DirEntrySize])
	s.pos += DirEntrySize
	return entry, err
}

// ReadDir lists the files and directories inside of dir.
// Free slots, volume labels, long file name parts and the "." and ".." entries are left out.
func (v *Volume) ReadDir(dir DirEntry) ([]DirEntry, error) {
	if !dir.IsDirectory {
		return nil, checkpoint.Wrap(syscall.ENOTDIR, ErrNotADirectory)
	}
	if err := v.checkOpen(); err != nil {
		return nil, err
	}

	set := v.entries(dir)

	var result []DirEntry
	for {
		entry, err := set.Next()
		if err == io.EOF {
			return result, nil
		}
		if err != nil {
			return nil, checkpoint.Wrap(err, ErrReadDir)
		}

		if entry.Kind != KindEntry || entry.IsDotEntry() {
			continue
		}
		result = append(result, entry)
	}
}
