package fat12

import (
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/aligator/fat12/checkpoint"
)

// Resolve returns the directory entry of the file or directory at path.
//
// The path is split at '/' and empty components are ignored, so "/" and ""
// resolve to the root directory, which is described by RootEntry.
// Names are compared case-sensitive after removing all spaces, against the
// normalized names of the entries (see DirEntry.Name).
//
// It fails with ErrNotFound (wrapping syscall.ENOENT) if a component does not
// exist and with ErrNotADirectory (wrapping syscall.ENOTDIR) if a component other
// than the last one is a file. A broken chain results in ErrCorruptVolume.
func (v *Volume) Resolve(path string) (DirEntry, error) {
	if err := v.checkOpen(); err != nil {
		return DirEntry{}, err
	}

	components := splitPath(path)

	// Each step searches one component in the entries of current. Matching the last
	// component ends the search, any other match has to be a directory to continue.
	current := RootEntry()
	for i, component := range components {
		match, err := v.find(current, component)
		if err != nil {
			return DirEntry{}, err
		}

		if i == len(components)-1 {
			return match, nil
		}

		if !match.IsDirectory {
			return DirEntry{}, checkpoint.Wrap(syscall.ENOTDIR, fmt.Errorf("%w: %v", ErrNotADirectory, "/"+strings.Join(components[:i+1], "/")))
		}
		current = match
	}

	return current, nil
}

// find searches name inside of the directory dir.
func (v *Volume) find(dir DirEntry, name string) (DirEntry, error) {
	name = removeSpaces(name)
	set := v.entries(dir)

	for {
		entry, err := set.Next()
		if err == io.EOF {
			return DirEntry{}, checkpoint.Wrap(syscall.ENOENT, fmt.Errorf("%w: %v", ErrNotFound, name))
		}
		if err != nil {
			return DirEntry{}, err
		}

		if entry.Kind == KindEntry && entry.Name == name {
			return entry, nil
		}
	}
}

// splitPath returns the non-empty components of path.
func splitPath(path string) []string {
	var components []string
	for _, component := range strings.Split(path, "/") {
		if component != "" {
			components = append(components, component)
		}
	}
	return components
}
