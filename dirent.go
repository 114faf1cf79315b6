package fat12

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/aligator/fat12/checkpoint"
)

// EntryKind tells if a decoded slot describes a file or directory.
type EntryKind int

const (
	// KindEntry is a file or directory.
	KindEntry EntryKind = iota
	// KindEmpty is a free or deleted slot.
	KindEmpty
	// KindSkip is a slot which is in use but names no file, like a volume label or a long file name part.
	KindSkip
)

const (
	slotFree    = 0x00
	slotDeleted = 0xE5
	// slotKanjiE5 is stored instead of 0xE5 if that is the real first character.
	slotKanjiE5 = 0x05
)

// DirEntry is one decoded directory entry slot.
type DirEntry struct {
	Kind EntryKind

	// RawName is the name and extension as stored, padded with spaces.
	RawName [11]byte
	// Name is the normalized name without any spaces. For files a '.' is
	// inserted between name and extension, so a file without extension ends with '.'.
	Name string

	Attributes   uint8
	IsDirectory  bool
	FirstCluster uint16
	Size         uint32
	Created      time.Time
}

// RootEntry returns the entry describing the root directory itself.
// The root directory has no slot on the disk, so this entry is synthetic.
func RootEntry() DirEntry {
	return DirEntry{
		Kind:        KindEntry,
		Name:        "/",
		Attributes:  AttrDirectory,
		IsDirectory: true,
	}
}

// IsRoot reports if the entry refers to the root directory region.
// This is also the case for ".." entries of directories located in the root directory.
func (e DirEntry) IsRoot() bool {
	return e.IsDirectory && e.FirstCluster == 0
}

// IsDotEntry reports the "." and ".." entries every subdirectory starts with.
func (e DirEntry) IsDotEntry() bool {
	return e.IsDirectory && (e.Name == "." || e.Name == "..")
}

// DecodeEntry decodes one 32 byte directory slot.
// Free, deleted and non-file slots are not an error, they are reported by the Kind.
func DecodeEntry(slot []byte) (DirEntry, error) {
	if len(slot) < DirEntrySize {
		return DirEntry{}, checkpoint.Wrap(ErrInvalidSlot, fmt.Errorf("a slot has %v bytes, got %v", DirEntrySize, len(slot)))
	}

	e := DirEntry{
		Attributes:   slot[offsetEntryAttribute],
		FirstCluster: binary.LittleEndian.Uint16(slot[offsetEntryCluster:]),
		Size:         binary.LittleEndian.Uint32(slot[offsetEntrySize:]),
		Created: ParseTimestamp(
			binary.LittleEndian.Uint16(slot[offsetEntryDate:]),
			binary.LittleEndian.Uint16(slot[offsetEntryTime:]),
		),
	}
	copy(e.RawName[:], slot[offsetEntryName:offsetEntryName+11])
	e.IsDirectory = e.Attributes&AttrDirectory != 0

	switch {
	case e.RawName[0] == slotFree, e.RawName[0] == slotDeleted:
		e.Kind = KindEmpty
		return e, nil
	case e.Attributes&0x3F == AttrLongName:
		e.Kind = KindSkip
	case e.Attributes&AttrVolumeLabel != 0:
		e.Kind = KindSkip
	}

	e.Name = normalizeName(e.RawName, e.IsDirectory)
	return e, nil
}

// normalizeName builds the name used for lookups from the raw 8.3 name.
func normalizeName(raw [11]byte, isDirectory bool) string {
	if raw[0] == slotKanjiE5 {
		raw[0] = slotDeleted
	}

	name := string(raw[:8])
	if !isDirectory {
		name += "."
	}
	name += string(raw[8:])

	return removeSpaces(name)
}

// removeSpaces drops every space, not only the padding at the end.
func removeSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
