// Package fat12test builds small FAT12 images in memory for tests.
package fat12test

import (
	"encoding/binary"
	"io"
	"strings"
	"time"

	"github.com/noxer/bytewriter"
	"github.com/xaionaro-go/bytesextra"
)

const (
	attrReadOnly    = 0x01
	attrHidden      = 0x02
	attrSystem      = 0x04
	attrVolumeLabel = 0x08
	attrDirectory   = 0x10
	attrArchive     = 0x20
	attrLongName    = attrReadOnly | attrHidden | attrSystem | attrVolumeLabel

	// EndOfChain is written to the FAT for the last cluster of a chain.
	EndOfChain = 0xFFF

	entrySize = 32

	offsetVolumeLabel = 43
)

// Options describe the boot sector of a new image.
type Options struct {
	SectorSize        uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	SectorsPerFAT     uint16
	RootEntries       uint16
	TotalSectors      uint16
	Media             uint8
	Label             string
}

// DefaultOptions describe a 32 KiB image with 512 byte sectors and clusters.
// The FAT copies are at sectors 1 and 2, the root directory at sector 3
// and cluster c starts at sector c+2.
func DefaultOptions() Options {
	return Options{
		SectorSize:        512,
		SectorsPerCluster: 1,
		ReservedSectors:   1,
		NumFATs:           2,
		SectorsPerFAT:     1,
		RootEntries:       16,
		TotalSectors:      64,
		Media:             0xF0,
		Label:             "TESTVOLUME",
	}
}

// bootSector has the layout of a FAT12 boot sector up to the file system type.
type bootSector struct {
	JumpBoot          [3]byte
	OEMName           [8]byte
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntryCount    uint16
	TotalSectors16    uint16
	Media             uint8
	SectorsPerFAT     uint16
	SectorsPerTrack   uint16
	NumberOfHeads     uint16
	HiddenSectors     uint32
	TotalSectors32    uint32
	DriveNumber       uint8
	Reserved          uint8
	BootSignature     uint8
	VolumeID          uint32
	VolumeLabel       [11]byte
	FSType            [8]byte
}

// Image is a FAT12 image under construction.
type Image struct {
	opts Options
	data []byte
}

// New creates an empty formatted image.
func New(opts Options) *Image {
	img := &Image{
		opts: opts,
		data: make([]byte, int(opts.TotalSectors)*int(opts.SectorSize)),
	}

	bs := bootSector{
		JumpBoot:          [3]byte{0xEB, 0x3C, 0x90},
		BytesPerSector:    opts.SectorSize,
		SectorsPerCluster: opts.SectorsPerCluster,
		ReservedSectors:   opts.ReservedSectors,
		NumFATs:           opts.NumFATs,
		RootEntryCount:    opts.RootEntries,
		TotalSectors16:    opts.TotalSectors,
		Media:             opts.Media,
		SectorsPerFAT:     opts.SectorsPerFAT,
		SectorsPerTrack:   9,
		NumberOfHeads:     2,
		BootSignature:     0x29,
		VolumeID:          0x12345678,
	}
	copy(bs.OEMName[:], "MSDOS5.0")
	copy(bs.VolumeLabel[:], pad(opts.Label, 11))
	copy(bs.FSType[:], "FAT12   ")

	_ = binary.Write(bytewriter.New(img.data), binary.LittleEndian, bs)
	if len(img.data) >= 512 {
		img.data[510] = 0x55
		img.data[511] = 0xAA
	}

	img.SetFAT(0, 0xF00|uint16(opts.Media))
	img.SetFAT(1, 0xFFF)

	return img
}

// SetBootLabel replaces the volume label of the extended boot sector.
func (img *Image) SetBootLabel(label string) {
	copy(img.data[offsetVolumeLabel:offsetVolumeLabel+11], pad(label, 11))
}

// Bytes returns the raw image. Changes to it affect the Image.
func (img *Image) Bytes() []byte {
	return img.data
}

// Reader returns a reader over a copy of the image.
func (img *Image) Reader() io.ReadSeeker {
	data := make([]byte, len(img.data))
	copy(data, img.data)
	return bytesextra.NewReadWriteSeeker(data)
}

// Truncate cuts the image after size bytes.
func (img *Image) Truncate(size int) {
	if size < len(img.data) {
		img.data = img.data[:size]
	}
}

func (img *Image) fatOffset() int {
	return int(img.opts.ReservedSectors) * int(img.opts.SectorSize)
}

func (img *Image) rootOffset() int {
	return img.fatOffset() + int(img.opts.NumFATs)*int(img.opts.SectorsPerFAT)*int(img.opts.SectorSize)
}

// ClusterSize returns the bytes per cluster.
func (img *Image) ClusterSize() int {
	return int(img.opts.SectorsPerCluster) * int(img.opts.SectorSize)
}

// ClusterOffset returns the byte offset of the given data cluster.
func (img *Image) ClusterOffset(cluster uint16) int {
	rootSize := int(img.opts.RootEntries) * entrySize
	rootSectors := (rootSize + int(img.opts.SectorSize) - 1) / int(img.opts.SectorSize)
	return img.rootOffset() + rootSectors*int(img.opts.SectorSize) + (int(cluster)-2)*img.ClusterSize()
}

// SetFAT writes value as FAT entry of cluster into every FAT copy.
func (img *Image) SetFAT(cluster uint16, value uint16) {
	for i := 0; i < int(img.opts.NumFATs); i++ {
		fat := img.data[img.fatOffset()+i*int(img.opts.SectorsPerFAT)*int(img.opts.SectorSize):]

		if cluster%2 == 0 {
			pos := int(cluster) * 3 / 2
			fat[pos] = byte(value & 0xFF)
			fat[pos+1] = fat[pos+1]&0xF0 | byte(value>>8)&0x0F
		} else {
			pos := (int(cluster)-1)*3/2 + 1
			fat[pos] = fat[pos]&0x0F | byte(value&0x0F)<<4
			fat[pos+1] = byte(value >> 4)
		}
	}
}

// Link chains the clusters in the given order and marks the last one as end of chain.
func (img *Image) Link(clusters ...uint16) {
	for i, cluster := range clusters {
		if i == len(clusters)-1 {
			img.SetFAT(cluster, EndOfChain)
		} else {
			img.SetFAT(cluster, clusters[i+1])
		}
	}
}

// WriteCluster writes content to the start of the cluster.
// Content longer than a cluster continues in the physically following clusters.
func (img *Image) WriteCluster(cluster uint16, content []byte) {
	_, _ = bytewriter.New(img.data[img.ClusterOffset(cluster):]).Write(content)
}

// WriteChain splits content over the given clusters and links them.
func (img *Image) WriteChain(content []byte, clusters ...uint16) {
	size := img.ClusterSize()
	for i, cluster := range clusters {
		start := i * size
		if start >= len(content) {
			break
		}
		end := start + size
		if end > len(content) {
			end = len(content)
		}
		img.WriteCluster(cluster, content[start:end])
	}
	img.Link(clusters...)
}

// AddRootEntry writes e into the given slot of the root directory.
func (img *Image) AddRootEntry(slot int, e Entry) {
	_, _ = bytewriter.New(img.data[img.rootOffset()+slot*entrySize:]).Write(e.Bytes())
}

// AddEntry writes e into the given slot of the directory cluster.
func (img *Image) AddEntry(cluster uint16, slot int, e Entry) {
	_, _ = bytewriter.New(img.data[img.ClusterOffset(cluster)+slot*entrySize:]).Write(e.Bytes())
}

// Entry describes one directory slot.
type Entry struct {
	// Name is split at the last '.' into the 8.3 parts. "." and ".." are kept as they are.
	Name string
	// Raw is used instead of Name if set. It is padded to 11 bytes.
	Raw string

	Attr         uint8
	FirstCluster uint16
	Size         uint32
	Date         uint16
	Time         uint16
	Deleted      bool
}

type rawEntry struct {
	Name         [11]byte
	Attr         uint8
	Reserved     [10]byte
	Time         uint16
	Date         uint16
	FirstCluster uint16
	Size         uint32
}

// Bytes encodes the 32 byte slot.
func (e Entry) Bytes() []byte {
	raw := rawEntry{
		Attr:         e.Attr,
		Time:         e.Time,
		Date:         e.Date,
		FirstCluster: e.FirstCluster,
		Size:         e.Size,
	}
	copy(raw.Name[:], e.rawName())
	if e.Deleted {
		raw.Name[0] = 0xE5
	}

	slot := make([]byte, entrySize)
	_ = binary.Write(bytewriter.New(slot), binary.LittleEndian, raw)
	return slot
}

func (e Entry) rawName() string {
	if e.Raw != "" {
		return pad(e.Raw, 11)
	}

	// A free slot starts with 0x00.
	if e.Name == "" {
		return ""
	}

	if e.Name == "." || e.Name == ".." {
		return pad(e.Name, 11)
	}

	name, ext := e.Name, ""
	if i := strings.LastIndex(e.Name, "."); i >= 0 {
		name, ext = e.Name[:i], e.Name[i+1:]
	}
	return pad(name, 8) + pad(ext, 3)
}

func pad(s string, size int) string {
	if len(s) > size {
		return s[:size]
	}
	return s + strings.Repeat(" ", size-len(s))
}

// PackDate encodes a date in the FAT format.
func PackDate(t time.Time) uint16 {
	return uint16(t.Year()-1980)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
}

// PackTime encodes a time of day in the FAT format.
func PackTime(t time.Time) uint16 {
	return uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
}
