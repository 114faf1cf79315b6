// File model contains the on-disk layout of the FAT12 boot sector and directory entries.

package fat12

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/aligator/fat12/checkpoint"
	"github.com/hashicorp/go-multierror"
)

// Byte offsets of the boot sector fields. All values are little-endian.
const (
	offsetJumpBoot          = 0
	offsetBytesPerSector    = 11
	offsetSectorsPerCluster = 13
	offsetReservedSectors   = 14
	offsetNumFATs           = 16
	offsetRootEntryCount    = 17
	offsetTotalSectors16    = 19
	offsetMedia             = 21
	offsetSectorsPerFAT     = 22
	offsetHiddenSectors     = 28
	offsetTotalSectors32    = 32
	offsetBootSignature     = 38
	offsetVolumeLabel       = 43

	// bootSectorMinSize is the amount of bytes needed to read all fields above.
	bootSectorMinSize = 54

	// extendedBootSignature marks the presence of volume id, label and fs type.
	extendedBootSignature = 0x29
)

// Byte offsets of the fields of a directory entry slot.
const (
	DirEntrySize = 32

	offsetEntryName      = 0
	offsetEntryAttribute = 11
	offsetEntryTime      = 22
	offsetEntryDate      = 24
	offsetEntryCluster   = 26
	offsetEntrySize      = 28
)

// Attribute flags of a directory entry.
const (
	AttrReadOnly    = 0x01
	AttrHidden      = 0x02
	AttrSystem      = 0x04
	AttrVolumeLabel = 0x08
	AttrDirectory   = 0x10
	AttrArchive     = 0x20
	AttrLongName    = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeLabel
)

// BootSector contains the BIOS parameter block fields of a FAT12 volume.
type BootSector struct {
	JumpBoot          [3]byte
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntryCount    uint16
	TotalSectors      uint32
	Media             uint8
	SectorsPerFAT     uint16
	HiddenSectors     uint16
	// VolumeLabel is only set if the extended boot signature is present.
	VolumeLabel string
}

// ParseBootSector reads the fields of the boot sector from the start of data.
// It only fails if data is too short to contain them.
func ParseBootSector(data []byte) (BootSector, error) {
	if len(data) < bootSectorMinSize {
		return BootSector{}, checkpoint.Wrap(ErrInvalidVolume, fmt.Errorf("boot sector needs at least %v bytes but got %v", bootSectorMinSize, len(data)))
	}

	bs := BootSector{
		BytesPerSector:    binary.LittleEndian.Uint16(data[offsetBytesPerSector:]),
		SectorsPerCluster: data[offsetSectorsPerCluster],
		ReservedSectors:   binary.LittleEndian.Uint16(data[offsetReservedSectors:]),
		NumFATs:           data[offsetNumFATs],
		RootEntryCount:    binary.LittleEndian.Uint16(data[offsetRootEntryCount:]),
		Media:             data[offsetMedia],
		SectorsPerFAT:     binary.LittleEndian.Uint16(data[offsetSectorsPerFAT:]),
		HiddenSectors:     binary.LittleEndian.Uint16(data[offsetHiddenSectors:]),
	}
	copy(bs.JumpBoot[:], data[offsetJumpBoot:])

	if total16 := binary.LittleEndian.Uint16(data[offsetTotalSectors16:]); total16 != 0 {
		bs.TotalSectors = uint32(total16)
	} else {
		bs.TotalSectors = binary.LittleEndian.Uint32(data[offsetTotalSectors32:])
	}

	if data[offsetBootSignature] == extendedBootSignature {
		bs.VolumeLabel = strings.TrimRight(string(data[offsetVolumeLabel:offsetVolumeLabel+11]), " ")
	}

	return bs, nil
}

// checkRequired validates only what is needed to derive the geometry.
func (bs BootSector) checkRequired() error {
	var result *multierror.Error

	if bs.BytesPerSector == 0 {
		result = multierror.Append(result, fmt.Errorf("bytes per sector is 0"))
	}
	if bs.SectorsPerCluster == 0 {
		result = multierror.Append(result, fmt.Errorf("sectors per cluster is 0"))
	}

	return result.ErrorOrNil()
}

// check validates the boot sector against the FAT specification.
// All problems are collected and returned together.
func (bs BootSector) check() error {
	var result *multierror.Error
	if err := bs.checkRequired(); err != nil {
		result = multierror.Append(result, err)
	}

	// Check for valid jump instructions.
	if !(bs.JumpBoot[0] == 0xEB && bs.JumpBoot[2] == 0x90) && bs.JumpBoot[0] != 0xE9 {
		result = multierror.Append(result, fmt.Errorf("no valid jump instructions at the beginning"))
	}

	switch bs.BytesPerSector {
	case 512, 1024, 2048, 4096:
	default:
		result = multierror.Append(result, fmt.Errorf("bytes per sector must be 512, 1024, 2048 or 4096, got %v", bs.BytesPerSector))
	}

	// Sectors per cluster has to be a power of two.
	if bs.SectorsPerCluster&(bs.SectorsPerCluster-1) != 0 {
		result = multierror.Append(result, fmt.Errorf("sectors per cluster must be a power of 2, got %v", bs.SectorsPerCluster))
	}

	if bs.ReservedSectors == 0 {
		result = multierror.Append(result, fmt.Errorf("reserved sector count must not be 0"))
	}

	if bs.NumFATs == 0 {
		result = multierror.Append(result, fmt.Errorf("at least one FAT is needed"))
	}

	if bs.SectorsPerFAT == 0 {
		result = multierror.Append(result, fmt.Errorf("sectors per FAT must not be 0"))
	}

	if bs.RootEntryCount == 0 {
		result = multierror.Append(result, fmt.Errorf("root entry count must not be 0"))
	} else if bs.BytesPerSector != 0 && (uint32(bs.RootEntryCount)*DirEntrySize)%uint32(bs.BytesPerSector) != 0 {
		result = multierror.Append(result, fmt.Errorf("root directory of %v entries does not fill whole sectors", bs.RootEntryCount))
	}

	if bs.Media != 0xF0 && bs.Media < 0xF8 {
		result = multierror.Append(result, fmt.Errorf("invalid media value 0x%X", bs.Media))
	}

	return result.ErrorOrNil()
}
