package fat12

import (
	"testing"

	"github.com/aligator/fat12/internal/fat12test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBootSector(t *testing.T) {
	img := fat12test.New(fat12test.DefaultOptions())

	bs, err := ParseBootSector(img.Bytes()[:512])
	require.NoError(t, err)

	assert.Equal(t, BootSector{
		JumpBoot:          [3]byte{0xEB, 0x3C, 0x90},
		BytesPerSector:    512,
		SectorsPerCluster: 1,
		ReservedSectors:   1,
		NumFATs:           2,
		RootEntryCount:    16,
		TotalSectors:      64,
		Media:             0xF0,
		SectorsPerFAT:     1,
		HiddenSectors:     0,
		VolumeLabel:       "TESTVOLUME",
	}, bs)
	assert.NoError(t, bs.check())
}

func TestParseBootSector_TooShort(t *testing.T) {
	_, err := ParseBootSector(make([]byte, bootSectorMinSize-1))
	assert.ErrorIs(t, err, ErrInvalidVolume)
}

func TestParseBootSector_TotalSectors32(t *testing.T) {
	img := fat12test.New(fat12test.DefaultOptions())
	data := img.Bytes()
	data[offsetTotalSectors16] = 0
	data[offsetTotalSectors16+1] = 0
	data[offsetTotalSectors32] = 0x40
	data[offsetTotalSectors32+1] = 0x01

	bs, err := ParseBootSector(data[:512])
	require.NoError(t, err)
	assert.Equal(t, uint32(0x140), bs.TotalSectors)
}

func TestBootSector_check(t *testing.T) {
	valid := func() BootSector {
		return BootSector{
			JumpBoot:          [3]byte{0xEB, 0x3C, 0x90},
			BytesPerSector:    512,
			SectorsPerCluster: 1,
			ReservedSectors:   1,
			NumFATs:           2,
			RootEntryCount:    224,
			TotalSectors:      2880,
			Media:             0xF0,
			SectorsPerFAT:     9,
		}
	}

	tests := []struct {
		name         string
		modify       func(bs *BootSector)
		wantErr      bool
		wantRequired bool
	}{
		{
			name:   "valid floppy",
			modify: func(bs *BootSector) {},
		},
		{
			name:   "near jump is valid",
			modify: func(bs *BootSector) { bs.JumpBoot = [3]byte{0xE9, 0x00, 0x00} },
		},
		{
			name:    "invalid jump",
			modify:  func(bs *BootSector) { bs.JumpBoot = [3]byte{} },
			wantErr: true,
		},
		{
			name:    "unusual sector size",
			modify:  func(bs *BootSector) { bs.BytesPerSector = 256 },
			wantErr: true,
		},
		{
			name:         "zero sector size",
			modify:       func(bs *BootSector) { bs.BytesPerSector = 0 },
			wantErr:      true,
			wantRequired: true,
		},
		{
			name:         "zero sectors per cluster",
			modify:       func(bs *BootSector) { bs.SectorsPerCluster = 0 },
			wantErr:      true,
			wantRequired: true,
		},
		{
			name:    "sectors per cluster not a power of 2",
			modify:  func(bs *BootSector) { bs.SectorsPerCluster = 3 },
			wantErr: true,
		},
		{
			name:    "no FAT",
			modify:  func(bs *BootSector) { bs.NumFATs = 0 },
			wantErr: true,
		},
		{
			name:    "root directory does not fill whole sectors",
			modify:  func(bs *BootSector) { bs.RootEntryCount = 10 },
			wantErr: true,
		},
		{
			name:    "invalid media",
			modify:  func(bs *BootSector) { bs.Media = 0x12 },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs := valid()
			tt.modify(&bs)

			err := bs.check()
			assert.Equal(t, tt.wantErr, err != nil, "check() error = %v", err)

			err = bs.checkRequired()
			assert.Equal(t, tt.wantRequired, err != nil, "checkRequired() error = %v", err)
		})
	}
}
