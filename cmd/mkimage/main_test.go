package main

import (
	"testing"

	"github.com/aligator/fat12"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMkimage(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantLabel string
		wantUsed  int
	}{
		{
			name:      "sample",
			args:      []string{"/out.img"},
			wantLabel: "TESTVOLUME",
			wantUsed:  12,
		},
		{
			name:      "corrupt with label",
			args:      []string{"--corrupt", "--label", "BROKEN", "/out.img"},
			wantLabel: "BROKEN",
			wantUsed:  17,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, newApp(fs).Run(append([]string{"mkimage"}, tt.args...)))

			v, err := fat12.OpenFile(fs, "/out.img")
			require.NoError(t, err)
			defer v.Close()

			assert.Equal(t, tt.wantLabel, v.BootSector().VolumeLabel)
			assert.Equal(t, tt.wantUsed, v.Usage().UsedClusters)
		})
	}
}

func TestMkimage_MissingOutput(t *testing.T) {
	assert.Error(t, newApp(afero.NewMemMapFs()).Run([]string{"mkimage"}))
}
