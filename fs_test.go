package fat12

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/aligator/fat12/internal/fat12test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testingNew(t *testing.T, img *fat12test.Image) *Fs {
	t.Helper()
	fs, err := New(img.Reader())
	require.NoError(t, err)
	return fs
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		reader  io.ReadSeeker
		wantErr bool
	}{
		{
			name:   "sample image",
			reader: fat12test.Sample().Reader(),
		},
		{
			name:    "no FAT file",
			reader:  strings.NewReader("This is no FAT file"),
			wantErr: true,
		},
		{
			name:    "empty",
			reader:  bytes.NewReader(nil),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.reader)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				assert.NotNil(t, got)
				assert.NotNil(t, got.Volume())
			}
		})
	}
}

func TestNewSkipChecks(t *testing.T) {
	img := fat12test.Sample()
	img.Bytes()[0] = 0

	_, err := New(img.Reader())
	assert.ErrorIs(t, err, ErrInvalidVolume)

	fs, err := NewSkipChecks(img.Reader())
	require.NoError(t, err)
	assert.Equal(t, "SAMPLEDISK", fs.Label())
}

func TestFs_Name(t *testing.T) {
	assert.Equal(t, "fat12", testingNew(t, fat12test.Sample()).Name())
}

func TestFs_Open(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantName string
		wantDir  bool
		wantErr  error
	}{
		{name: "root", path: "/", wantName: "/", wantDir: true},
		{name: "dot is the root", path: ".", wantName: "/", wantDir: true},
		{name: "empty is the root", path: "", wantName: "/", wantDir: true},
		{name: "file", path: "/FILE.TXT", wantName: "FILE.TXT"},
		{name: "relative file", path: "SUBDIR/A.TXT", wantName: "A.TXT"},
		{name: "cleaned path", path: "/SUBDIR/NESTED/../A.TXT", wantName: "A.TXT"},
		{name: "directory", path: "/SUBDIR/NESTED", wantName: "NESTED", wantDir: true},
		{name: "missing", path: "/MISSING", wantErr: os.ErrNotExist},
		{name: "file as directory", path: "/FILE.TXT/A", wantErr: syscall.ENOTDIR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := testingNew(t, fat12test.Sample())

			got, err := fs.Open(tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.path, got.Name())

			stat, err := got.Stat()
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, stat.Name())
			assert.Equal(t, tt.wantDir, stat.IsDir())
		})
	}
}

func TestFs_OpenFile(t *testing.T) {
	fs := testingNew(t, fat12test.Sample())

	f, err := fs.OpenFile("/FILE.TXT", os.O_RDONLY, 0)
	require.NoError(t, err)
	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, fat12test.FileContent, content)

	for _, flag := range []int{os.O_WRONLY, os.O_RDWR, os.O_CREATE, os.O_TRUNC, os.O_APPEND} {
		_, err := fs.OpenFile("/FILE.TXT", flag, 0644)
		assert.ErrorIs(t, err, ErrReadOnly)
		assert.ErrorIs(t, err, syscall.EROFS)
	}
}

func TestFs_Stat(t *testing.T) {
	fs := testingNew(t, fat12test.Sample())

	stat, err := fs.Stat("/BIG.BIN")
	require.NoError(t, err)
	assert.Equal(t, "BIG.BIN", stat.Name())
	assert.Equal(t, int64(len(fat12test.BigContent)), stat.Size())
	assert.Equal(t, fat12test.SampleModTime, stat.ModTime())

	_, err = fs.Stat("/MISSING")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFs_Close(t *testing.T) {
	fs := testingNew(t, fat12test.Sample())
	require.NoError(t, fs.Close())

	assert.Equal(t, 48, fs.Usage().FreeClusters)
	assert.Equal(t, "SAMPLEDISK", fs.Label())

	_, err := fs.Stat("/FILE.TXT")
	assert.ErrorIs(t, err, os.ErrClosed)
	_, err = fs.Open("/")
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestFs_ReadOnly(t *testing.T) {
	fs := testingNew(t, fat12test.Sample())

	_, err := fs.Create("/NEW.TXT")
	assert.ErrorIs(t, err, ErrReadOnly)

	for name, err := range map[string]error{
		"Mkdir":     fs.Mkdir("/NEW", 0755),
		"MkdirAll":  fs.MkdirAll("/NEW/NEW", 0755),
		"Remove":    fs.Remove("/FILE.TXT"),
		"RemoveAll": fs.RemoveAll("/SUBDIR"),
		"Rename":    fs.Rename("/FILE.TXT", "/OTHER.TXT"),
		"Chmod":     fs.Chmod("/FILE.TXT", 0777),
		"Chown":     fs.Chown("/FILE.TXT", 1, 1),
		"Chtimes":   fs.Chtimes("/FILE.TXT", time.Now(), time.Now()),
	} {
		assert.ErrorIs(t, err, ErrReadOnly, name)
		assert.ErrorIs(t, err, syscall.EROFS, name)
	}
}

func TestFs_ReadFiles(t *testing.T) {
	fs := testingNew(t, fat12test.Sample())

	for path, want := range map[string][]byte{
		"/FILE.TXT":               fat12test.FileContent,
		"/README.":                fat12test.ReadmeContent,
		"/MY FILE.TXT":            fat12test.SpacedContent,
		"/SUBDIR/A.TXT":           fat12test.AContent,
		"/SUBDIR/B.TXT":           fat12test.BContent,
		"/SUBDIR/NESTED/DEEP.TXT": fat12test.DeepContent,
		"/BIG.BIN":                fat12test.BigContent,
	} {
		got, err := afero.ReadFile(fs, path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	got, err := afero.ReadFile(fs, "/EMPTY.TXT")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFs_ReadDir(t *testing.T) {
	fs := testingNew(t, fat12test.Sample())

	infos, err := afero.ReadDir(fs, "/SUBDIR")
	require.NoError(t, err)

	var got []string
	for _, info := range infos {
		got = append(got, info.Name())
	}
	// afero.ReadDir sorts by name.
	assert.Equal(t, []string{"A.TXT", "B.TXT", "NESTED"}, got)
}

func TestFs_Walk(t *testing.T) {
	fs := testingNew(t, fat12test.Sample())

	var got []string
	err := afero.Walk(fs, "/", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		got = append(got, path)
		return nil
	})
	require.NoError(t, err)

	assert.Contains(t, got, "/SUBDIR/NESTED/DEEP.TXT")
	assert.Contains(t, got, "/README.")
	assert.NotContains(t, got, "/SUBDIR/..")
	assert.Len(t, got, 11)
}

func TestFs_Concurrent(t *testing.T) {
	fs := testingNew(t, fat12test.Sample())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				got, err := afero.ReadFile(fs, "/BIG.BIN")
				assert.NoError(t, err)
				assert.Equal(t, fat12test.BigContent, got)
			}
		}()
	}
	wg.Wait()
}
