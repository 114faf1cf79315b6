package fat12

import (
	"testing"

	"github.com/aligator/fat12/internal/fat12test"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// openImage opens img with a logger which records all entries in the returned hook.
func openImage(t *testing.T, img *fat12test.Image, opts ...Option) (*Volume, *test.Hook) {
	t.Helper()

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	v, err := Open(img.Reader(), append([]Option{WithLogger(log)}, opts...)...)
	require.NoError(t, err)
	return v, hook
}

func openSample(t *testing.T) *Volume {
	t.Helper()
	v, _ := openImage(t, fat12test.Sample())
	return v
}

func mustResolve(t *testing.T, v *Volume, path string) DirEntry {
	t.Helper()
	entry, err := v.Resolve(path)
	require.NoError(t, err)
	return entry
}
