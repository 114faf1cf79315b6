package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	errDescription = errors.New("could not do it")
	errCause       = errors.New("the cause")
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name    string
		prev    error
		err     error
		wantNil bool
		wantIs  []error
	}{
		{
			name:    "nil prev stays nil",
			prev:    nil,
			err:     errDescription,
			wantNil: true,
		},
		{
			name:   "both errors can be found",
			prev:   errCause,
			err:    errDescription,
			wantIs: []error{errCause, errDescription},
		},
		{
			name:   "nil description only records the location",
			prev:   errCause,
			err:    nil,
			wantIs: []error{errCause},
		},
		{
			name:   "errno causes are found through the chain",
			prev:   syscall.ENOENT,
			err:    errDescription,
			wantIs: []error{syscall.ENOENT, errDescription},
		},
		{
			name:   "nested checkpoints",
			prev:   Wrap(errCause, fmt.Errorf("inner")),
			err:    errDescription,
			wantIs: []error{errCause, errDescription},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.prev, tt.err)
			if tt.wantNil {
				assert.NoError(t, got)
				return
			}

			for _, want := range tt.wantIs {
				assert.ErrorIs(t, got, want)
			}
			assert.Contains(t, got.Error(), "checkpoint_test.go:")
		})
	}
}

func TestWrap_EOF(t *testing.T) {
	assert.Same(t, io.EOF, Wrap(io.EOF, errDescription))
	assert.Same(t, io.ErrUnexpectedEOF, From(io.ErrUnexpectedEOF))
}

func TestFrom(t *testing.T) {
	assert.NoError(t, From(nil))

	err := From(errCause)
	assert.ErrorIs(t, err, errCause)
	assert.True(t, strings.HasPrefix(err.Error(), "at checkpoint_test.go:"))
}

func TestCheckpoint_As(t *testing.T) {
	err := Wrap(errCause, syscall.ENOTDIR)

	var errno syscall.Errno
	if assert.True(t, errors.As(err, &errno)) {
		assert.Equal(t, syscall.ENOTDIR, errno)
	}
}
