// Package checkpoint decorates errors with the file and line they passed through,
// which results in something similar to a stacktrace when printed.
// Every error added to a checkpoint can still be checked by errors.Is and retrieved by errors.As.
package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
)

// From wraps err by a new checkpoint which only adds the caller location.
// It returns nil if err == nil.
func From(err error) error {
	if err == nil || isPassThrough(err) {
		return err
	}

	return newCheckpoint(err, nil)
}

// Wrap adds a checkpoint to prev and describes it further by err.
// Returns nil if prev == nil, so it can be used directly on return values:
//  data, err := vol.ReadCluster(c)
//  return checkpoint.Wrap(err, ErrReadFile)
// Both prev and err can be found afterwards using errors.Is and errors.As.
// A nil err still creates a checkpoint which only records the location.
func Wrap(prev, err error) error {
	if prev == nil || isPassThrough(prev) {
		return prev
	}

	return newCheckpoint(prev, err)
}

// isPassThrough reports errors which callers compare by identity.
// https://github.com/golang/go/issues/39155
func isPassThrough(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}

func newCheckpoint(prev, err error) *checkpoint {
	// Skip newCheckpoint and From / Wrap.
	_, file, line, ok := runtime.Caller(2)

	location := "unknown"
	if ok {
		location = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	return &checkpoint{
		err:      err,
		prev:     prev,
		location: location,
	}
}

type checkpoint struct {
	err      error
	prev     error
	location string
}

func (c *checkpoint) Error() string {
	var b strings.Builder
	b.WriteString("at ")
	b.WriteString(c.location)
	if c.err != nil {
		b.WriteString(": ")
		b.WriteString(c.err.Error())
	}

	// Nested checkpoints already start with their own location line.
	prev := c.prev.Error()
	if _, ok := c.prev.(*checkpoint); !ok {
		prev = "at unknown: " + prev
	}
	b.WriteString("\n")
	b.WriteString(strings.ReplaceAll(prev, "\n", "\n\t"))

	return b.String()
}

func (c *checkpoint) Unwrap() error {
	return c.prev
}

func (c *checkpoint) Is(target error) bool {
	return c.err != nil && errors.Is(c.err, target)
}

func (c *checkpoint) As(target interface{}) bool {
	return c.err != nil && errors.As(c.err, target)
}
