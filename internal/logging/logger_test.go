package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gopkg.in/natefinch/lumberjack.v2"
)

type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestCombinedWriter_Write(t *testing.T) {
	sb1 := &strings.Builder{}
	sb2 := &strings.Builder{}

	cw := NewCombinedWriter(sb1, sb2)
	require.Len(t, cw.Writers, 2)

	n, err := cw.Write([]byte("a message"))
	require.NoError(t, err)
	assert.Equal(t, len("a message"), n)
	assert.Equal(t, "a message", sb1.String())
	assert.Equal(t, "a message", sb2.String())
}

func TestCombinedWriter_WriteErrors(t *testing.T) {
	errA := errors.New("disk full")
	errB := errors.New("closed")
	sb := &strings.Builder{}

	n, err := NewCombinedWriter(failingWriter{errA}, sb).Write([]byte("x"))
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, errA)
	assert.Equal(t, "x", sb.String())

	n, err = NewCombinedWriter(failingWriter{errA}, failingWriter{errB}).Write([]byte("x"))
	assert.Zero(t, n)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestGetLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"trace":   logrus.TraceLevel,
		"DEBUG":   logrus.DebugLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for name, want := range cases {
		assert.Equal(t, want, GetLevel(name), name)
	}
}

func TestOutput(t *testing.T) {
	assert.Equal(t, os.Stdout, Output(SetupParams{}))

	file := filepath.Join(t.TempDir(), "api")
	w := Output(SetupParams{LogFileName: file})
	rotating, ok := w.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, file+".log", rotating.Filename)
	assert.Equal(t, 50, rotating.MaxSize)

	combined, ok := Output(SetupParams{LogFileName: file, LogToStdout: true}).(*CombinedWriter)
	require.True(t, ok)
	assert.Len(t, combined.Writers, 2)
}
