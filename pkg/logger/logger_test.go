package logger_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/surrealdb/dataorg/pkg/logger"
)

func TestLog(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	templogger, err := logger.New().FromBuffer(buff).Make()
	require.NoError(t, err)
	require.NotNil(t, templogger)
	require.Equal(t, buff.Len(), 0)
	templogger.Logger.Info().Msg("Test")
	require.Contains(t, buff.String(), "Test")

	buff.Reset()
	templogger.Logger.Debug().Msg("hidden")
	require.Zero(t, buff.Len())
}

func TestLevel(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	l, err := logger.New().FromBuffer(buff).WithLevel("debug").Make()
	require.NoError(t, err)
	l.Logger.Debug().Str("view", "raw").Msg("visible")
	require.Contains(t, buff.String(), `"view":"raw"`)

	_, err = logger.New().WithLevel("loud").Make()
	require.Error(t, err)
}

func TestFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataorg.log")
	l, err := logger.New().FromPath(path).Make()
	require.NoError(t, err)
	l.Logger.Warn().Msg("written to file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "written to file")
}
