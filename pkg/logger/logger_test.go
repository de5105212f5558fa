package logger

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerFallsBackToGlobal(t *testing.T) {
	ctx := context.Background()

	entry := GetLogger(ctx)
	require.NotNil(t, entry)
	assert.Equal(t, L.Logger, entry.Logger)
}

func TestWithLogger(t *testing.T) {
	ctx := context.Background()

	custom := logrus.NewEntry(logrus.New()).WithField("component", "store")
	ctx = WithLogger(ctx, custom)

	entry := GetLogger(ctx)
	assert.Equal(t, "store", entry.Data["component"])
}

func TestSetLogLevel(t *testing.T) {
	t.Run("valid level", func(t *testing.T) {
		require.NoError(t, SetLogLevel("debug"))
		assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())

		require.NoError(t, SetLogLevel("info"))
	})

	t.Run("invalid level", func(t *testing.T) {
		assert.Error(t, SetLogLevel("chatty"))
	})
}

func TestSetLogOutput(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)

	L.Info("hello from test")
	assert.Contains(t, buf.String(), "hello from test")
}
