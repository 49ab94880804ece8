package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		development bool
		level       string
		wantLevel   zapcore.Level
	}{
		{name: "development default", development: true, wantLevel: zapcore.DebugLevel},
		{name: "production default", wantLevel: zapcore.InfoLevel},
		{name: "explicit warn", development: true, level: "warn", wantLevel: zapcore.WarnLevel},
		{name: "explicit debug", level: "debug", wantLevel: zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			logger, err := New(tt.development, tt.level)
			require.NoError(t, err)
			defer logger.Sync() //nolint:errcheck // best-effort flush
			require.True(t, logger.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				require.False(t, logger.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := New(false, "loud")
	require.ErrorContains(t, err, `parse log level "loud"`)
}
