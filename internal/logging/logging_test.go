package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rezonia/zugferd/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want zapcore.Level
	}{
		{"debug", zap.DebugLevel},
		{"INFO", zap.InfoLevel},
		{"warn", zap.WarnLevel},
		{"warning", zap.WarnLevel},
		{" error ", zap.ErrorLevel},
		{"verbose", zap.InfoLevel},
		{"", zap.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, logging.ParseLevel(tt.name), tt.name)
	}
}

func TestNew(t *testing.T) {
	l, err := logging.New("warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.WarnLevel))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, logging.OrNop(nil))

	l := zap.NewExample()
	assert.Same(t, l, logging.OrNop(l))
}
