package logging

import (
	"testing"

	"github.com/abozbere2001-collab/Nabd6/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		verbose bool
		want    zapcore.Level
	}{
		{"production info", config.LoggingConfig{Level: "info"}, false, zapcore.InfoLevel},
		{"development warn", config.LoggingConfig{Level: "warn", Development: true}, false, zapcore.WarnLevel},
		{"verbose", config.LoggingConfig{Level: "error"}, true, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, tt.verbose)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.want))
			assert.False(t, logger.Core().Enabled(tt.want-1))
		})
	}

	_, err := New(config.LoggingConfig{Level: "loud"}, false)
	assert.Error(t, err)
}
