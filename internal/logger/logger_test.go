package logger_test

import (
	"testing"

	"github.com/straye-as/earsip/internal/config"
	"github.com/straye-as/earsip/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		logging   config.LoggingConfig
		app       config.AppConfig
		wantLevel zapcore.Level
	}{
		{
			name:      "console development",
			logging:   config.LoggingConfig{Level: "debug", Format: "console"},
			app:       config.AppConfig{Name: "E-Arsip", Environment: "development"},
			wantLevel: zapcore.DebugLevel,
		},
		{
			name:      "json production",
			logging:   config.LoggingConfig{Level: "warn", Format: "json"},
			app:       config.AppConfig{Name: "E-Arsip", Environment: "production"},
			wantLevel: zapcore.WarnLevel,
		},
		{
			name:      "invalid level falls back to info",
			logging:   config.LoggingConfig{Level: "loud"},
			app:       config.AppConfig{Name: "E-Arsip"},
			wantLevel: zapcore.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := logger.NewLogger(&tt.logging, &tt.app)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}

func TestNewCLILogger(t *testing.T) {
	quiet := logger.NewCLILogger(false)
	assert.False(t, quiet.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, quiet.Core().Enabled(zapcore.WarnLevel))

	verbose := logger.NewCLILogger(true)
	assert.True(t, verbose.Core().Enabled(zapcore.DebugLevel))
}
