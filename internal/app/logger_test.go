package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewLoggerLevel(t *testing.T) {
	cases := []struct {
		name    string
		env     string
		level   string
		debugOn bool
		warnOn  bool
	}{
		{"production default", "production", "", false, true},
		{"development default", "development", "", true, true},
		{"production debug", "production", "debug", true, true},
		{"development warn", "development", "warn", false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger := NewLogger(tc.env, tc.level)
			assert.Equal(t, tc.debugOn, logger.Core().Enabled(zap.DebugLevel))
			assert.Equal(t, tc.warnOn, logger.Core().Enabled(zap.WarnLevel))
		})
	}
}

func TestNewLoggerTestEnvIsSilent(t *testing.T) {
	logger := NewLogger("test", "debug")
	assert.False(t, logger.Core().Enabled(zap.ErrorLevel))
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	assert.Panics(t, func() { NewLogger("development", "loud") })
}
