package logger

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerIsCachedByName(t *testing.T) {
	Init(Options{Level: "debug", Format: "json"})

	first := GetLogger("gateway")
	second := GetLogger("gateway")
	require.Same(t, first.Logger, second.Logger)
	assert.Equal(t, "gateway", first.Data["component"])
	assert.Equal(t, logrus.DebugLevel, first.Logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, first.Logger.Formatter)
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	Init(Options{Level: "loud", File: filepath.Join(t.TempDir(), "aora.log")})

	log := GetLogger("feed")
	assert.Equal(t, logrus.InfoLevel, log.Logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Logger.Formatter)
	log.Info("written to stdout and the rotated file")
}
