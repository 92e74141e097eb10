package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/utakatalp/matchday-face/internal/config"
)

func TestSetupLoggerLevels(t *testing.T) {
	ctx := context.Background()

	dev := setupLogger(config.EnvDev)
	assert.True(t, dev.Enabled(ctx, slog.LevelDebug))

	prod := setupLogger(config.EnvProd)
	assert.False(t, prod.Enabled(ctx, slog.LevelDebug))
	assert.True(t, prod.Enabled(ctx, slog.LevelInfo))

	other := setupLogger("staging")
	assert.NotNil(t, other)
	assert.False(t, other.Enabled(ctx, slog.LevelDebug))
}
