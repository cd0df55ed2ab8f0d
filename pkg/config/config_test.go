package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "development", cfg.AppEnv)
		assert.True(t, cfg.IsDevelopment())
		assert.False(t, cfg.IsProduction())
		assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
		assert.Equal(t, 500, cfg.SweepUserLimit)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("SWEEP_INTERVAL", "30s")
		t.Setenv("SWEEP_USER_LIMIT", "10")
		t.Setenv("DISPATCH_RATE_PER_SECOND", "2.5")

		cfg, err := Load()
		require.NoError(t, err)

		assert.True(t, cfg.IsProduction())
		assert.Equal(t, 30*time.Second, cfg.SweepInterval)
		assert.Equal(t, 10, cfg.SweepUserLimit)
		assert.Equal(t, 2.5, cfg.DispatchRatePerSecond)
	})

	t.Run("malformed values fall back to defaults", func(t *testing.T) {
		t.Setenv("SWEEP_INTERVAL", "not-a-duration")
		t.Setenv("SWEEP_USER_LIMIT", "many")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
		assert.Equal(t, 500, cfg.SweepUserLimit)
	})
}

func TestLoadTuning(t *testing.T) {
	t.Run("empty path keeps defaults", func(t *testing.T) {
		tuning, err := LoadTuning("")
		require.NoError(t, err)
		assert.Zero(t, tuning.Urgency.DeadlineWeight)
		assert.Nil(t, tuning.Optimizer.DefaultWindow)
	})

	t.Run("parses a tuning file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tuning.yaml")
		content := []byte(`
urgency:
  deadline_weight: 50
  critical_threshold: 80
optimizer:
  default_window:
    start_hour: 7
    end_hour: 22
    weight: 0.5
  preferred_windows:
    - start_hour: 18
      end_hour: 21
      weight: 1.0
  max_per_hour: 5
`)
		require.NoError(t, os.WriteFile(path, content, 0o600))

		tuning, err := LoadTuning(path)
		require.NoError(t, err)

		assert.Equal(t, 50.0, tuning.Urgency.DeadlineWeight)
		assert.Equal(t, 80, tuning.Urgency.CriticalThreshold)
		require.NotNil(t, tuning.Optimizer.DefaultWindow)
		assert.Equal(t, 7, tuning.Optimizer.DefaultWindow.StartHour)
		require.Len(t, tuning.Optimizer.PreferredWindows, 1)
		assert.Equal(t, 1.0, tuning.Optimizer.PreferredWindows[0].Weight)
		assert.Equal(t, 5, tuning.Optimizer.MaxPerHour)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadTuning("/nonexistent/tuning.yaml")
		assert.Error(t, err)
	})
}
