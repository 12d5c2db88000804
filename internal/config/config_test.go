package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracklab/posefilter/internal/filter"
)

func TestLoadConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.toml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	// The defaults must have been written back.
	_, err = os.Stat(path)
	require.NoError(t, err)

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Filter.NoiseTimeConstant = 30
	cfg.Filter.AxisWeights = []float64{1, 2, 3, 4, 5, 6}
	cfg.Output.Addr = "192.168.0.2:4242"
	cfg.Tracker.PollInterval = 10 * time.Millisecond

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestFilterSettingsConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Filter.SmoothingCurveExponent = 1.5
	cfg.Filter.AxisWeights = []float64{9, 8, 7, 6, 5, 4}

	s := cfg.Filter.Settings()
	assert.Equal(t, 1.5, s.CurveExponent)
	assert.Equal(t, [6]float64{9, 8, 7, 6, 5, 4}, s.AxisWeights)
}

// A hand-edited file with a short weights array keeps the stock values
// for the missing axes.
func TestFilterSettingsPadsShortArrays(t *testing.T) {
	cfg := FilterConfig{
		DeltaTimeConstant:      1,
		NoiseTimeConstant:      60,
		SmoothingCurveExponent: 1,
		MinSmoothingSeconds:    0.01,
		MaxSmoothingSeconds:    1,
		AxisWeights:            []float64{2, 2},
	}

	def := filter.DefaultSettings()
	s := cfg.Settings()
	assert.Equal(t, 2.0, s.AxisWeights[0])
	assert.Equal(t, 2.0, s.AxisWeights[1])
	for i := 2; i < len(s.AxisWeights); i++ {
		assert.Equal(t, def.AxisWeights[i], s.AxisWeights[i], "axis %d", i)
	}
	assert.Equal(t, def.ChangeEpsilon, s.ChangeEpsilon)
}

func TestStoreSnapshotAndReplace(t *testing.T) {
	store := NewStore(DefaultConfig())

	first := store.Snapshot()
	require.NotNil(t, first)

	updated := DefaultConfig()
	updated.Filter.MaxSmoothingSeconds = 2
	store.Replace(updated)

	assert.Equal(t, 2.0, store.Snapshot().Filter.MaxSmoothingSeconds)
	assert.Equal(t, 2.0, store.FilterSettings().MaxSmoothing)
	// The old snapshot is untouched.
	assert.NotEqual(t, 2.0, first.Filter.MaxSmoothingSeconds)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	require.NoError(t, SaveConfig(path, cfg))

	store := NewStore(cfg)
	watcher, err := WatchConfig(path, store)
	require.NoError(t, err)
	defer watcher.Close()

	changed := DefaultConfig()
	changed.Filter.NoiseTimeConstant = 15
	require.NoError(t, SaveConfig(path, changed))

	require.Eventually(t, func() bool {
		return store.Snapshot().Filter.NoiseTimeConstant == 15
	}, 5*time.Second, 20*time.Millisecond)
}
