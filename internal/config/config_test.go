package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoadRoundTripPerFormat(t *testing.T) {
	for _, name := range []string{"config.json", "config.yaml", "config.yml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			want := Default()
			want.WeekStart = "monday"
			want.InitialMonth = "2023-03"
			want.DefaultFilter = "upcoming"
			want.WebEnabled = true
			want.WebPort = 9090
			want.LogPath = "/tmp/lazycal.log"

			require.NoError(t, Save(path, want))
			got, err := Load(path)

			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadNormalizesUnknownValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("week_start: Tuesday\ndefault_filter: PAST\nweb_port: -1\n"), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "sunday", cfg.WeekStart)
	assert.Equal(t, "past", cfg.DefaultFilter)
	assert.Equal(t, 8080, cfg.WebPort)
	assert.Equal(t, "lazycal.ics", cfg.ExportPath)
}

func TestInvalidInitialMonthIsDroppedOnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := Load(path)
	require.NoError(t, err)

	cfg.InitialMonth = "2023-13"
	require.NoError(t, Save(path, cfg))
	reloaded, err := Load(path)

	require.NoError(t, err)
	assert.Empty(t, reloaded.InitialMonth)
}

func TestLoadDropsInvalidInitialMonth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("initial_month = \"March\"\n"), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Empty(t, cfg.InitialMonth)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("week_start = "), 0o644))

	_, err := Load(path)

	assert.Error(t, err)
}
