package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gianmichelesiano/brokerai-sub001/pkg/config"
)

// Tests share the process environment and the per-type cache, so no
// t.Parallel here.

func TestLoad(t *testing.T) {
	type serverConfig struct {
		Addr  string `env:"TEST_CFG_ADDR" envDefault:":8080"`
		Debug bool   `env:"TEST_CFG_DEBUG" envDefault:"false"`
	}

	t.Setenv("TEST_CFG_ADDR", ":9090")
	t.Setenv("TEST_CFG_DEBUG", "true")

	var cfg serverConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, ":9090", cfg.Addr)
	assert.True(t, cfg.Debug)
}

func TestLoad_Defaults(t *testing.T) {
	type workerConfig struct {
		Concurrency int `env:"TEST_CFG_CONCURRENCY" envDefault:"4"`
	}

	var cfg workerConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, 4, cfg.Concurrency)
}

func TestLoad_CachesPerType(t *testing.T) {
	type cachedConfig struct {
		Value string `env:"TEST_CFG_CACHED" envDefault:"first"`
	}

	t.Setenv("TEST_CFG_CACHED", "first")
	var first cachedConfig
	require.NoError(t, config.Load(&first))
	require.Equal(t, "first", first.Value)

	// A changed environment does not invalidate the cached parse.
	t.Setenv("TEST_CFG_CACHED", "second")
	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value)
}

func TestLoad_RequiredMissing(t *testing.T) {
	type strictConfig struct {
		Secret string `env:"TEST_CFG_MISSING_SECRET,required"`
	}

	var cfg strictConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_NilPointer(t *testing.T) {
	err := config.Load[struct{}](nil)
	assert.ErrorIs(t, err, config.ErrNilPointer)
}

func TestMustLoad_PanicsOnFailure(t *testing.T) {
	type tokenConfig struct {
		Token string `env:"TEST_CFG_MISSING_TOKEN,required"`
	}

	assert.Panics(t, func() {
		var cfg tokenConfig
		config.MustLoad(&cfg)
	})
}
