package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/resumekit/pkg/config"
)

type defaultsConfig struct {
	Name    string        `env:"CFG_TEST_DEFAULT_NAME" envDefault:"resumekit"`
	Timeout time.Duration `env:"CFG_TEST_DEFAULT_TIMEOUT" envDefault:"10s"`
}

type envConfig struct {
	Value string `env:"CFG_TEST_VALUE"`
	Count int    `env:"CFG_TEST_COUNT"`
}

type cachedConfig struct {
	Value string `env:"CFG_TEST_CACHED"`
}

type requiredConfig struct {
	Secret string `env:"CFG_TEST_REQUIRED_SECRET,required"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "resumekit", cfg.Name)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("CFG_TEST_VALUE", "hello")
	t.Setenv("CFG_TEST_COUNT", "3")

	var cfg envConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "hello", cfg.Value)
	assert.Equal(t, 3, cfg.Count)
}

func TestLoad_CachedPerType(t *testing.T) {
	t.Setenv("CFG_TEST_CACHED", "first")

	var first cachedConfig
	require.NoError(t, config.Load(&first))

	t.Setenv("CFG_TEST_CACHED", "second")
	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value)

	config.Reset()
	var third cachedConfig
	require.NoError(t, config.Load(&third))
	assert.Equal(t, "second", third.Value)
}

func TestLoad_Errors(t *testing.T) {
	var missing requiredConfig
	assert.ErrorIs(t, config.Load(&missing), config.ErrParsingConfig)

	assert.ErrorIs(t, config.Load[requiredConfig](nil), config.ErrNilPointer)

	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}
