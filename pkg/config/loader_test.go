package config_test

import (
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/teamnames/pkg/config"
)

type defaultsConfig struct {
	Name    string `env:"TEAMNAME_TEST_DEFAULT_NAME" envDefault:"quiz"`
	Count   int    `env:"TEAMNAME_TEST_DEFAULT_COUNT" envDefault:"3"`
	Enabled bool   `env:"TEAMNAME_TEST_DEFAULT_ENABLED" envDefault:"true"`
}

type requiredConfig struct {
	Value string `env:"TEAMNAME_TEST_REQUIRED,required"`
}

type fileConfig struct {
	String   string   `env:"TEAMNAME_TEST_STRING"`
	Int      int      `env:"TEAMNAME_TEST_INT"`
	List     []string `env:"TEAMNAME_TEST_LIST" envSeparator:","`
	Quoted   string   `env:"TEAMNAME_TEST_QUOTED"`
	Override string   `env:"TEAMNAME_TEST_ONLY_OVERRIDE"`
}

func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		if prev, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { _ = os.Setenv(k, prev) })
		} else {
			t.Cleanup(func() { _ = os.Unsetenv(k) })
		}
		require.NoError(t, os.Unsetenv(k))
	}
}

var fileKeys = []string{
	"TEAMNAME_TEST_STRING", "TEAMNAME_TEST_INT", "TEAMNAME_TEST_LIST",
	"TEAMNAME_TEST_QUOTED", "TEAMNAME_TEST_ONLY_OVERRIDE",
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		config.ResetCache()
		var cfg defaultsConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, defaultsConfig{Name: "quiz", Count: 3, Enabled: true}, cfg)
	})

	t.Run("cached per type", func(t *testing.T) {
		config.ResetCache()
		t.Setenv("TEAMNAME_TEST_DEFAULT_NAME", "first")
		var a defaultsConfig
		require.NoError(t, config.Load(&a))

		t.Setenv("TEAMNAME_TEST_DEFAULT_NAME", "second")
		var b defaultsConfig
		require.NoError(t, config.Load(&b))
		assert.Equal(t, "first", b.Name)

		require.NoError(t, config.ForceReload(&b))
		assert.Equal(t, "second", b.Name)
	})

	t.Run("required", func(t *testing.T) {
		config.ResetCache()
		unset(t, "TEAMNAME_TEST_REQUIRED")

		var cfg requiredConfig
		assert.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)
		assert.Panics(t, func() { config.MustLoad(&cfg) })

		t.Setenv("TEAMNAME_TEST_REQUIRED", "ok")
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "ok", cfg.Value)
	})

	t.Run("nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, config.Load[defaultsConfig](nil), config.ErrNilPointer)
	})

	t.Run("non struct", func(t *testing.T) {
		var s string
		assert.ErrorIs(t, config.Load(&s), config.ErrInvalidConfigType)
	})

	t.Run("concurrent", func(t *testing.T) {
		config.ResetCache()
		var wg sync.WaitGroup
		results := make([]defaultsConfig, 16)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, config.Load(&results[i]))
			}()
		}
		wg.Wait()
		for _, r := range results {
			assert.Equal(t, "quiz", r.Name)
		}
	})
}

func TestLoadEnv(t *testing.T) {
	t.Run("single file", func(t *testing.T) {
		unset(t, fileKeys...)
		config.ResetCache()

		require.NoError(t, config.LoadEnv("testdata/base.env"))
		var cfg fileConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "from_base", cfg.String)
		assert.Equal(t, 7, cfg.Int)
		assert.Equal(t, []string{"a", "b", "c"}, cfg.List)
		assert.Equal(t, "quoted value", cfg.Quoted)
		assert.Empty(t, cfg.Override)
	})

	t.Run("later files win", func(t *testing.T) {
		unset(t, fileKeys...)
		config.ResetCache()

		require.NoError(t, config.LoadEnv("testdata/base.env", "testdata/override.env"))
		var cfg fileConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "from_override", cfg.String)
		assert.Equal(t, "yes", cfg.Override)
	})

	t.Run("process env wins", func(t *testing.T) {
		unset(t, fileKeys...)
		config.ResetCache()
		t.Setenv("TEAMNAME_TEST_STRING", "from_process")

		require.NoError(t, config.LoadEnv("testdata/base.env"))
		var cfg fileConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "from_process", cfg.String)
	})

	t.Run("missing file", func(t *testing.T) {
		assert.ErrorIs(t, config.LoadEnv("testdata/missing.env"), config.ErrLoadingEnvFile)
		assert.Panics(t, func() { config.MustLoadEnv("testdata/missing.env") })
	})
}
