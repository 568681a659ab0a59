package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type entry struct {
	once  sync.Once
	value any
	err   error
}

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> *entry
)

// Load parses environment variables into v using `env` struct tags.
// A .env file in the working directory is applied once per process, without
// overriding variables that are already set. Each config type is parsed once;
// later calls receive a copy of the cached value.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		// Missing .env is fine: production reads the real environment.
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()
	raw, _ := cache.LoadOrStore(key, &entry{})
	e := raw.(*entry)

	e.once.Do(func() {
		var parsed T
		if err := env.Parse(&parsed); err != nil {
			e.err = errors.Join(ErrParsingConfig, err)
			return
		}
		e.value = parsed
	})

	if e.err != nil {
		return e.err
	}
	*v = e.value.(T)
	return nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// Reset drops every cached config. Intended for tests that change the environment.
func Reset() {
	cache.Range(func(k, _ any) bool {
		cache.Delete(k)
		return true
	})
}
