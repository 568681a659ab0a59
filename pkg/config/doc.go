// Package config loads typed configuration from the environment.
//
// Config structs are declared next to the package they configure and tagged
// for github.com/caarlos0/env. An optional .env file is read once through
// github.com/joho/godotenv. Each struct type is parsed once per process.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
package config
