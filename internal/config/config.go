package config

import (
	"strings"
	"time"
)

// Config is the root configuration of the server and the affix tool.
type Config struct {
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Server     ServerConfig     `yaml:"server"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Log        LogConfig        `yaml:"log"`
	CORS       CORSConfig       `yaml:"cors"`
}

// DictionaryConfig points at the Hunspell files to load.
type DictionaryConfig struct {
	AffPath string `yaml:"aff_path" env:"DICTIONARY_AFF_PATH" env-default:"./dict/en_US.aff"`
	DicPath string `yaml:"dic_path" env:"DICTIONARY_DIC_PATH" env-default:"./dict/en_US.dic"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"SERVER_ADDR"             env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"   env:"SERVER_MAX_BODY_BYTES"   env-default:"1048576"`
}

// GeneratorConfig bounds the work done per request or batch.
type GeneratorConfig struct {
	Workers               int `yaml:"workers"                 env:"GENERATOR_WORKERS"                 env-default:"4"`
	CompoundLimit         int `yaml:"compound_limit"          env:"GENERATOR_COMPOUND_LIMIT"          env-default:"100"`
	CompoundMaxLimit      int `yaml:"compound_max_limit"      env:"GENERATOR_COMPOUND_MAX_LIMIT"      env-default:"10000"`
	CompoundMaxComponents int `yaml:"compound_max_components" env:"GENERATOR_COMPOUND_MAX_COMPONENTS" env-default:"3"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings for the HTTP API.
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	AllowedMethods string `yaml:"allowed_methods" env:"CORS_ALLOWED_METHODS" env-default:"GET,POST,OPTIONS"`
	AllowedHeaders string `yaml:"allowed_headers" env:"CORS_ALLOWED_HEADERS" env-default:"Content-Type"`
	MaxAge         int    `yaml:"max_age"         env:"CORS_MAX_AGE"         env-default:"86400"`
}

// Origins splits AllowedOrigins on commas.
func (c CORSConfig) Origins() []string { return splitList(c.AllowedOrigins) }

// Methods splits AllowedMethods on commas.
func (c CORSConfig) Methods() []string { return splitList(c.AllowedMethods) }

// Headers splits AllowedHeaders on commas.
func (c CORSConfig) Headers() []string { return splitList(c.AllowedHeaders) }

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
