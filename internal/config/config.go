// Package config loads rxtrace settings.
//
// Settings are described by an embedded CUE schema that carries the
// defaults. A user file, in CUE or JSON, is unified with the schema, so a
// typo in a field name or an out-of-range value is reported with its
// position instead of being ignored.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaCUE string

// Config holds the resolved settings.
type Config struct {
	Database          string `json:"database"`
	LowStockThreshold int64  `json:"low_stock_threshold"`
	NearExpiryDays    int    `json:"near_expiry_days"`
	LogLevel          string `json:"log_level"`
}

// Default returns the schema defaults.
func Default() Config {
	c, err := Parse(nil, "")
	if err != nil {
		// The embedded schema is fixed at build time.
		panic(fmt.Sprintf("config: invalid embedded schema: %v", err))
	}
	return c
}

// Load reads the file at path and resolves it against the schema.
// An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Parse(nil, "")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse resolves CUE or JSON source against the schema. filename is only
// used in error positions.
func Parse(data []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}
	v := schema.LookupPath(cue.ParsePath("#Config"))

	if len(data) > 0 {
		user := ctx.CompileBytes(data, cue.Filename(filename))
		if err := user.Err(); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		v = v.Unify(user)
	}

	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	var c Config
	if err := v.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// SlogLevel maps LogLevel to a slog level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
