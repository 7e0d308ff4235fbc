package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/spf13/pflag"
)

// FileName is looked up in the working directory when no path is given.
const FileName = "schemaroute.yaml"

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"addr":       "server.addr",
}

// Load resolves the configuration. path may be empty, in which case
// FileName is used if present. flags may be nil; only flags the user
// actually set override lower layers.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"log.level":               "info",
		"log.format":              "json",
		"log.time_format":         "rfc3339",
		"server.addr":             ":8080",
		"server.read_timeout":     "10s",
		"server.write_timeout":    "30s",
		"server.shutdown_timeout": "10s",
		"snapshot.provider":       "minio",
		"snapshot.bucket":         "schemaroute",
	}, "."), nil); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to load defaults", err)
	}

	if path == "" {
		if _, err := os.Stat(FileName); err == nil {
			path = FileName
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "error reading config file "+path, err)
		}
	}

	// SCHEMAROUTE_SNAPSHOT_ACCESS_KEY -> snapshot.access_key
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to load env vars", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to load flags", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "unable to decode config", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns SCHEMAROUTE_SECTION_SOME_KEY into section.some_key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}
