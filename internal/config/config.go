// Package config loads and validates the uni20 CLI configuration.
//
// Precedence, lowest to highest: built-in defaults, the config file
// (--config or $XDG_CONFIG_HOME/uni20/config.yaml), UNI20_* environment
// variables, command-line flags (bound by the cmd package).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides
// (e.g., UNI20_PYTHON, UNI20_BINDINGS_DIR).
const EnvPrefix = "UNI20"

// DefaultProbeTimeout bounds a single probe call when the caller does not
// override it.
const DefaultProbeTimeout = 30 * time.Second

// Config holds the resolved CLI configuration.
type Config struct {
	// BindingsDir is the uni20 bindings directory. Empty means not
	// configured, which commands translate into skip semantics.
	BindingsDir string `mapstructure:"bindings_dir" validate:"omitempty,dir_exists"`

	// Python is the interpreter to launch the probe with. Empty means
	// discover from PATH.
	Python string `mapstructure:"python" validate:"omitempty,file_exists"`

	// Timeout bounds each probe call.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`

	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose"`
}

// LoaderOptions carries the flag values that participate in loading.
type LoaderOptions struct {
	// ConfigFile is an explicit config file path (--config). Empty means
	// search the default locations.
	ConfigFile string
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("file_exists", func(fl validator.FieldLevel) bool {
		info, err := os.Stat(fl.Field().String())
		return err == nil && !info.IsDir()
	})
	_ = v.RegisterValidation("dir_exists", func(fl validator.FieldLevel) bool {
		info, err := os.Stat(fl.Field().String())
		return err == nil && info.IsDir()
	})
	return v
}

// Load reads the configuration from defaults, config file, and environment.
// Flag overrides are applied by the caller after Load via the returned
// viper instance bindings.
func Load(opts LoaderOptions) (*Config, *viper.Viper, error) {
	v := viper.New()

	v.SetDefault("bindings_dir", "")
	v.SetDefault("python", "")
	v.SetDefault("timeout", DefaultProbeTimeout)
	v.SetDefault("verbose", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("error reading config file %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "uni20"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, nil, fmt.Errorf("error reading config file: %w", err)
			}
			// No config file is fine; defaults and env apply.
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// Decode re-extracts the Config from the viper instance, picking up any
// flag bindings applied after Load.
func Decode(v *viper.Viper) (*Config, error) {
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency. An empty BindingsDir
// is allowed here; commands decide whether to probe, skip, or fail.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("error validating configuration: %v", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			switch fe.Tag() {
			case "file_exists":
				msgs = append(msgs, fmt.Sprintf("%s: file does not exist: %s", fe.Field(), fe.Value()))
			case "dir_exists":
				msgs = append(msgs, fmt.Sprintf("%s: directory does not exist: %s", fe.Field(), fe.Value()))
			case "gt":
				msgs = append(msgs, fmt.Sprintf("%s: must be positive", fe.Field()))
			default:
				msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
			}
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return nil
}
