// Package settings loads macrame's own knobs: defaults overlaid with
// MACRAME_* environment variables. Command line flags are applied on top
// by the caller.
package settings

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/bianoble/macrame/internal/engine"
)

// EnvPrefix marks the environment variables read by Load.
const EnvPrefix = "MACRAME_"

// Settings are the tool-level options that are not part of a project.
type Settings struct {
	LogLevel     string `koanf:"log_level"     validate:"oneof=debug info warn error"`
	LogJSON      bool   `koanf:"log_json"`
	TargetTag    string `koanf:"target_tag"    validate:"required,excludesall=/\\"`
	ArtifactName string `koanf:"artifact_name" validate:"required,excludesall=/\\"`
	MakeProgram  string `koanf:"make_program"  validate:"required"`
	// EnvFile is a dotenv file read before configuration is applied.
	// Relative paths are taken from the project root.
	EnvFile string `koanf:"env_file"`
	// DefaultConfig replaces the built-in default layer when set.
	DefaultConfig string `koanf:"default_config"`
}

// Default returns the settings used when nothing overrides them.
func Default() Settings {
	return Settings{
		LogLevel:     "info",
		TargetTag:    engine.DefaultTargetTag,
		ArtifactName: engine.DefaultArtifactName,
		MakeProgram:  "make",
		EnvFile:      ".env",
	}
}

// Load reads the settings from the process environment.
func Load() (*Settings, error) {
	return LoadFrom(os.Environ)
}

// LoadFrom reads the settings from the KEY=VALUE pairs returned by environ.
func LoadFrom(environ func() []string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading default settings: %w", err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnvKey,
		EnvironFunc:   environ,
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment settings: %w", err)
	}

	var s Settings
	if err := k.UnmarshalWithConf("", &s, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &s,
			TagName:          "koanf",
		},
	}); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// transformEnvKey maps MACRAME_TARGET_TAG to target_tag.
func transformEnvKey(key, value string) (string, any) {
	return strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), value
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the settings after flags have been applied.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}
