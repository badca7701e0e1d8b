package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tochemey/goakt/v3/log"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var configSchema []byte

const configSchemaURL = "https://lao-tseu-is-alive.github.io/go-flock-simulation/config.schema.json"

// ErrUnsupportedConfigFormat is returned for config files that are neither JSON nor YAML.
var ErrUnsupportedConfigFormat = errors.New("unsupported config format")

// Config is the file configuration of the hosts. Settings is the initial
// value of the live settings; the control panel takes over from there.
type Config struct {
	// World Dimensions
	WorldWidth  float64 `json:"worldWidth" yaml:"worldWidth"`
	WorldHeight float64 `json:"worldHeight" yaml:"worldHeight"`

	Settings Settings `json:"settings" yaml:"settings"`

	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`

	// LogLevel is one of debug, info, warning, error.
	LogLevel string `json:"logLevel" yaml:"logLevel"`

	// Workers bounds the goroutines used per step; 0 means GOMAXPROCS.
	Workers int `json:"workers" yaml:"workers"`
}

// TelemetryConfig controls step statistics.
type TelemetryConfig struct {
	// Dir receives the CSV files; empty disables file output.
	Dir string `json:"dir" yaml:"dir"`
	// Window is the number of steps aggregated into one stats record.
	Window int `json:"window" yaml:"window"`
}

// Viewport returns the world extents as a Viewport.
func (c *Config) Viewport() FixedViewport {
	return FixedViewport{W: c.WorldWidth, H: c.WorldHeight}
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{
		WorldWidth:  1000,
		WorldHeight: 800,
		Telemetry: TelemetryConfig{
			Window: 60,
		},
		LogLevel: "info",
	}
	cfg.Settings = DefaultSettings(cfg.Viewport())
	return cfg
}

// LoadConfig reads a JSON or YAML file, validates it against the embedded
// schema and merges it over DefaultConfig. When the file resizes the world
// without setting a population, the population follows the new size.
func LoadConfig(configFile string) (*Config, error) {
	raw, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	doc, err := decodeConfigDocument(configFile, raw)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(doc); err != nil {
		return nil, err
	}

	// Normalized JSON is what we unmarshal, whatever the source format was.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(normalized, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if !hasPopulation(doc) {
		cfg.Settings.Population = DefaultPopulation(cfg.WorldWidth, cfg.WorldHeight)
	}
	return cfg, nil
}

func decodeConfigDocument(configFile string, raw []byte) (interface{}, error) {
	var doc interface{}
	switch ext := strings.ToLower(filepath.Ext(configFile)); ext {
	case ".json":
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode config json: %w", err)
		}
		return doc, nil
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode config yaml: %w", err)
		}
		// Round-trip through JSON so the validator sees JSON types.
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert config yaml: %w", err)
		}
		doc = nil
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("failed to convert config yaml: %w", err)
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedConfigFormat, ext)
	}
}

func validateConfig(doc interface{}) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(configSchemaURL, bytes.NewReader(configSchema)); err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}
	sch, err := compiler.Compile(configSchemaURL)
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func hasPopulation(doc interface{}) bool {
	root, ok := doc.(map[string]interface{})
	if !ok {
		return false
	}
	settings, ok := root["settings"].(map[string]interface{})
	if !ok {
		return false
	}
	_, ok = settings["population"]
	return ok
}

// WriteYAML saves the configuration so a run can be reproduced with LoadConfig.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// NewLogger builds a logger at the configured level writing to writers,
// or to stdout when none is given.
func (c *Config) NewLogger(writers ...io.Writer) log.Logger {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}
	return log.New(c.logLevel(), writers...)
}

func (c *Config) logLevel() log.Level {
	switch c.LogLevel {
	case "debug":
		return log.DebugLevel
	case "warning":
		return log.WarningLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
