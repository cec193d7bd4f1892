// Package config provides configuration loading for goslim.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/nodeadmin/goslim/annotate"
	"github.com/nodeadmin/goslim/report"
)

// EnvPrefix is prepended to environment overrides, e.g. GOSLIM_ONTOLOGY_PATH.
const EnvPrefix = "GOSLIM"

// Config represents the complete goslim configuration.
type Config struct {
	Ontology OntologyConfig `mapstructure:"ontology"`
	Annotate AnnotateConfig `mapstructure:"annotate"`
	Log      LogConfig      `mapstructure:"log"`
}

// OntologyConfig locates the GO files.
type OntologyConfig struct {
	// Path is the base go.obo file.
	Path string `mapstructure:"path"`
	// SlimPath is an optional GO slim file merged after the base load.
	SlimPath string `mapstructure:"slim_path"`
	// SlimLimit restricts the merged subset tags to a single tag.
	SlimLimit string `mapstructure:"slim_limit"`
	// Verbose logs unrecognized stanza tags.
	Verbose bool `mapstructure:"verbose"`
}

// AnnotateConfig controls report generation.
type AnnotateConfig struct {
	// Namespace selects category tables: A (all), B, M, C or none.
	Namespace string `mapstructure:"namespace"`
	// SlimTag picks the candidate terms of the category tables.
	SlimTag string `mapstructure:"slim_tag"`
	// Relaxed also counts terms reachable through inverse has_part.
	Relaxed bool `mapstructure:"relaxed"`
	// ProteinFile is the UniProt XML file name inside each data directory.
	ProteinFile string `mapstructure:"protein_file"`
	// Format is the report format (xlsx, tsv, json, yaml).
	Format string `mapstructure:"format"`
	// Workers bounds concurrent category tables; 0 means one per namespace.
	Workers int `mapstructure:"workers"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Annotate: AnnotateConfig{
			Namespace:   "A",
			SlimTag:     "goslim_generic",
			ProteinFile: "listUP.xml",
			Format:      string(report.XLSX),
		},
		Log: LogConfig{Level: "info"},
	}
}

// New returns a viper instance carrying the defaults and environment
// bindings. Callers bind flags on it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("ontology.path", def.Ontology.Path)
	v.SetDefault("ontology.slim_path", def.Ontology.SlimPath)
	v.SetDefault("ontology.slim_limit", def.Ontology.SlimLimit)
	v.SetDefault("ontology.verbose", def.Ontology.Verbose)
	v.SetDefault("annotate.namespace", def.Annotate.Namespace)
	v.SetDefault("annotate.slim_tag", def.Annotate.SlimTag)
	v.SetDefault("annotate.relaxed", def.Annotate.Relaxed)
	v.SetDefault("annotate.protein_file", def.Annotate.ProteinFile)
	v.SetDefault("annotate.format", def.Annotate.Format)
	v.SetDefault("annotate.workers", def.Annotate.Workers)
	v.SetDefault("log.level", def.Log.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional YAML file at path into v and decodes the result.
// Precedence: defaults < file < environment < bound flags.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Ontology.Path == "" {
		errs = append(errs, errors.New("ontology.path is required"))
	}
	if _, err := annotate.ParseNamespaces(c.Annotate.Namespace); err != nil {
		errs = append(errs, err)
	}
	if c.Annotate.SlimTag == "" {
		errs = append(errs, errors.New("annotate.slim_tag is required"))
	}
	if c.Annotate.ProteinFile == "" {
		errs = append(errs, errors.New("annotate.protein_file is required"))
	}
	if _, err := report.ParseFormat(c.Annotate.Format); err != nil {
		errs = append(errs, fmt.Errorf("annotate.format: %w", err))
	}
	if c.Annotate.Workers < 0 {
		errs = append(errs, errors.New("annotate.workers must not be negative"))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}
