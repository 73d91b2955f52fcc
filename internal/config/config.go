package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/leadscore-cli/internal/filter"
	"github.com/KaramelBytes/leadscore-cli/internal/scoring"
)

const dirName = ".leadscore"

// Global configuration structure.
type Global struct {
	WeightFunding   float64 `mapstructure:"weight_funding" yaml:"weight_funding"`
	WeightRounds    float64 `mapstructure:"weight_rounds" yaml:"weight_rounds"`
	WeightAge       float64 `mapstructure:"weight_age" yaml:"weight_age"`
	WeightDiversity float64 `mapstructure:"weight_diversity" yaml:"weight_diversity"`

	// Channel columns counted toward funding diversity beyond seed/venture/angel.
	ExtraChannels []string `mapstructure:"extra_channels" yaml:"extra_channels"`

	DefaultLimit int    `mapstructure:"default_limit" yaml:"default_limit"`
	DefaultSort  string `mapstructure:"default_sort" yaml:"default_sort"`
	Encoding     string `mapstructure:"encoding" yaml:"encoding"`
	PresetsDir   string `mapstructure:"presets_dir" yaml:"presets_dir"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"weight_funding", "weight_rounds", "weight_age", "weight_diversity",
	"extra_channels", "default_limit", "default_sort", "encoding", "presets_dir", "log_level",
}

// Weights returns the configured scoring weights.
func (c *Global) Weights() scoring.Weights {
	return scoring.Weights{
		Funding:   c.WeightFunding,
		Rounds:    c.WeightRounds,
		Age:       c.WeightAge,
		Diversity: c.WeightDiversity,
	}
}

// Validate checks weights, sort key and limit.
func (c *Global) Validate() error {
	if err := c.Weights().Validate(); err != nil {
		return err
	}
	if _, err := filter.ParseSortKey(c.DefaultSort); err != nil {
		return err
	}
	if c.DefaultLimit < 0 {
		return fmt.Errorf("default_limit must be >= 0, got %d", c.DefaultLimit)
	}
	return nil
}

// Defaults returns the built-in configuration without reading any file or env.
func Defaults() *Global {
	w := scoring.DefaultWeights()
	return &Global{
		WeightFunding:   w.Funding,
		WeightRounds:    w.Rounds,
		WeightAge:       w.Age,
		WeightDiversity: w.Diversity,
		DefaultSort:     string(filter.SortScore),
		Encoding:        "utf-8",
		LogLevel:        "warn",
	}
}

// DefaultPath returns ~/.leadscore/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.leadscore/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("LEADSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("weight_funding", d.WeightFunding)
	v.SetDefault("weight_rounds", d.WeightRounds)
	v.SetDefault("weight_age", d.WeightAge)
	v.SetDefault("weight_diversity", d.WeightDiversity)
	v.SetDefault("extra_channels", []string{})
	v.SetDefault("default_limit", d.DefaultLimit)
	v.SetDefault("default_sort", d.DefaultSort)
	v.SetDefault("encoding", d.Encoding)
	v.SetDefault("presets_dir", "")
	v.SetDefault("log_level", d.LogLevel)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, dirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// env values for list keys arrive as a single comma-separated string
	if len(c.ExtraChannels) == 1 && strings.Contains(c.ExtraChannels[0], ",") {
		c.ExtraChannels = SplitList(c.ExtraChannels[0])
	}
	if c.PresetsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.PresetsDir = filepath.Join(home, dirName, "presets")
	}
	return &c, nil
}

// Set assigns a single key from its string form.
func (c *Global) Set(key, value string) error {
	value = strings.TrimSpace(value)
	var err error
	switch strings.ToLower(key) {
	case "weight_funding":
		c.WeightFunding, err = parseFloat(key, value)
	case "weight_rounds":
		c.WeightRounds, err = parseFloat(key, value)
	case "weight_age":
		c.WeightAge, err = parseFloat(key, value)
	case "weight_diversity":
		c.WeightDiversity, err = parseFloat(key, value)
	case "extra_channels":
		c.ExtraChannels = SplitList(value)
	case "default_limit":
		n, perr := strconv.Atoi(value)
		if perr != nil {
			return fmt.Errorf("invalid %s: %q", key, value)
		}
		c.DefaultLimit = n
	case "default_sort":
		c.DefaultSort = value
	case "encoding":
		c.Encoding = value
	case "presets_dir":
		c.PresetsDir = value
	case "log_level":
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown key: %s (valid: %s)", key, strings.Join(Keys, ", "))
	}
	return err
}

// Get returns a key's value formatted for display.
func (c *Global) Get(key string) (string, error) {
	switch strings.ToLower(key) {
	case "weight_funding":
		return fmt.Sprintf("%g", c.WeightFunding), nil
	case "weight_rounds":
		return fmt.Sprintf("%g", c.WeightRounds), nil
	case "weight_age":
		return fmt.Sprintf("%g", c.WeightAge), nil
	case "weight_diversity":
		return fmt.Sprintf("%g", c.WeightDiversity), nil
	case "extra_channels":
		return strings.Join(c.ExtraChannels, ","), nil
	case "default_limit":
		return fmt.Sprintf("%d", c.DefaultLimit), nil
	case "default_sort":
		return c.DefaultSort, nil
	case "encoding":
		return c.Encoding, nil
	case "presets_dir":
		return c.PresetsDir, nil
	case "log_level":
		return c.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// SplitList splits a comma-separated list, trimming blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return f, nil
}
