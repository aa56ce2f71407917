package config

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/KaramelBytes/brokerdash-cli/internal/dataset"
	"github.com/KaramelBytes/brokerdash-cli/internal/report"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	MinSuccessRate int `mapstructure:"min_success_rate" yaml:"min_success_rate"`
	TopResolutionN int `mapstructure:"top_resolution_n" yaml:"top_resolution_n"`
	TopSuccessN    int `mapstructure:"top_success_n" yaml:"top_success_n"`
	TopEfficiencyN int `mapstructure:"top_efficiency_n" yaml:"top_efficiency_n"`
	PreviewRows    int `mapstructure:"preview_rows" yaml:"preview_rows"`

	// CSV locale; empty means auto-detect
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	ExportFilename string `mapstructure:"export_filename" yaml:"export_filename"`

	// Dashboard
	ServeAddr   string `mapstructure:"serve_addr" yaml:"serve_addr"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	MaxSessions int    `mapstructure:"max_sessions" yaml:"max_sessions"`

	AppEnv string `mapstructure:"app_env" yaml:"app_env"`
}

// Dir returns ~/.brokerdash.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".brokerdash"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.brokerdash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
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
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("BROKERDASH")
	v.AutomaticEnv()

	v.SetDefault("min_success_rate", 50)
	v.SetDefault("top_resolution_n", 20)
	v.SetDefault("top_success_n", 5)
	v.SetDefault("top_efficiency_n", 5)
	v.SetDefault("preview_rows", 5)
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("export_filename", "filtered_data.csv")
	v.SetDefault("serve_addr", ":8501")
	v.SetDefault("max_upload_mb", 32)
	v.SetDefault("max_sessions", 100)
	v.SetDefault("app_env", "development")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Global) Validate() error {
	if c.MinSuccessRate < 0 || c.MinSuccessRate > 100 {
		return fmt.Errorf("min_success_rate must be between 0 and 100, got %d", c.MinSuccessRate)
	}
	for key, n := range map[string]int{
		"top_resolution_n": c.TopResolutionN,
		"top_success_n":    c.TopSuccessN,
		"top_efficiency_n": c.TopEfficiencyN,
		"preview_rows":     c.PreviewRows,
	} {
		if n < 0 {
			return fmt.Errorf("%s must be >= 0, got %d", key, n)
		}
	}
	for key, s := range map[string]string{
		"delimiter":           c.Delimiter,
		"decimal_separator":   c.DecimalSeparator,
		"thousands_separator": c.ThousandsSeparator,
	} {
		if utf8.RuneCountInString(s) > 1 && s != `\t` {
			return fmt.Errorf("%s must be a single character, got %q", key, s)
		}
	}
	return nil
}

// ParseOptions builds CSV parse options. An unset delimiter falls back to
// the one implied by filename.
func (c *Global) ParseOptions(filename string) dataset.ParseOptions {
	opt := dataset.DefaultParseOptions()
	opt.Delimiter = dataset.DelimiterFor(filename)
	if r := runeOf(c.Delimiter); r != 0 {
		opt.Delimiter = r
	}
	opt.DecimalSeparator = runeOf(c.DecimalSeparator)
	opt.ThousandsSeparator = runeOf(c.ThousandsSeparator)
	return opt
}

// ReportOptions returns the view sizes for report.Build.
func (c *Global) ReportOptions() report.Options {
	return report.Options{
		TopResolution: c.TopResolutionN,
		TopSuccess:    c.TopSuccessN,
		TopEfficiency: c.TopEfficiencyN,
		PreviewRows:   c.PreviewRows,
	}
}

func runeOf(s string) rune {
	if s == `\t` {
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// NewLogger creates a zap logger. Debug always gets a development logger;
// otherwise production env logs JSON at info and everything else logs
// warnings only so CLI output stays readable.
func NewLogger(appEnv string, debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	if appEnv == "production" {
		return zap.NewProduction()
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return zc.Build()
}
