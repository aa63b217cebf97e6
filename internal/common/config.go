package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/joseph-ayodele/docextract/constants"
)

// EnvPrefix is prepended to every environment override, e.g. DOCEXTRACT_PIPELINE_WORKERS.
const EnvPrefix = "DOCEXTRACT"

// Config holds all application configuration
type Config struct {
	Input    InputConfig    `mapstructure:"input"`
	Output   OutputConfig   `mapstructure:"output"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Text     TextConfig     `mapstructure:"text"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// InputConfig controls the directory scan.
type InputConfig struct {
	Dir        string   `mapstructure:"dir"`
	Recursive  bool     `mapstructure:"recursive"`
	SkipHidden bool     `mapstructure:"skip_hidden"`
	Extensions []string `mapstructure:"extensions"`
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	Dir     string   `mapstructure:"dir"`
	Formats []string `mapstructure:"formats"` // json | yaml | xlsx
}

// PipelineConfig holds batch execution settings
type PipelineConfig struct {
	Workers         int           `mapstructure:"workers"`
	DocumentTimeout time.Duration `mapstructure:"document_timeout"`
	MinTextLength   int           `mapstructure:"min_text_length"`
	Deduplicate     bool          `mapstructure:"deduplicate"`
	MarkDuplicates  bool          `mapstructure:"mark_duplicates"`
	// SkipEmptyFingerprints keeps records without any key field out of duplicate detection.
	SkipEmptyFingerprints bool `mapstructure:"skip_empty_fingerprints"`
}

// PolicyConfig is the raw form of the extraction and validation policy.
type PolicyConfig struct {
	Currencies             []string `mapstructure:"currencies"`
	RequiredFields         []string `mapstructure:"required_fields"`
	DateLayouts            []string `mapstructure:"date_layouts"`
	StopWords              []string `mapstructure:"stop_words"`
	NameMinLength          int      `mapstructure:"name_min_length"`
	NameMaxLength          int      `mapstructure:"name_max_length"`
	TermsMaxLength         int      `mapstructure:"terms_max_length"`
	SnapshotLength         int      `mapstructure:"snapshot_length"`
	ErrorPenalty           float64  `mapstructure:"error_penalty"`
	ErrorPenaltyCap        float64  `mapstructure:"error_penalty_cap"`
	MissingRequiredPenalty float64  `mapstructure:"missing_required_penalty"`
	PassThreshold          float64  `mapstructure:"pass_threshold"`
	PartialThreshold       float64  `mapstructure:"partial_threshold"`
}

// TextConfig holds text acquisition settings
type TextConfig struct {
	Pdftotext                string `mapstructure:"pdftotext"` // binary name or absolute path; empty disables the strategy
	TextBasedMinCharsPerPage int    `mapstructure:"text_based_min_chars_per_page"`
	DetectionPages           int    `mapstructure:"detection_pages"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string        `mapstructure:"driver"` // "" | sqlite | postgres
	DSN              string        `mapstructure:"dsn"`
	Store            bool          `mapstructure:"store"`
	MaxConns         int32         `mapstructure:"max_conns"`
	MinConns         int32         `mapstructure:"min_conns"`
	MaxConnLifetime  time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `mapstructure:"max_conn_idle_time"`
	DialTimeout      time.Duration `mapstructure:"dial_timeout"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | text
}

// SetDefaults registers every known key so env overrides and Unmarshal see them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input.dir", "input_pdfs")
	v.SetDefault("input.recursive", false)
	v.SetDefault("input.skip_hidden", true)
	v.SetDefault("input.extensions", []string{"pdf", "txt"})

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.formats", []string{"json", "xlsx"})

	v.SetDefault("pipeline.workers", 4)
	v.SetDefault("pipeline.document_timeout", 2*time.Minute)
	v.SetDefault("pipeline.min_text_length", 10)
	v.SetDefault("pipeline.deduplicate", true)
	v.SetDefault("pipeline.mark_duplicates", false)
	v.SetDefault("pipeline.skip_empty_fingerprints", false)

	v.SetDefault("policy.currencies", constants.DefaultCurrencies)
	required := make([]string, len(constants.DefaultRequiredFields))
	for i, f := range constants.DefaultRequiredFields {
		required[i] = string(f)
	}
	v.SetDefault("policy.required_fields", required)
	v.SetDefault("policy.date_layouts", []string{})
	v.SetDefault("policy.stop_words", []string{})
	v.SetDefault("policy.name_min_length", 4)
	v.SetDefault("policy.name_max_length", 99)
	v.SetDefault("policy.terms_max_length", 99)
	v.SetDefault("policy.snapshot_length", 2000)
	v.SetDefault("policy.error_penalty", 0.1)
	v.SetDefault("policy.error_penalty_cap", 0.5)
	v.SetDefault("policy.missing_required_penalty", 0.2)
	v.SetDefault("policy.pass_threshold", 0.8)
	v.SetDefault("policy.partial_threshold", 0.5)

	v.SetDefault("text.pdftotext", "pdftotext")
	v.SetDefault("text.text_based_min_chars_per_page", 50)
	v.SetDefault("text.detection_pages", 3)

	v.SetDefault("database.driver", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.store", false)
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("database.max_conn_idle_time", 5*time.Minute)
	v.SetDefault("database.dial_timeout", 3*time.Second)
	v.SetDefault("database.statement_timeout", time.Duration(0))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// BindEnv wires DOCEXTRACT_* environment variables onto dotted keys.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadConfig applies defaults and environment overrides to v and decodes the result.
func LoadConfig(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	BindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, NewAppError(CodeConfig, "decode configuration", err)
	}
	cfg.Input.Extensions = splitList(cfg.Input.Extensions)
	cfg.Output.Formats = splitList(cfg.Output.Formats)
	cfg.Policy.Currencies = splitList(cfg.Policy.Currencies)
	cfg.Policy.RequiredFields = splitList(cfg.Policy.RequiredFields)
	return &cfg, nil
}

// DefaultConfig is LoadConfig over an empty viper instance.
func DefaultConfig() *Config {
	cfg, err := LoadConfig(viper.New())
	if err != nil {
		panic(fmt.Sprintf("default configuration: %v", err))
	}
	return cfg
}

// splitList flattens comma-separated entries coming from env vars or flags.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("pipeline.workers", c.Pipeline.Workers, AtLeast(1))
	v.Field("pipeline.min_text_length", c.Pipeline.MinTextLength, AtLeast(0))
	v.Field("output.dir", c.Output.Dir, Required)
	v.Each("output.formats", c.Output.Formats, OneOf("json", "yaml", "xlsx"))

	v.Field("policy.currencies", c.Policy.Currencies, Required)
	v.Each("policy.currencies", c.Policy.Currencies, CurrencyCode)
	for i, f := range c.Policy.RequiredFields {
		if !constants.IsKnownField(f) {
			v.Field(fmt.Sprintf("policy.required_fields[%d]", i), f, func(name string, value interface{}) *ValidationError {
				return &ValidationError{Field: name, Value: value, Message: "unknown field"}
			})
		}
	}
	v.Field("policy.name_min_length", c.Policy.NameMinLength, AtLeast(1))
	v.Field("policy.name_max_length", c.Policy.NameMaxLength, AtLeast(c.Policy.NameMinLength))
	v.Field("policy.snapshot_length", c.Policy.SnapshotLength, AtLeast(1))
	unit := Between(0, 1)
	v.Field("policy.error_penalty", c.Policy.ErrorPenalty, unit)
	v.Field("policy.error_penalty_cap", c.Policy.ErrorPenaltyCap, unit)
	v.Field("policy.missing_required_penalty", c.Policy.MissingRequiredPenalty, unit)
	v.Field("policy.pass_threshold", c.Policy.PassThreshold, unit)
	v.Field("policy.partial_threshold", c.Policy.PartialThreshold, Between(0, c.Policy.PassThreshold))

	v.Field("database.driver", c.Database.Driver, OneOf("", "sqlite", "postgres"))
	if c.Database.Store && c.Database.Driver == "" {
		v.Field("database.driver", c.Database.Driver, Required)
	}
	if c.Database.Driver == "postgres" {
		v.Field("database.dsn", c.Database.DSN, Required)
	}
	v.Field("log.format", c.Log.Format, OneOf("json", "text"))
	return ValidateAndReturnError(v)
}
