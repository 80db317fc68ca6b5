// Package config loads client settings from defaults, an optional YAML file, a .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/petasbytes/mcp-chat/internal/dispatch"
	"github.com/petasbytes/mcp-chat/internal/provider"
)

// Environment keys.
const (
	EnvAPIKey           = "ANTHROPIC_API_KEY"
	EnvBaseURL          = "ANTHROPIC_BASE_URL"
	EnvConfigFile       = "MCPC_CONFIG"
	EnvModel            = "MCPC_MODEL"
	EnvMaxTokens        = "MCPC_MAX_TOKENS"
	EnvSystemPrompt     = "MCPC_SYSTEM_PROMPT"
	EnvToolErrorPolicy  = "MCPC_TOOL_ERROR_POLICY"
	EnvParallelTools    = "MCPC_PARALLEL_TOOLS"
	EnvMaxToolRounds    = "MCPC_MAX_TOOL_ROUNDS"
	EnvValidateToolArgs = "MCPC_VALIDATE_TOOL_ARGS"
	EnvToolTimeout      = "MCPC_TOOL_TIMEOUT"
	EnvTokenBudget      = "MCPC_TOKEN_BUDGET"
	EnvLogLevel         = "MCPC_LOG_LEVEL"
	EnvObserveJSON      = "MCPC_OBSERVE_JSON"
)

type Config struct {
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	Model        string `yaml:"model"`
	MaxTokens    int64  `yaml:"max_tokens"`
	SystemPrompt string `yaml:"system_prompt"`

	// ToolErrorPolicy is "abort" or "report".
	ToolErrorPolicy string `yaml:"tool_error_policy"`
	// ParallelTools > 1 runs that many tool calls of one batch at once.
	ParallelTools    int           `yaml:"parallel_tools"`
	MaxToolRounds    int           `yaml:"max_tool_rounds"`
	ValidateToolArgs bool          `yaml:"validate_tool_args"`
	ToolTimeout      time.Duration `yaml:"tool_timeout"`
	// TokenBudget > 0 windows every request to roughly that many input tokens.
	TokenBudget int `yaml:"token_budget"`

	LogLevel    string `yaml:"log_level"`
	ObserveJSON bool   `yaml:"observe_json"`
}

func Default() Config {
	return Config{
		Model:            string(provider.DefaultModel),
		MaxTokens:        provider.DefaultMaxTokens,
		ToolErrorPolicy:  "abort",
		MaxToolRounds:    1,
		ValidateToolArgs: true,
		LogLevel:         "warn",
	}
}

// LoadOptions exists for tests; the zero value reads ./.env and the real environment.
type LoadOptions struct {
	DotEnvPath string
	LookupEnv  func(string) (string, bool)
}

// Load builds the configuration and validates it.
func Load() (Config, error) { return LoadWith(LoadOptions{}) }

func LoadWith(opts LoadOptions) (Config, error) {
	if opts.DotEnvPath == "" {
		opts.DotEnvPath = ".env"
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}

	dotenv, err := godotenv.Read(opts.DotEnvPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", opts.DotEnvPath, err)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := opts.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	cfg := Default()
	if path, ok := lookup(EnvConfigFile); ok && path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.mergeEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, &FieldError{Key: key, Value: v, Err: err})
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			b, err := ParseBool(v)
			if err != nil {
				errs = append(errs, &FieldError{Key: key, Value: v, Err: err})
				return
			}
			*dst = b
		}
	}

	str(EnvAPIKey, &c.APIKey)
	str(EnvBaseURL, &c.BaseURL)
	str(EnvModel, &c.Model)
	str(EnvSystemPrompt, &c.SystemPrompt)
	str(EnvToolErrorPolicy, &c.ToolErrorPolicy)
	str(EnvLogLevel, &c.LogLevel)

	maxTokens := int(c.MaxTokens)
	num(EnvMaxTokens, &maxTokens)
	c.MaxTokens = int64(maxTokens)
	num(EnvParallelTools, &c.ParallelTools)
	num(EnvMaxToolRounds, &c.MaxToolRounds)
	num(EnvTokenBudget, &c.TokenBudget)

	flag(EnvValidateToolArgs, &c.ValidateToolArgs)
	flag(EnvObserveJSON, &c.ObserveJSON)

	if v, ok := lookup(EnvToolTimeout); ok && strings.TrimSpace(v) != "" {
		d, err := ParseDuration(v)
		if err != nil {
			errs = append(errs, &FieldError{Key: EnvToolTimeout, Value: v, Err: err})
		} else {
			c.ToolTimeout = d
		}
	}
	return errors.Join(errs...)
}

// Validate rejects out-of-range values. Empty model and log level fall back to defaults.
func (c *Config) Validate() error {
	var errs []error
	if c.Model == "" {
		c.Model = string(provider.DefaultModel)
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.APIKey == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, &FieldError{Key: EnvMaxTokens, Value: strconv.FormatInt(c.MaxTokens, 10), Err: errMustBePositive})
	}
	if c.MaxToolRounds < 1 {
		errs = append(errs, &FieldError{Key: EnvMaxToolRounds, Value: strconv.Itoa(c.MaxToolRounds), Err: errMustBePositive})
	}
	if c.ParallelTools < 0 {
		errs = append(errs, &FieldError{Key: EnvParallelTools, Value: strconv.Itoa(c.ParallelTools), Err: errNegative})
	}
	if c.TokenBudget < 0 {
		errs = append(errs, &FieldError{Key: EnvTokenBudget, Value: strconv.Itoa(c.TokenBudget), Err: errNegative})
	}
	if c.ToolTimeout < 0 {
		errs = append(errs, &FieldError{Key: EnvToolTimeout, Value: c.ToolTimeout.String(), Err: errNegative})
	}
	if _, err := dispatch.ParsePolicy(c.ToolErrorPolicy); err != nil {
		errs = append(errs, &FieldError{Key: EnvToolErrorPolicy, Value: c.ToolErrorPolicy, Err: err})
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, &FieldError{Key: EnvLogLevel, Value: c.LogLevel, Err: err})
	}
	return errors.Join(errs...)
}

// Policy is the parsed ToolErrorPolicy; call after Validate.
func (c Config) Policy() dispatch.Policy {
	p, _ := dispatch.ParsePolicy(c.ToolErrorPolicy)
	return p
}

// ParseBool accepts the strconv forms plus on/off and yes/no.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "yes", "y":
		return true, nil
	case "off", "no", "n":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}

// ParseDuration accepts Go duration strings or a bare number of seconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}
