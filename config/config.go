package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/devcli/devcli/code_analyzer"
	"github.com/devcli/devcli/providers"
	"github.com/devcli/devcli/providers/models"
	"github.com/devcli/devcli/token_management"
	"github.com/devcli/devcli/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// keyDelimiter replaces viper's "." so that model names such as "llama3.1" stay single keys.
const keyDelimiter = "::"

const (
	configFileName = "devcli-config"
	userConfigDir  = ".devcli"
	userConfigFile = "config.yaml"
	envPrefix      = "DEVCLI"
)

// Config represents the structure of the configuration file
type Config struct {
	Version        string                                 `mapstructure:"version"`
	Theme          string                                 `mapstructure:"theme"`
	LogLevel       string                                 `mapstructure:"log_level"`
	DefaultModel   string                                 `mapstructure:"default_model"`
	Models         map[string]*providers.AIProviderConfig `mapstructure:"models"`
	OllamaBaseURL  string                                 `mapstructure:"ollama_base_url"`
	RequestTimeout time.Duration                          `mapstructure:"request_timeout"`
	MaxTokens      int                                    `mapstructure:"max_tokens"`
	CharsPerToken  float64                                `mapstructure:"chars_per_token"`
	PerFileByteCap int                                    `mapstructure:"per_file_byte_cap"`
	MaxFileSize    int64                                  `mapstructure:"max_file_size"`
	ProjectIgnore  []string                               `mapstructure:"project_ignore"`
	Extensions     []string                               `mapstructure:"extensions"`

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string `mapstructure:"-"`

	v *viper.Viper
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:        "0.3.0",
	Theme:          "dracula",
	LogLevel:       "info",
	DefaultModel:   "llama3.1",
	OllamaBaseURL:  "http://localhost:11434",
	RequestTimeout: 120 * time.Second,
	MaxTokens:      2000,
	CharsPerToken:  token_management.DefaultCharsPerToken,
	PerFileByteCap: 16 * 1024,
	MaxFileSize:    code_analyzer.DefaultMaxFileSize,
	ProjectIgnore:  []string{"node_modules", "venv", ".git", "__pycache__", "*.pyc", ".env"},
	Extensions:     code_analyzer.DefaultExtensions,
}

var defaultModels = map[string]any{
	"llama3.1": map[string]any{
		"provider":   "ollama",
		"model_name": "llama3.1",
	},
	"deepseek-r1": map[string]any{
		"provider":   "ollama",
		"model_name": "deepseek-r1:7b",
	},
}

// settableKeys are the scalar and list keys `config set` accepts.
var settableKeys = map[string]string{
	"theme":             "string",
	"log_level":         "string",
	"default_model":     "string",
	"ollama_base_url":   "string",
	"request_timeout":   "duration",
	"max_tokens":        "int",
	"chars_per_token":   "float",
	"per_file_byte_cap": "int",
	"max_file_size":     "int",
	"project_ignore":    "list",
	"extensions":        "list",
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and environment variables, and returns the final config.
// Precedence is flags, then environment, then the config file, then defaults.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_", ".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	configFile, err := readConfigFile(v, cwd)
	if err != nil {
		return nil, err
	}

	if rootCmd != nil {
		bindFlags(v, rootCmd)
	}

	config, err := decode(v)
	if err != nil {
		return nil, err
	}
	config.ConfigFile = configFile

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func readConfigFile(v *viper.Viper, cwd string) (string, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		return v.ConfigFileUsed(), nil
	}

	// devcli-config.{yaml,yml,json} in the working directory
	v.SetConfigName(configFileName)
	v.AddConfigPath(cwd)
	err := v.ReadInConfig()
	if err == nil {
		return v.ConfigFileUsed(), nil
	}
	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		return "", fmt.Errorf("error reading config file: %w", err)
	}

	userFile, err := UserConfigPath()
	if err != nil {
		return "", nil
	}
	if _, statErr := os.Stat(userFile); statErr != nil {
		return "", nil
	}
	v.SetConfigFile(userFile)
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("error reading config file %s: %w", userFile, err)
	}
	return v.ConfigFileUsed(), nil
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}
	if config.Models == nil {
		config.Models = map[string]*providers.AIProviderConfig{}
	}
	config.v = v
	return &config, nil
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", DefaultConfig.Version)
	v.SetDefault("theme", DefaultConfig.Theme)
	v.SetDefault("log_level", DefaultConfig.LogLevel)
	v.SetDefault("default_model", DefaultConfig.DefaultModel)
	v.SetDefault("models", defaultModels)
	v.SetDefault("ollama_base_url", DefaultConfig.OllamaBaseURL)
	v.SetDefault("request_timeout", DefaultConfig.RequestTimeout)
	v.SetDefault("max_tokens", DefaultConfig.MaxTokens)
	v.SetDefault("chars_per_token", DefaultConfig.CharsPerToken)
	v.SetDefault("per_file_byte_cap", DefaultConfig.PerFileByteCap)
	v.SetDefault("max_file_size", DefaultConfig.MaxFileSize)
	v.SetDefault("project_ignore", DefaultConfig.ProjectIgnore)
	v.SetDefault("extensions", DefaultConfig.Extensions)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("theme", "DEVCLI_THEME")
	_ = v.BindEnv("log_level", "DEVCLI_LOG_LEVEL")
	_ = v.BindEnv("default_model", "DEVCLI_DEFAULT_MODEL", "DEVCLI_MODEL")
	_ = v.BindEnv("ollama_base_url", "DEVCLI_OLLAMA_BASE_URL", "OLLAMA_HOST")
	_ = v.BindEnv("request_timeout", "DEVCLI_REQUEST_TIMEOUT")
	_ = v.BindEnv("max_tokens", "DEVCLI_MAX_TOKENS")
	_ = v.BindEnv("chars_per_token", "DEVCLI_CHARS_PER_TOKEN")
	_ = v.BindEnv("per_file_byte_cap", "DEVCLI_PER_FILE_BYTE_CAP")
	_ = v.BindEnv("max_file_size", "DEVCLI_MAX_FILE_SIZE")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(v *viper.Viper, rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	bind := func(key, flag string) {
		if f := flags.Lookup(flag); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
	bind("theme", "theme")
	bind("log_level", "log_level")
	bind("default_model", "model")
	bind("ollama_base_url", "ollama_base_url")
	bind("request_timeout", "request_timeout")
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	// Use PersistentFlags so that these flags are available in all subcommands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Set customize theme for highlighting answers. (e.g., 'dracula', 'monokai', 'github')")
	rootCmd.PersistentFlags().String("log_level", DefaultConfig.LogLevel, "Log level: trace, debug, info, warn, error or disabled.")
	rootCmd.PersistentFlags().BoolP("verbose", "V", false, "Shortcut for --log_level debug.")
	rootCmd.PersistentFlags().StringP("model", "m", DefaultConfig.DefaultModel, "Name of the configured model to use (see 'devcli config show').")
	rootCmd.PersistentFlags().String("ollama_base_url", DefaultConfig.OllamaBaseURL, "Base URL of the Ollama server.")
	rootCmd.PersistentFlags().Duration("request_timeout", DefaultConfig.RequestTimeout, "Timeout of a single model request.")

	// Version flag
	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.MaxTokens <= 0 {
		return &ConfigError{Field: "max_tokens", Message: "must be greater than zero"}
	}
	if c.CharsPerToken <= 0 {
		return &ConfigError{Field: "chars_per_token", Message: "must be greater than zero"}
	}
	if c.PerFileByteCap < 0 {
		return &ConfigError{Field: "per_file_byte_cap", Message: "must not be negative"}
	}
	if c.MaxFileSize <= 0 {
		return &ConfigError{Field: "max_file_size", Message: "must be greater than zero"}
	}
	if c.RequestTimeout <= 0 {
		return &ConfigError{Field: "request_timeout", Message: "must be greater than zero"}
	}
	if _, ok := utils.ParseLogLevel(c.LogLevel); !ok {
		return &ConfigError{Field: "log_level", Message: fmt.Sprintf("unknown level %q (use %s)", c.LogLevel, strings.Join(utils.LogLevels, ", "))}
	}
	for name, model := range c.Models {
		if model == nil || strings.TrimSpace(model.ModelName) == "" {
			return &ConfigError{Field: "models" + keyDelimiter + name, Message: "model_name is required"}
		}
		if strings.TrimSpace(model.Provider) == "" {
			return &ConfigError{Field: "models" + keyDelimiter + name, Message: "provider is required"}
		}
	}
	if _, ok := c.Models[strings.ToLower(c.DefaultModel)]; !ok {
		return &ConfigError{Field: "default_model", Message: fmt.Sprintf("model %q is not configured", c.DefaultModel)}
	}
	return nil
}

// BudgetChars is the character budget of the context document.
func (c *Config) BudgetChars() int {
	return token_management.BudgetChars(c.MaxTokens, c.CharsPerToken)
}

// IgnoreRules combines the built-in patterns, project_ignore and the project's ignore file, in that order.
func (c *Config) IgnoreRules(root string) (*utils.IgnoreRuleSet, error) {
	filePatterns, err := utils.GetIgnoreFilePatterns(root)
	if err != nil {
		return nil, err
	}
	return utils.NewIgnoreRuleSet(utils.DefaultIgnorePatterns, c.ProjectIgnore, filePatterns), nil
}

// ModelNames returns the configured model names in alphabetical order.
func (c *Config) ModelNames() []string {
	names := make([]string, 0, len(c.Models))
	for name := range c.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveModel returns the provider settings for name, or for the default model when name is empty.
func (c *Config) ResolveModel(name string) (*providers.AIProviderConfig, error) {
	if strings.TrimSpace(name) == "" {
		name = c.DefaultModel
	}
	model, ok := c.Models[strings.ToLower(name)]
	if !ok || model == nil {
		return nil, fmt.Errorf("%w: %q (configured: %s)", models.ErrModelNotConfigured, name, strings.Join(c.ModelNames(), ", "))
	}

	resolved := *model
	if resolved.BaseURL == "" && strings.EqualFold(resolved.Provider, "ollama") {
		resolved.BaseURL = c.OllamaURL()
	}
	resolved.Timeout = c.RequestTimeout
	return &resolved, nil
}

// OllamaURL is the configured Ollama address with a scheme.
func (c *Config) OllamaURL() string {
	return normalizeBaseURL(c.OllamaBaseURL)
}

// normalizeBaseURL accepts OLLAMA_HOST style values without a scheme.
func normalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Contains(raw, "://") {
		return raw
	}
	return "http://" + raw
}

// UserConfigPath is ~/.devcli/config.yaml.
func UserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, userConfigDir, userConfigFile), nil
}

// UpdateConfig parses value according to key's type, validates the result and saves it.
func (c *Config) UpdateConfig(key string, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	kind, ok := settableKeys[key]
	if !ok {
		keys := make([]string, 0, len(settableKeys))
		for k := range settableKeys {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return &ConfigError{Field: key, Message: "unknown key (settable: " + strings.Join(keys, ", ") + ")"}
	}

	typed, err := parseValue(kind, value)
	if err != nil {
		return &ConfigError{Field: key, Message: err.Error()}
	}

	previous := c.v.Get(key)
	c.v.Set(key, typed)
	if err := c.reloadAndSave(); err != nil {
		c.v.Set(key, previous)
		return err
	}
	return nil
}

// AddModel registers a model under name and saves the configuration.
func (c *Config) AddModel(name, provider, modelName, apiKey string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return &ConfigError{Field: "models", Message: "model name is required"}
	}
	if strings.Contains(name, keyDelimiter) {
		return &ConfigError{Field: "models", Message: fmt.Sprintf("model name must not contain %q", keyDelimiter)}
	}
	if strings.TrimSpace(provider) == "" || strings.TrimSpace(modelName) == "" {
		return &ConfigError{Field: "models" + keyDelimiter + name, Message: "provider and model_name are required"}
	}

	prefix := "models" + keyDelimiter + name + keyDelimiter
	c.v.Set(prefix+"provider", strings.ToLower(strings.TrimSpace(provider)))
	c.v.Set(prefix+"model_name", strings.TrimSpace(modelName))
	if apiKey != "" {
		c.v.Set(prefix+"api_key", apiKey)
	}
	return c.reloadAndSave()
}

func (c *Config) reloadAndSave() error {
	updated, err := decode(c.v)
	if err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	configFile := c.ConfigFile
	*c = *updated
	c.ConfigFile = configFile

	return c.SaveConfig()
}

// SaveConfig writes all settings to the file they were loaded from, or to ~/.devcli/config.yaml.
func (c *Config) SaveConfig() error {
	target := c.ConfigFile
	if target == "" {
		userFile, err := UserConfigPath()
		if err != nil {
			return err
		}
		target = userFile
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := c.v.WriteConfigAs(target); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", target, err)
	}
	c.ConfigFile = target
	return nil
}

func parseValue(kind string, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch kind {
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %q", value)
		}
		return n, nil
	case "float":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("expected a number, got %q", value)
		}
		return f, nil
	case "duration":
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("expected a duration such as 90s, got %q", value)
		}
		return d.String(), nil
	case "list":
		items := []string{}
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	default:
		return value, nil
	}
}
