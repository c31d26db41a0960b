// Package config provides configuration file support for gra.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/richhaase/gerrit-review-agent/internal/agent"
	"github.com/richhaase/gerrit-review-agent/internal/gerrit"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = ".gra.yaml"

// Duration is a custom type that handles YAML duration parsing.
// Supports both Go duration format ("5m", "300s") and numeric seconds.
type Duration time.Duration

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case float64:
		*d = Duration(time.Duration(v) * time.Second)
	default:
		return fmt.Errorf("invalid duration type: %T", v)
	}
	return nil
}

// AsDuration returns the underlying time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// Config represents the gra configuration file.
type Config struct {
	Gerrit     GerritConfig `yaml:"gerrit"`
	Agent      *string      `yaml:"agent"`
	Model      *string      `yaml:"model"`
	Timeout    *Duration    `yaml:"timeout"`
	Prompt     *string      `yaml:"prompt"`
	PromptFile *string      `yaml:"prompt_file"`
}

// GerritConfig holds the connection settings for the Gerrit server.
// Secrets (password, cookie) are never read from the file; they come
// from GERRIT_PASSWORD and GERRIT_COOKIE only.
type GerritConfig struct {
	BaseURL            *string `yaml:"base_url"`
	Username           *string `yaml:"username"`
	AuthPrefix         *string `yaml:"auth_prefix"`
	InsecureSkipVerify *bool   `yaml:"tls_skip_verify"`
}

// LoadResult contains the loaded config and any warnings encountered.
type LoadResult struct {
	Config   *Config
	Warnings []string
	// Path is the file the config was read from, empty when no file exists.
	Path string
}

// LoadWithWarnings reads .gra.yaml from the current directory, falling back
// to the user's home directory. Returns an empty config (not error) if
// neither file exists.
func LoadWithWarnings() (*LoadResult, error) {
	if cwd, err := os.Getwd(); err == nil {
		path := filepath.Join(cwd, ConfigFileName)
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPathWithWarnings(path)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		return LoadFromPathWithWarnings(filepath.Join(home, ConfigFileName))
	}

	return &LoadResult{Config: &Config{}}, nil
}

// LoadFromDirWithWarnings reads .gra.yaml from the specified directory.
// Returns an empty config (not error) if the file doesn't exist.
func LoadFromDirWithWarnings(dir string) (*LoadResult, error) {
	return LoadFromPathWithWarnings(filepath.Join(dir, ConfigFileName))
}

// LoadFromPathWithWarnings reads a config file and returns warnings for
// unknown keys. Returns an empty config (not error) if the file doesn't
// exist. Returns an error if the file exists but is invalid YAML or fails
// validation.
func LoadFromPathWithWarnings(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &LoadResult{Config: &Config{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	warnings := checkUnknownKeys(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigFileName, err)
	}

	return &LoadResult{Config: &cfg, Warnings: warnings, Path: path}, nil
}

// knownTopLevelKeys are the valid top-level keys in the config file.
var knownTopLevelKeys = []string{"gerrit", "agent", "model", "timeout", "prompt", "prompt_file"}

// knownGerritKeys are the valid keys under the "gerrit" section.
var knownGerritKeys = []string{"base_url", "username", "auth_prefix", "tls_skip_verify"}

// secretEnvVars maps gerrit-section keys that must never live in the file to
// the environment variable that carries them instead.
var secretEnvVars = map[string]string{
	"password": "GERRIT_PASSWORD",
	"cookie":   "GERRIT_COOKIE",
}

// checkUnknownKeys checks for unknown keys in the YAML data and returns warnings.
func checkUnknownKeys(data []byte) []string {
	var warnings []string

	// Parse into a generic map to inspect keys
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		// If we can't parse, let the main parser handle the error
		return nil
	}

	// Check top-level keys
	for key := range raw {
		if !slices.Contains(knownTopLevelKeys, key) {
			warning := fmt.Sprintf("unknown key %q in %s", key, ConfigFileName)
			if suggestion := findSimilar(key, knownTopLevelKeys); suggestion != "" {
				warning += fmt.Sprintf(" (did you mean %q?)", suggestion)
			}
			warnings = append(warnings, warning)
		}
	}

	// Check keys under "gerrit" section
	if section, ok := raw["gerrit"].(map[string]any); ok {
		for key := range section {
			if slices.Contains(knownGerritKeys, key) {
				continue
			}
			if envVar, secret := secretEnvVars[key]; secret {
				warnings = append(warnings, fmt.Sprintf("key %q in gerrit section of %s is ignored; set %s instead", key, ConfigFileName, envVar))
				continue
			}
			warning := fmt.Sprintf("unknown key %q in gerrit section of %s", key, ConfigFileName)
			if suggestion := findSimilar(key, knownGerritKeys); suggestion != "" {
				warning += fmt.Sprintf(" (did you mean %q?)", suggestion)
			}
			warnings = append(warnings, warning)
		}
	}

	return warnings
}

// findSimilar finds the most similar string from candidates using Levenshtein distance.
// Returns empty string if no candidate is similar enough (threshold: 3 edits).
func findSimilar(input string, candidates []string) string {
	const maxDistance = 3
	bestMatch := ""
	bestDistance := maxDistance + 1

	for _, candidate := range candidates {
		dist := levenshtein(input, candidate)
		if dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshtein calculates the Levenshtein distance between two strings.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Create matrix
	matrix := make([][]int, len(ra)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(rb)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	// Fill matrix
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(ra)][len(rb)]
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	if c.Timeout != nil && *c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %s", time.Duration(*c.Timeout))
	}
	if c.Agent != nil && !slices.Contains(agent.SupportedAgents, *c.Agent) {
		return fmt.Errorf("agent must be one of %v, got %q", agent.SupportedAgents, *c.Agent)
	}
	if c.Gerrit.BaseURL != nil {
		u, err := url.Parse(*c.Gerrit.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("gerrit.base_url must be an http(s) URL, got %q", *c.Gerrit.BaseURL)
		}
	}
	return nil
}

// Defaults holds the built-in default values.
var Defaults = ResolvedConfig{
	AuthPrefix: "a/",
	Agent:      agent.DefaultAgent,
	Timeout:    agent.DefaultRunTimeout,
}

// ResolvedConfig holds the final resolved configuration values.
type ResolvedConfig struct {
	BaseURL            string
	Username           string
	Password           string
	Cookie             string
	AuthPrefix         string
	InsecureSkipVerify bool
	Agent              string
	Model              string
	Timeout            time.Duration
	Prompt             string
	PromptFile         string
}

// Credentials converts the resolved Gerrit settings into client credentials.
func (rc ResolvedConfig) Credentials() gerrit.Credentials {
	return gerrit.Credentials{
		BaseURL:            rc.BaseURL,
		Username:           rc.Username,
		Password:           rc.Password,
		SessionCookie:      rc.Cookie,
		AuthPathPrefix:     rc.AuthPrefix,
		InsecureSkipVerify: rc.InsecureSkipVerify,
	}
}

// FlagState tracks whether a flag was explicitly set.
type FlagState struct {
	BaseURLSet            bool
	UsernameSet           bool
	PasswordSet           bool
	CookieSet             bool
	AuthPrefixSet         bool
	InsecureSkipVerifySet bool
	AgentSet              bool
	ModelSet              bool
	TimeoutSet            bool
	PromptSet             bool
	PromptFileSet         bool
}

// EnvState captures env var values and whether they were set.
type EnvState struct {
	BaseURL               string
	BaseURLSet            bool
	Username              string
	UsernameSet           bool
	Password              string
	PasswordSet           bool
	Cookie                string
	CookieSet             bool
	AuthPrefix            string
	AuthPrefixSet         bool
	InsecureSkipVerify    bool
	InsecureSkipVerifySet bool
	Agent                 string
	AgentSet              bool
	Model                 string
	ModelSet              bool
	Timeout               time.Duration
	TimeoutSet            bool
	Prompt                string
	PromptSet             bool
	PromptFile            string
	PromptFileSet         bool
}

// LoadEnvState reads environment variables and returns their state.
// Gerrit connection settings use the GERRIT_ prefix shared with other
// Gerrit tooling; gra's own settings use the GRA_ prefix.
func LoadEnvState() EnvState {
	var state EnvState

	if v := os.Getenv("GERRIT_BASE_URL"); v != "" {
		state.BaseURL = v
		state.BaseURLSet = true
	}
	if v := os.Getenv("GERRIT_USERNAME"); v != "" {
		state.Username = v
		state.UsernameSet = true
	}
	if v := os.Getenv("GERRIT_PASSWORD"); v != "" {
		state.Password = v
		state.PasswordSet = true
	}
	if v := os.Getenv("GERRIT_COOKIE"); v != "" {
		state.Cookie = v
		state.CookieSet = true
	}
	if v := os.Getenv("GERRIT_AUTH_PREFIX"); v != "" {
		state.AuthPrefix = v
		state.AuthPrefixSet = true
	}
	if v := os.Getenv("GERRIT_TLS_SKIP_VERIFY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			state.InsecureSkipVerify = b
			state.InsecureSkipVerifySet = true
		}
	}
	if v := os.Getenv("GRA_AGENT"); v != "" {
		state.Agent = v
		state.AgentSet = true
	}
	if v := os.Getenv("GRA_MODEL"); v != "" {
		state.Model = v
		state.ModelSet = true
	}
	if v := os.Getenv("GRA_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			state.Timeout = d
			state.TimeoutSet = true
		} else if secs, err := strconv.Atoi(v); err == nil {
			state.Timeout = time.Duration(secs) * time.Second
			state.TimeoutSet = true
		}
	}
	if v := os.Getenv("GRA_PROMPT"); v != "" {
		state.Prompt = v
		state.PromptSet = true
	}
	if v := os.Getenv("GRA_PROMPT_FILE"); v != "" {
		state.PromptFile = v
		state.PromptFileSet = true
	}

	return state
}

// Resolve merges config file values with env vars and flags.
// Precedence: flags > env vars > config file > defaults
func Resolve(cfg *Config, envState EnvState, flagState FlagState, flagValues ResolvedConfig) ResolvedConfig {
	result := Defaults

	// Apply config file values (if set)
	if cfg != nil {
		if cfg.Gerrit.BaseURL != nil {
			result.BaseURL = *cfg.Gerrit.BaseURL
		}
		if cfg.Gerrit.Username != nil {
			result.Username = *cfg.Gerrit.Username
		}
		if cfg.Gerrit.AuthPrefix != nil {
			result.AuthPrefix = *cfg.Gerrit.AuthPrefix
		}
		if cfg.Gerrit.InsecureSkipVerify != nil {
			result.InsecureSkipVerify = *cfg.Gerrit.InsecureSkipVerify
		}
		if cfg.Agent != nil {
			result.Agent = *cfg.Agent
		}
		if cfg.Model != nil {
			result.Model = *cfg.Model
		}
		if cfg.Timeout != nil {
			result.Timeout = cfg.Timeout.AsDuration()
		}
		if cfg.Prompt != nil {
			result.Prompt = *cfg.Prompt
		}
		if cfg.PromptFile != nil {
			result.PromptFile = *cfg.PromptFile
		}
	}

	// Apply env var values (if set)
	if envState.BaseURLSet {
		result.BaseURL = envState.BaseURL
	}
	if envState.UsernameSet {
		result.Username = envState.Username
	}
	if envState.PasswordSet {
		result.Password = envState.Password
	}
	if envState.CookieSet {
		result.Cookie = envState.Cookie
	}
	if envState.AuthPrefixSet {
		result.AuthPrefix = envState.AuthPrefix
	}
	if envState.InsecureSkipVerifySet {
		result.InsecureSkipVerify = envState.InsecureSkipVerify
	}
	if envState.AgentSet {
		result.Agent = envState.Agent
	}
	if envState.ModelSet {
		result.Model = envState.Model
	}
	if envState.TimeoutSet {
		result.Timeout = envState.Timeout
	}
	if envState.PromptSet {
		result.Prompt = envState.Prompt
	}
	if envState.PromptFileSet {
		result.PromptFile = envState.PromptFile
	}

	// Apply flag values (if explicitly set)
	if flagState.BaseURLSet {
		result.BaseURL = flagValues.BaseURL
	}
	if flagState.UsernameSet {
		result.Username = flagValues.Username
	}
	if flagState.PasswordSet {
		result.Password = flagValues.Password
	}
	if flagState.CookieSet {
		result.Cookie = flagValues.Cookie
	}
	if flagState.AuthPrefixSet {
		result.AuthPrefix = flagValues.AuthPrefix
	}
	if flagState.InsecureSkipVerifySet {
		result.InsecureSkipVerify = flagValues.InsecureSkipVerify
	}
	if flagState.AgentSet {
		result.Agent = flagValues.Agent
	}
	if flagState.ModelSet {
		result.Model = flagValues.Model
	}
	if flagState.TimeoutSet {
		result.Timeout = flagValues.Timeout
	}
	if flagState.PromptSet {
		result.Prompt = flagValues.Prompt
	}
	if flagState.PromptFileSet {
		result.PromptFile = flagValues.PromptFile
	}

	return result
}

// ResolvePrompt resolves the final review prompt template with custom
// precedence logic. Unlike other config fields, prompts have a special
// precedence where prompt-file sources are checked separately from prompt
// string sources.
//
// Precedence (highest to lowest):
// 1. --prompt flag
// 2. --prompt-file flag
// 3. GRA_PROMPT env var
// 4. GRA_PROMPT_FILE env var
// 5. prompt config field
// 6. prompt_file config field
// 7. empty, meaning the built-in review prompt
//
// Returns the resolved prompt and an error if a prompt file cannot be read.
func ResolvePrompt(cfg *Config, envState EnvState, flagState FlagState, flagValues ResolvedConfig) (string, error) {
	// 1. Check --prompt flag (highest priority)
	if flagState.PromptSet && flagValues.Prompt != "" {
		return flagValues.Prompt, nil
	}

	// 2. Check --prompt-file flag
	if flagState.PromptFileSet && flagValues.PromptFile != "" {
		content, err := os.ReadFile(flagValues.PromptFile)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt file %q: %w", flagValues.PromptFile, err)
		}
		return string(content), nil
	}

	// 3. Check GRA_PROMPT env var
	if envState.PromptSet && envState.Prompt != "" {
		return envState.Prompt, nil
	}

	// 4. Check GRA_PROMPT_FILE env var
	if envState.PromptFileSet && envState.PromptFile != "" {
		content, err := os.ReadFile(envState.PromptFile)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt file %q: %w", envState.PromptFile, err)
		}
		return string(content), nil
	}

	// 5. Check prompt config field
	if cfg != nil && cfg.Prompt != nil && *cfg.Prompt != "" {
		return *cfg.Prompt, nil
	}

	// 6. Check prompt_file config field
	if cfg != nil && cfg.PromptFile != nil && *cfg.PromptFile != "" {
		content, err := os.ReadFile(*cfg.PromptFile)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt file %q: %w", *cfg.PromptFile, err)
		}
		return string(content), nil
	}

	// 7. No explicit prompt configured - the caller falls back to the
	// built-in review prompt.
	return "", nil
}
