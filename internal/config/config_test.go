package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestLoadFromDir_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".gra.yaml")

	content := `gerrit:
  base_url: https://gerrit.example.com
  username: reviewbot
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := LoadFromDirWithWarnings(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := result.Config
	if cfg.Gerrit.BaseURL == nil || *cfg.Gerrit.BaseURL != "https://gerrit.example.com" {
		t.Errorf("expected base_url, got %v", cfg.Gerrit.BaseURL)
	}
	if cfg.Gerrit.Username == nil || *cfg.Gerrit.Username != "reviewbot" {
		t.Errorf("expected username=reviewbot, got %v", cfg.Gerrit.Username)
	}
	if result.Path != configPath {
		t.Errorf("expected path %q, got %q", configPath, result.Path)
	}
}

func TestLoadFromDir_NoConfig(t *testing.T) {
	dir := t.TempDir()

	result, err := LoadFromDirWithWarnings(dir)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if result.Config == nil {
		t.Fatal("expected non-nil config")
	}
	if result.Path != "" {
		t.Errorf("expected empty path for missing file, got %q", result.Path)
	}
}

func TestLoadFromPath_FileNotFound(t *testing.T) {
	result, err := LoadFromPathWithWarnings("/nonexistent/path/.gra.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if result.Config == nil {
		t.Fatal("expected non-nil config")
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings for missing file, got: %v", result.Warnings)
	}
}

func TestLoadFromPath_FullConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".gra.yaml")

	content := `gerrit:
  base_url: https://gerrit.example.com
  username: reviewbot
  auth_prefix: a/
  tls_skip_verify: true
agent: claude
model: sonnet
timeout: 10m
prompt: "review change {{CHANGE_NUMBER}}"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := LoadFromPathWithWarnings(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := result.Config
	if cfg.Gerrit.BaseURL == nil || *cfg.Gerrit.BaseURL != "https://gerrit.example.com" {
		t.Errorf("expected base_url, got %v", cfg.Gerrit.BaseURL)
	}
	if cfg.Gerrit.Username == nil || *cfg.Gerrit.Username != "reviewbot" {
		t.Errorf("expected username=reviewbot, got %v", cfg.Gerrit.Username)
	}
	if cfg.Gerrit.InsecureSkipVerify == nil || !*cfg.Gerrit.InsecureSkipVerify {
		t.Errorf("expected tls_skip_verify=true, got %v", cfg.Gerrit.InsecureSkipVerify)
	}
	if cfg.Agent == nil || *cfg.Agent != "claude" {
		t.Errorf("expected agent=claude, got %v", cfg.Agent)
	}
	if cfg.Model == nil || *cfg.Model != "sonnet" {
		t.Errorf("expected model=sonnet, got %v", cfg.Model)
	}
	if cfg.Timeout == nil || cfg.Timeout.AsDuration() != 10*time.Minute {
		t.Errorf("expected timeout=10m, got %v", cfg.Timeout)
	}
	if cfg.Prompt == nil || *cfg.Prompt != "review change {{CHANGE_NUMBER}}" {
		t.Errorf("expected prompt, got %v", cfg.Prompt)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got: %v", result.Warnings)
	}
}

func TestLoadFromPath_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".gra.yaml")

	content := `gerrit:
  base_url: http://localhost:8080
model: opus
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := LoadFromPathWithWarnings(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := result.Config
	if cfg.Gerrit.BaseURL == nil || *cfg.Gerrit.BaseURL != "http://localhost:8080" {
		t.Errorf("expected base_url, got %v", cfg.Gerrit.BaseURL)
	}
	if cfg.Gerrit.Username != nil {
		t.Errorf("expected username=nil, got %v", cfg.Gerrit.Username)
	}
	if cfg.Model == nil || *cfg.Model != "opus" {
		t.Errorf("expected model=opus, got %v", cfg.Model)
	}
	if cfg.Agent != nil {
		t.Errorf("expected agent=nil, got %v", cfg.Agent)
	}
	if cfg.Timeout != nil {
		t.Errorf("expected timeout=nil, got %v", cfg.Timeout)
	}
}

func TestLoadFromPath_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".gra.yaml")

	if err := os.WriteFile(configPath, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := LoadFromPathWithWarnings(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Config.Agent != nil {
		t.Errorf("expected empty config, got agent %v", result.Config.Agent)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got: %v", result.Warnings)
	}
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".gra.yaml")

	content := `gerrit:
  base_url: "valid"
  invalid yaml here
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromPathWithWarnings(configPath)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadFromPath_InvalidTimeout(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".gra.yaml")

	content := `timeout: -5m
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromPathWithWarnings(configPath)
	if err == nil {
		t.Fatal("expected error for negative timeout")
	}
}

func TestLoadFromPath_InvalidBaseURL(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".gra.yaml")

	content := `gerrit:
  base_url: "not a url"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromPathWithWarnings(configPath)
	if err == nil {
		t.Fatal("expected error for invalid base_url")
	}
}

func TestLoadFromPath_InvalidAgent(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".gra.yaml")

	content := `agent: copilot
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromPathWithWarnings(configPath)
	if err == nil {
		t.Fatal("expected error for unsupported agent")
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		expected time.Duration
		wantErr  bool
	}{
		{"duration string 5m", "timeout: 5m", 5 * time.Minute, false},
		{"duration string 300s", "timeout: 300s", 5 * time.Minute, false},
		{"duration string 1h30m", "timeout: 1h30m", 90 * time.Minute, false},
		{"integer seconds", "timeout: 300", 5 * time.Minute, false},
		{"invalid string", "timeout: invalid", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg struct {
				Timeout *Duration `yaml:"timeout"`
			}
			err := yaml.Unmarshal([]byte(tt.yaml), &cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Timeout == nil {
				t.Fatal("expected timeout to be set")
			}
			if cfg.Timeout.AsDuration() != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, cfg.Timeout.AsDuration())
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"all nil valid", Config{}, false},
		{"valid agent", Config{Agent: strPtr("claude")}, false},
		{"unsupported agent", Config{Agent: strPtr("copilot")}, true},
		{"timeout negative", Config{Timeout: durationPtr(-time.Second)}, true},
		{"timeout zero", Config{Timeout: durationPtr(0)}, true},
		{"timeout positive valid", Config{Timeout: durationPtr(time.Minute)}, false},
		{"https base url valid", Config{Gerrit: GerritConfig{BaseURL: strPtr("https://gerrit.example.com")}}, false},
		{"http base url valid", Config{Gerrit: GerritConfig{BaseURL: strPtr("http://localhost:8080")}}, false},
		{"base url without scheme", Config{Gerrit: GerritConfig{BaseURL: strPtr("gerrit.example.com")}}, true},
		{"base url bad scheme", Config{Gerrit: GerritConfig{BaseURL: strPtr("ssh://gerrit.example.com")}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolve_FlagOverridesAll(t *testing.T) {
	cfg := &Config{Model: strPtr("config-model")}
	envState := EnvState{Model: "env-model", ModelSet: true}
	flagState := FlagState{ModelSet: true}
	flagValues := ResolvedConfig{Model: "flag-model"}

	result := Resolve(cfg, envState, flagState, flagValues)

	if result.Model != "flag-model" {
		t.Errorf("expected flag value, got %q", result.Model)
	}
}

func TestResolve_EnvOverridesConfig(t *testing.T) {
	cfg := &Config{Model: strPtr("config-model")}
	envState := EnvState{Model: "env-model", ModelSet: true}
	flagState := FlagState{} // no flags set
	flagValues := ResolvedConfig{}

	result := Resolve(cfg, envState, flagState, flagValues)

	if result.Model != "env-model" {
		t.Errorf("expected env value, got %q", result.Model)
	}
}

func TestResolve_ConfigOverridesDefault(t *testing.T) {
	cfg := &Config{Timeout: durationPtr(time.Minute)}
	envState := EnvState{}   // no env vars set
	flagState := FlagState{} // no flags set
	flagValues := ResolvedConfig{}

	result := Resolve(cfg, envState, flagState, flagValues)

	if result.Timeout != time.Minute {
		t.Errorf("expected config value 1m, got %v", result.Timeout)
	}
}

func TestResolve_DefaultsUsedWhenNothingSet(t *testing.T) {
	result := Resolve(&Config{}, EnvState{}, FlagState{}, ResolvedConfig{})

	if result.Agent != Defaults.Agent {
		t.Errorf("expected default agent %q, got %q", Defaults.Agent, result.Agent)
	}
	if result.AuthPrefix != "a/" {
		t.Errorf("expected default auth prefix \"a/\", got %q", result.AuthPrefix)
	}
	if result.Timeout != Defaults.Timeout {
		t.Errorf("expected default timeout %v, got %v", Defaults.Timeout, result.Timeout)
	}
	if result.BaseURL != "" {
		t.Errorf("expected empty base URL, got %q", result.BaseURL)
	}
}

func TestResolve_NilConfig(t *testing.T) {
	result := Resolve(nil, EnvState{}, FlagState{}, ResolvedConfig{})

	if result.Agent != Defaults.Agent {
		t.Errorf("expected default agent %q, got %q", Defaults.Agent, result.Agent)
	}
}

func TestResolve_MixedSources(t *testing.T) {
	// base URL from config, model from env, timeout from flag
	cfg := &Config{
		Gerrit:  GerritConfig{BaseURL: strPtr("https://config.example.com")},
		Model:   strPtr("config-model"),
		Timeout: durationPtr(1 * time.Minute),
	}
	envState := EnvState{
		Model:    "env-model",
		ModelSet: true,
	}
	flagState := FlagState{
		TimeoutSet: true,
	}
	flagValues := ResolvedConfig{
		Timeout: 10 * time.Minute,
	}

	result := Resolve(cfg, envState, flagState, flagValues)

	if result.BaseURL != "https://config.example.com" {
		t.Errorf("expected config base URL, got %q", result.BaseURL)
	}
	if result.Model != "env-model" {
		t.Errorf("expected env model, got %q", result.Model)
	}
	if result.Timeout != 10*time.Minute {
		t.Errorf("expected flag timeout 10m, got %v", result.Timeout)
	}
}

func TestLoadEnvState(t *testing.T) {
	t.Setenv("GERRIT_BASE_URL", "https://gerrit.example.com")
	t.Setenv("GERRIT_USERNAME", "reviewbot")
	t.Setenv("GERRIT_PASSWORD", "secret")
	t.Setenv("GERRIT_COOKIE", "GerritAccount=xyz")
	t.Setenv("GERRIT_AUTH_PREFIX", "auth/")
	t.Setenv("GERRIT_TLS_SKIP_VERIFY", "true")
	t.Setenv("GRA_AGENT", "claude")
	t.Setenv("GRA_MODEL", "sonnet")
	t.Setenv("GRA_TIMEOUT", "90s")
	t.Setenv("GRA_PROMPT", "look closely")

	state := LoadEnvState()

	if !state.BaseURLSet || state.BaseURL != "https://gerrit.example.com" {
		t.Errorf("BaseURL not loaded: %+v", state)
	}
	if !state.UsernameSet || state.Username != "reviewbot" {
		t.Errorf("Username not loaded: %+v", state)
	}
	if !state.PasswordSet || state.Password != "secret" {
		t.Errorf("Password not loaded: %+v", state)
	}
	if !state.CookieSet || state.Cookie != "GerritAccount=xyz" {
		t.Errorf("Cookie not loaded: %+v", state)
	}
	if !state.AuthPrefixSet || state.AuthPrefix != "auth/" {
		t.Errorf("AuthPrefix not loaded: %+v", state)
	}
	if !state.InsecureSkipVerifySet || !state.InsecureSkipVerify {
		t.Errorf("InsecureSkipVerify not loaded: %+v", state)
	}
	if !state.AgentSet || state.Agent != "claude" {
		t.Errorf("Agent not loaded: %+v", state)
	}
	if !state.ModelSet || state.Model != "sonnet" {
		t.Errorf("Model not loaded: %+v", state)
	}
	if !state.TimeoutSet || state.Timeout != 90*time.Second {
		t.Errorf("Timeout not loaded: %+v", state)
	}
	if !state.PromptSet || state.Prompt != "look closely" {
		t.Errorf("Prompt not loaded: %+v", state)
	}
}

func TestLoadEnvState_NumericTimeout(t *testing.T) {
	t.Setenv("GRA_TIMEOUT", "300")

	state := LoadEnvState()
	if !state.TimeoutSet || state.Timeout != 5*time.Minute {
		t.Errorf("numeric timeout not parsed as seconds: %+v", state.Timeout)
	}
}

func TestLoadEnvState_BadBoolIgnored(t *testing.T) {
	t.Setenv("GERRIT_TLS_SKIP_VERIFY", "yes-please")

	state := LoadEnvState()
	if state.InsecureSkipVerifySet {
		t.Error("unparseable bool should be ignored")
	}
}

func TestResolvedConfig_Credentials(t *testing.T) {
	rc := ResolvedConfig{
		BaseURL:            "https://gerrit.example.com",
		Username:           "reviewbot",
		Password:           "secret",
		Cookie:             "GerritAccount=xyz",
		AuthPrefix:         "a/",
		InsecureSkipVerify: true,
	}

	creds := rc.Credentials()

	if creds.BaseURL != rc.BaseURL {
		t.Errorf("BaseURL = %q, want %q", creds.BaseURL, rc.BaseURL)
	}
	if creds.Username != rc.Username || creds.Password != rc.Password {
		t.Error("basic auth pair not carried over")
	}
	if creds.SessionCookie != rc.Cookie {
		t.Errorf("SessionCookie = %q, want %q", creds.SessionCookie, rc.Cookie)
	}
	if creds.AuthPathPrefix != rc.AuthPrefix {
		t.Errorf("AuthPathPrefix = %q, want %q", creds.AuthPathPrefix, rc.AuthPrefix)
	}
	if !creds.InsecureSkipVerify {
		t.Error("InsecureSkipVerify not carried over")
	}
	if !creds.Authenticated() {
		t.Error("expected authenticated credentials")
	}
}

func TestResolvePrompt(t *testing.T) {
	promptFile := filepath.Join(t.TempDir(), "prompt.txt")
	if err := os.WriteFile(promptFile, []byte("from file"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("flag wins", func(t *testing.T) {
		got, err := ResolvePrompt(
			&Config{Prompt: strPtr("from config")},
			EnvState{Prompt: "from env", PromptSet: true},
			FlagState{PromptSet: true},
			ResolvedConfig{Prompt: "from flag"},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "from flag" {
			t.Errorf("expected flag prompt, got %q", got)
		}
	})

	t.Run("flag file beats env", func(t *testing.T) {
		got, err := ResolvePrompt(
			nil,
			EnvState{Prompt: "from env", PromptSet: true},
			FlagState{PromptFileSet: true},
			ResolvedConfig{PromptFile: promptFile},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "from file" {
			t.Errorf("expected file prompt, got %q", got)
		}
	})

	t.Run("env beats config", func(t *testing.T) {
		got, err := ResolvePrompt(
			&Config{Prompt: strPtr("from config")},
			EnvState{Prompt: "from env", PromptSet: true},
			FlagState{},
			ResolvedConfig{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "from env" {
			t.Errorf("expected env prompt, got %q", got)
		}
	})

	t.Run("config file source", func(t *testing.T) {
		got, err := ResolvePrompt(
			&Config{PromptFile: strPtr(promptFile)},
			EnvState{},
			FlagState{},
			ResolvedConfig{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "from file" {
			t.Errorf("expected file prompt, got %q", got)
		}
	})

	t.Run("nothing set returns empty", func(t *testing.T) {
		got, err := ResolvePrompt(nil, EnvState{}, FlagState{}, ResolvedConfig{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "" {
			t.Errorf("expected empty prompt, got %q", got)
		}
	})

	t.Run("missing prompt file errors", func(t *testing.T) {
		_, err := ResolvePrompt(
			nil,
			EnvState{},
			FlagState{PromptFileSet: true},
			ResolvedConfig{PromptFile: "/nonexistent/prompt.txt"},
		)
		if err == nil {
			t.Fatal("expected error for missing prompt file")
		}
	})
}

// Tests for unknown key warnings

func TestLoadFromPathWithWarnings_UnknownTopLevelKey(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".gra.yaml")

	content := `model: sonnet
unknownkey: value
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := LoadFromPathWithWarnings(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(result.Warnings), result.Warnings)
	}
	if result.Warnings[0] != `unknown key "unknownkey" in .gra.yaml` {
		t.Errorf("unexpected warning: %s", result.Warnings[0])
	}
	// Config should still be parsed
	if result.Config.Model == nil || *result.Config.Model != "sonnet" {
		t.Errorf("expected model=sonnet, got %v", result.Config.Model)
	}
}

func TestLoadFromPathWithWarnings_UnknownKeyWithSuggestion(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".gra.yaml")

	content := `agnt: claude
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := LoadFromPathWithWarnings(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(result.Warnings), result.Warnings)
	}
	expected := `unknown key "agnt" in .gra.yaml (did you mean "agent"?)`
	if result.Warnings[0] != expected {
		t.Errorf("expected warning %q, got %q", expected, result.Warnings[0])
	}
}

func TestLoadFromPathWithWarnings_UnknownGerritKey(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".gra.yaml")

	content := `gerrit:
  base_ur: https://gerrit.example.com
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := LoadFromPathWithWarnings(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(result.Warnings), result.Warnings)
	}
	expected := `unknown key "base_ur" in gerrit section of .gra.yaml (did you mean "base_url"?)`
	if result.Warnings[0] != expected {
		t.Errorf("expected warning %q, got %q", expected, result.Warnings[0])
	}
}

func TestLoadFromPathWithWarnings_MultipleUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".gra.yaml")

	content := `modle: sonnet
tiemout: 10m
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := LoadFromPathWithWarnings(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(result.Warnings), result.Warnings)
	}
}

func TestLoadFromPathWithWarnings_NoWarningsForValidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".gra.yaml")

	content := `gerrit:
  base_url: https://gerrit.example.com
  username: bot
agent: claude
model: sonnet
timeout: 5m
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := LoadFromPathWithWarnings(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %d: %v", len(result.Warnings), result.Warnings)
	}
}

func TestLoadFromPathWithWarnings_SecretKeysPointToEnv(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".gra.yaml")

	content := `gerrit:
  base_url: https://gerrit.example.com
  password: hunter2
  cookie: GerritAccount=abc
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := LoadFromPathWithWarnings(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(result.Warnings), result.Warnings)
	}
	want := map[string]bool{
		`key "password" in gerrit section of .gra.yaml is ignored; set GERRIT_PASSWORD instead`: false,
		`key "cookie" in gerrit section of .gra.yaml is ignored; set GERRIT_COOKIE instead`:     false,
	}
	for _, w := range result.Warnings {
		if _, ok := want[w]; !ok {
			t.Errorf("unexpected warning: %s", w)
			continue
		}
		want[w] = true
	}
	for w, seen := range want {
		if !seen {
			t.Errorf("missing warning: %s", w)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"abc", "abcd", 1},
		{"agent", "agnt", 1},
		{"base_url", "base_ur", 1},
		{"timeout", "tiemout", 2},
		{"totally_different", "abc", 16},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			got := levenshtein(tt.a, tt.b)
			if got != tt.expected {
				t.Errorf("levenshtein(%q, %q) = %d, expected %d", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"gerrit", "agent", "model", "timeout", "prompt", "prompt_file"}

	tests := []struct {
		input    string
		expected string
	}{
		{"agnt", "agent"},
		{"tiemout", "timeout"},
		{"gerit", "gerrit"},
		{"totally_unrelated_name", ""},
		{"model", "model"}, // exact match
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := findSimilar(tt.input, candidates)
			if got != tt.expected {
				t.Errorf("findSimilar(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

// Helper functions
func strPtr(s string) *string { return &s }

func durationPtr(d time.Duration) *Duration {
	dur := Duration(d)
	return &dur
}
