package agent

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetWorkDir(t *testing.T) {
	tests := []struct {
		name    string
		workDir string
		wantErr bool
	}{
		{
			name:    "non-empty workDir is returned as-is",
			workDir: "/tmp/test",
			wantErr: false,
		},
		{
			name:    "empty workDir returns os.Getwd()",
			workDir: "",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetWorkDir(tt.workDir)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetWorkDir() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.workDir != "" && got != tt.workDir {
				t.Errorf("GetWorkDir() = %v, want %v", got, tt.workDir)
			}
			if tt.workDir == "" && got == "" {
				t.Error("GetWorkDir() returned empty string for empty input")
			}
		})
	}
}

func TestWriteToolServerConfig(t *testing.T) {
	tmpDir := t.TempDir()
	spec := ToolServerSpec{
		Command: "/usr/local/bin/gra",
		Args:    []string{"serve"},
		Env: map[string]string{
			"GERRIT_BASE_URL": "https://gerrit.example.com",
			"GERRIT_USERNAME": "review-bot",
			"GERRIT_PASSWORD": "hunter2",
		},
	}

	absPath, err := WriteToolServerConfig(tmpDir, spec)
	if err != nil {
		t.Fatalf("WriteToolServerConfig() error = %v", err)
	}

	// Verify file exists and path is absolute
	if !filepath.IsAbs(absPath) {
		t.Errorf("WriteToolServerConfig() path = %s, want absolute path", absPath)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		t.Fatalf("WriteToolServerConfig() file not created: %v", err)
	}

	// The env block carries credentials; the file must not be group or
	// world readable.
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("wiring file mode = %o, want 0600", perm)
	}

	// Verify file has correct naming pattern
	if !strings.HasPrefix(filepath.Base(absPath), ".gra-mcp-") {
		t.Errorf("WriteToolServerConfig() filename = %s, want pattern .gra-mcp-*", filepath.Base(absPath))
	}
	if !strings.HasSuffix(absPath, ".json") {
		t.Errorf("WriteToolServerConfig() filename = %s, want .json suffix", absPath)
	}

	// Verify the wiring shape round-trips
	content, err := os.ReadFile(absPath)
	if err != nil {
		t.Fatalf("Failed to read wiring file: %v", err)
	}
	var decoded struct {
		MCPServers map[string]struct {
			Command string            `json:"command"`
			Args    []string          `json:"args"`
			Env     map[string]string `json:"env"`
		} `json:"mcpServers"`
	}
	if err := json.Unmarshal(content, &decoded); err != nil {
		t.Fatalf("wiring file is not valid JSON: %v", err)
	}
	server, ok := decoded.MCPServers[ToolServerName]
	if !ok {
		t.Fatalf("wiring file missing %q server entry: %s", ToolServerName, content)
	}
	if server.Command != spec.Command {
		t.Errorf("command = %q, want %q", server.Command, spec.Command)
	}
	if len(server.Args) != 1 || server.Args[0] != "serve" {
		t.Errorf("args = %v, want [serve]", server.Args)
	}
	if server.Env["GERRIT_BASE_URL"] != "https://gerrit.example.com" {
		t.Errorf("env not carried through: %v", server.Env)
	}

	// Cleanup
	CleanupTempFile(absPath)
	if _, err := os.Stat(absPath); !os.IsNotExist(err) {
		t.Errorf("CleanupTempFile() failed to remove file")
	}
}

func TestWriteToolServerConfig_UniqueNames(t *testing.T) {
	tmpDir := t.TempDir()
	spec := ToolServerSpec{Command: "gra", Args: []string{"serve"}}

	first, err := WriteToolServerConfig(tmpDir, spec)
	if err != nil {
		t.Fatalf("WriteToolServerConfig() error = %v", err)
	}
	second, err := WriteToolServerConfig(tmpDir, spec)
	if err != nil {
		t.Fatalf("WriteToolServerConfig() error = %v", err)
	}
	defer CleanupTempFile(first)
	defer CleanupTempFile(second)

	if first == second {
		t.Errorf("consecutive wiring files share a path: %s", first)
	}
}

func TestCleanupTempFile(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "removes existing file",
			path: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "wiring.json")
				if err := os.WriteFile(p, []byte("{}"), 0600); err != nil {
					t.Fatal(err)
				}
				return p
			},
		},
		{
			name: "missing file is a no-op",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "already-gone.json")
			},
		},
		{
			name: "empty path is a no-op",
			path: func(t *testing.T) string { return "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.path(t)
			CleanupTempFile(p)
			if p == "" {
				return
			}
			if _, err := os.Stat(p); !os.IsNotExist(err) {
				t.Errorf("file %s still exists", p)
			}
		})
	}
}
