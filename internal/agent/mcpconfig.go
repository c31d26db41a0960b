package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ToolServerName is the server key in the wiring file. The agent CLI
// namespaces tool names under it (mcp__gerrit__<tool>).
const ToolServerName = "gerrit"

// ToolServerSpec describes how the agent process should launch its Gerrit
// tool server: typically this binary itself, re-invoked in serve mode, with
// the credentials passed through the environment.
type ToolServerSpec struct {
	Command string
	Args    []string
	Env     map[string]string
}

// toolServerEntry and toolServerFile mirror the wiring file format the
// agent CLI expects: {"mcpServers": {"<name>": {command, args, env}}}.
type toolServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

type toolServerFile struct {
	MCPServers map[string]toolServerEntry `json:"mcpServers"`
}

// GetWorkDir returns the working directory to use for temp files.
// If workDir is non-empty, returns it. Otherwise returns os.Getwd().
// Returns an error if unable to determine the working directory.
func GetWorkDir(workDir string) (string, error) {
	if workDir != "" {
		return workDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}

// WriteToolServerConfig writes the tool-server wiring file to the working
// directory and returns its absolute path. The file is written 0600 because
// its env block carries credentials.
// The caller is responsible for cleaning up the file (use CleanupTempFile).
func WriteToolServerConfig(workDir string, spec ToolServerSpec) (string, error) {
	wd, err := GetWorkDir(workDir)
	if err != nil {
		return "", err
	}

	cfg := toolServerFile{
		MCPServers: map[string]toolServerEntry{
			ToolServerName: {
				Command: spec.Command,
				Args:    spec.Args,
				Env:     spec.Env,
			},
		},
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode tool server config: %w", err)
	}

	tempPath := filepath.Join(wd, fmt.Sprintf(".gra-mcp-%s.json", uuid.New().String()))
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write tool server config: %w", err)
	}

	absPath, err := filepath.Abs(tempPath)
	if err != nil {
		// Clean up the temp file since we can't return a valid path
		if rmErr := os.Remove(tempPath); rmErr != nil && !os.IsNotExist(rmErr) {
			fmt.Fprintf(os.Stderr, "Warning: failed to clean up temp file %s during error handling: %v\n", tempPath, rmErr)
		}
		return "", fmt.Errorf("failed to get absolute path for temp file: %w", err)
	}

	return absPath, nil
}

// CleanupTempFile removes a temporary file. If removal fails, it logs a
// warning but does not return an error since cleanup failures are non-fatal.
func CleanupTempFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to clean up temp file %s: %v\n", path, err)
	}
}
