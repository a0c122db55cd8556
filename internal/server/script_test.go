package server

import (
	"os/exec"
	"path/filepath"
	"testing"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunner(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()

	tests := []struct {
		name     string
		command  string
		script   string
		exitCode int
		stdout   string
		stderr   string
	}{
		{"success", "sh", "echo hello", 0, "hello\n", ""},
		{"non-zero exit", "sh", "echo partial; exit 3", 3, "partial\n", ""},
		{"stderr captured separately", "sh", "echo out; echo err >&2; exit 1", 1, "out\n", "err\n"},
		{"command with arguments", "sh -e", "false; echo unreachable", 1, "", ""},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := filepath.Join(dir, "script"+string(rune('a'+i))+".sh")
			writeTestFile(t, script, tt.script+"\n")

			result, err := NewExecRunner(tt.command).RunScript(script)
			if err != nil {
				t.Fatalf("RunScript() error = %v", err)
			}
			if result.ExitCode != tt.exitCode {
				t.Errorf("ExitCode = %d, want %d", result.ExitCode, tt.exitCode)
			}
			if string(result.Stdout) != tt.stdout {
				t.Errorf("Stdout = %q, want %q", result.Stdout, tt.stdout)
			}
			if string(result.Stderr) != tt.stderr {
				t.Errorf("Stderr = %q, want %q", result.Stderr, tt.stderr)
			}
		})
	}
}

func TestExecRunnerSpawnFailure(t *testing.T) {
	script := filepath.Join(t.TempDir(), "index.php")
	writeTestFile(t, script, "<?php")

	for _, command := range []string{"", "   ", "hows-no-such-interpreter"} {
		if _, err := NewExecRunner(command).RunScript(script); err == nil {
			t.Errorf("RunScript() with command %q: expected error", command)
		}
	}
}

func TestExecRunnerThroughSite(t *testing.T) {
	requireShell(t)
	site, _ := newTestSite(t, nil)
	site.Runner = NewExecRunner("sh")
	site.ScriptExtensions = []string{"sh"}
	site.Config.AutoExtensions = []string{"sh", "html"}
	writeTestFile(t, filepath.Join(site.WebRoot, "index.sh"), "echo '<p>dynamic</p>'\n")
	writeTestFile(t, filepath.Join(site.WebRoot, "fail.sh"), "echo partial; exit 2\n")

	resp := get(site, "/")
	if resp.StatusCode != 200 || string(resp.Body) != "<p>dynamic</p>\n" {
		t.Errorf("GET / = %d %q, want 200 rendered script", resp.StatusCode, resp.Body)
	}
	if resp.ContentType() != "text/html" {
		t.Errorf("Content-Type = %q, want text/html", resp.ContentType())
	}

	resp = get(site, "/fail.sh")
	if resp.StatusCode != 500 {
		t.Errorf("GET /fail.sh = %d, want 500", resp.StatusCode)
	}
}
