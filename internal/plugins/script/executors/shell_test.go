package executors

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rocketship-ai/loadplan/internal/plugins/script/runtime"
)

func newShellContext() *runtime.Context {
	return runtime.NewContext(uuid.New(), "users", 0, runtime.ModeEmbedded, nil)
}

func TestShellExecutor_Language(t *testing.T) {
	executor := NewShellExecutor()
	if executor.Language() != "shell" {
		t.Errorf("Expected language 'shell', got '%s'", executor.Language())
	}
}

func TestShellExecutor_ValidateScript(t *testing.T) {
	executor := NewShellExecutor()

	tests := []struct {
		name    string
		script  string
		wantErr bool
	}{
		{
			name:    "valid script",
			script:  "echo 'hello world'",
			wantErr: false,
		},
		{
			name:    "empty script",
			script:  "",
			wantErr: true,
		},
		{
			name:    "whitespace only script",
			script:  "   \n\t  ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := executor.ValidateScript(tt.script)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateScript() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShellExecutor_Execute_BasicCommands(t *testing.T) {
	executor := NewShellExecutor()
	ctx := context.Background()

	tests := []struct {
		name             string
		script           string
		expectedExitCode string
		checkStdout      func(string) bool
		checkStderr      func(string) bool
		shouldFail       bool
	}{
		{
			name:             "simple echo",
			script:           "echo 'hello world'",
			expectedExitCode: "0",
			checkStdout:      func(s string) bool { return strings.Contains(s, "hello world") },
			checkStderr:      func(s string) bool { return s == "" },
		},
		{
			name:             "command that fails",
			script:           "exit 42",
			expectedExitCode: "42",
			checkStdout:      func(s string) bool { return s == "" },
			shouldFail:       true,
		},
		{
			name:             "command with stderr",
			script:           "echo 'error message' >&2",
			expectedExitCode: "0",
			checkStdout:      func(s string) bool { return s == "" },
			checkStderr:      func(s string) bool { return strings.Contains(s, "error message") },
		},
		{
			name:             "multiline script",
			script:           "echo 'line 1'\necho 'line 2'",
			expectedExitCode: "0",
			checkStdout: func(s string) bool {
				return strings.Contains(s, "line 1") && strings.Contains(s, "line 2")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := newShellContext()

			err := executor.Execute(ctx, tt.script, rc, runtime.Bindings{})

			if tt.shouldFail && err == nil {
				t.Error("Expected execution to fail, but it succeeded")
				return
			}
			if !tt.shouldFail && err != nil {
				t.Errorf("Expected execution to succeed, but it failed: %v", err)
				return
			}

			if exitCode := rc.Variables.Get("exit_code"); exitCode != tt.expectedExitCode {
				t.Errorf("Expected exit code %s, got %s", tt.expectedExitCode, exitCode)
			}
			if tt.checkStdout != nil && !tt.checkStdout(rc.Variables.Get("stdout")) {
				t.Errorf("Stdout check failed. Stdout: %s", rc.Variables.Get("stdout"))
			}
			if tt.checkStderr != nil && !tt.checkStderr(rc.Variables.Get("stderr")) {
				t.Errorf("Stderr check failed. Stderr: %s", rc.Variables.Get("stderr"))
			}
			if rc.Variables.Get("duration") == "" {
				t.Error("Duration not saved")
			}
		})
	}
}

func TestShellExecutor_Execute_VariableSubstitution(t *testing.T) {
	executor := NewShellExecutor()
	rc := newShellContext()
	rc.Variables.Put("user", "alice")
	rc.Variables.PutObject("count", 42)

	script := `
		echo "User: ${user}"
		echo "Count: ${count}"
		echo "Unknown: ${missing}"
	`

	if err := executor.Execute(context.Background(), script, rc, runtime.Bindings{}); err != nil {
		t.Fatalf("Script execution failed: %v", err)
	}

	stdout := rc.Variables.Get("stdout")
	for _, expected := range []string{"User: alice", "Count: 42", "Unknown: "} {
		if !strings.Contains(stdout, expected) {
			t.Errorf("Expected stdout to contain '%s', but got: %s", expected, stdout)
		}
	}
}

func TestShellExecutor_Execute_EnvironmentVariables(t *testing.T) {
	executor := NewShellExecutor()
	rc := newShellContext()
	rc.Variables.Put("base.url", "http://localhost:8080")

	script := `
		echo "Base: $LOADPLAN_VAR_BASE_URL"
		echo "Label: $LOADPLAN_LABEL"
	`

	err := executor.Execute(context.Background(), script, rc, runtime.Bindings{"Label": "checkout"})
	if err != nil {
		t.Fatalf("Script execution failed: %v", err)
	}

	stdout := rc.Variables.Get("stdout")
	for _, expected := range []string{"Base: http://localhost:8080", "Label: checkout"} {
		if !strings.Contains(stdout, expected) {
			t.Errorf("Expected stdout to contain '%s', but got: %s", expected, stdout)
		}
	}
}

func TestShellExecutor_Execute_NilContext(t *testing.T) {
	executor := NewShellExecutor()
	if err := executor.Execute(context.Background(), "true", nil, nil); err != nil {
		t.Errorf("Expected execution without a context to succeed, got: %v", err)
	}
}
