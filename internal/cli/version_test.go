package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewVersionCmd(t *testing.T) {
	cmd := NewVersionCmd()
	if cmd == nil {
		t.Fatal("NewVersionCmd returned nil")
	}

	if cmd.Use != "version" {
		t.Errorf("Expected Use to be 'version', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "version") {
		t.Error("Short description should mention version")
	}

	if cmd.Run == nil {
		t.Error("Expected Run to be set")
	}
}

func TestVersionCmd_Output(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		expected string
	}{
		{name: "default version", env: "", expected: "Loadplan CLI " + DefaultVersion},
		{name: "environment version", env: "v2.5.0-test", expected: "Loadplan CLI v2.5.0-test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOADPLAN_VERSION", tt.env)

			var out bytes.Buffer
			cmd := NewVersionCmd()
			cmd.SetOut(&out)
			cmd.SetArgs([]string{})
			if err := cmd.Execute(); err != nil {
				t.Fatalf("Command execution failed: %v", err)
			}
			if got := strings.TrimSpace(out.String()); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestDefaultVersionFormat(t *testing.T) {
	if len(DefaultVersion) < 2 || DefaultVersion[0] != 'v' {
		t.Errorf("DefaultVersion should start with 'v', got: %s", DefaultVersion)
	}
}
