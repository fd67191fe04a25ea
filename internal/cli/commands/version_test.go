package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		date    string
		wantOut []string
	}{
		{
			name:    "default version",
			version: "0.1.0",
			commit:  "unknown",
			date:    "unknown",
			wantOut: []string{"LeapGrid v0.1.0"},
		},
		{
			name:    "release build",
			version: "1.2.3",
			commit:  "abc1234",
			date:    "2026-08-01",
			wantOut: []string{"LeapGrid v1.2.3", "abc1234", "2026-08-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewVersionCommand(tt.version, tt.commit, tt.date)
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)

			if err := cmd.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}

			output := buf.String()
			for _, want := range tt.wantOut {
				if !strings.Contains(output, want) {
					t.Errorf("output should contain %q, got: %s", want, output)
				}
			}
		})
	}
}

func TestVersionCommandHidesUnknownBuildInfo(t *testing.T) {
	cmd := NewVersionCommand("0.1.0", "unknown", "unknown")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if strings.Contains(buf.String(), "unknown") {
		t.Errorf("output should not mention unknown build metadata, got: %s", buf.String())
	}
}
