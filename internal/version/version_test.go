package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestGet(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()

	Version, GitCommit = "  ", " abc123 "
	info := Get()
	if info.Version != "dev" || info.GitCommit != "abc123" {
		t.Fatalf("Get() = %+v", info)
	}

	Version = "1.2.3"
	if got := Get().Version; got != "1.2.3" {
		t.Fatalf("Version = %q", got)
	}
}

func TestColored(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	tests := []struct {
		in, want string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3+build.7", "1.2.3+build.7"},
		{"dev", "dev"},
		{"1.2", "1.2"},
	}
	for _, tt := range tests {
		if got := Colored(tt.in); got != tt.want {
			t.Errorf("Colored(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	color.NoColor = false
	if got := Colored("0.1.0"); got == "0.1.0" {
		t.Errorf("Colored must add escapes when colour is enabled")
	}
}
