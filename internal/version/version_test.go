package version_test

import (
	"strings"
	"testing"

	"github.com/D4ryB3rry/YTM-Remote-Server/internal/version"
)

func TestVersionInfo(t *testing.T) {
	if version.Version == "" {
		t.Error("Version should not be empty")
	}
	if version.Name != "YTM Remote Server" {
		t.Errorf("Expected name 'YTM Remote Server', got '%s'", version.Name)
	}
}

func TestGetInfo(t *testing.T) {
	info := version.GetInfo()

	if info.Name != version.Name {
		t.Errorf("Expected name '%s', got '%s'", version.Name, info.Name)
	}
	if info.Version != version.Version {
		t.Errorf("Expected version '%s', got '%s'", version.Version, info.Version)
	}
}

func TestString(t *testing.T) {
	str := version.GetInfo().String()

	if !strings.Contains(str, version.Name) {
		t.Errorf("String() should contain the name, got %q", str)
	}
	if !strings.Contains(str, version.Version) {
		t.Errorf("String() should contain the version, got %q", str)
	}
}
