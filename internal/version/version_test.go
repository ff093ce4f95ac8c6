package version

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" {
		t.Error("Version should have a default")
	}
	if info.GoVersion == "" {
		t.Error("GoVersion should be populated")
	}
}

func TestString(t *testing.T) {
	s := Get().String()
	for _, want := range []string{"uni20 harness", "Commit:", "Built:", "Go:"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q: %s", want, s)
		}
	}
}
