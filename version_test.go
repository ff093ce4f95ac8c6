package uni20

import (
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Version
		wantErr bool
	}{
		{"full version", "3.12.1", Version{3, 12, 1}, false},
		{"major.minor", "3.12", Version{3, 12, -1}, false},
		{"major only", "3", Version{3, -1, -1}, false},
		{"trailing text", "3.12.1+local", Version{3, 12, 1}, false},
		{"empty", "", Version{}, true},
		{"garbage", "abc", Version{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVersion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseVersion(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePythonVersion(t *testing.T) {
	got, err := ParsePythonVersion("Python 3.12.1")
	if err != nil {
		t.Fatalf("ParsePythonVersion failed: %v", err)
	}
	if got != (Version{3, 12, 1}) {
		t.Errorf("got %v, want {3 12 1}", got)
	}

	if _, err := ParsePythonVersion("3.12.1"); err == nil {
		t.Error("expected error for output missing the Python prefix")
	}
	if _, err := ParsePythonVersion("Python"); err == nil {
		t.Error("expected error for output missing the version")
	}
}

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		a, b Version
		want int
	}{
		{Version{3, 12, 1}, Version{3, 12, 1}, 0},
		{Version{3, 12, 1}, Version{3, 12, 0}, 1},
		{Version{3, 8, -1}, Version{3, 12, -1}, -1},
		{Version{3, 8, -1}, Version{2, 7, 18}, 1},
		{Version{3, 8, 0}, Version{3, 8, -1}, 1},
	}

	for _, tt := range tests {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("(%v).Compare(%v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestVersionString(t *testing.T) {
	tests := []struct {
		v    Version
		want string
	}{
		{Version{3, 12, 1}, "3.12.1"},
		{Version{3, 12, -1}, "3.12"},
		{Version{3, -1, -1}, "3"},
	}

	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("(%v).String() = %q, want %q", tt.v, got, tt.want)
		}
	}

	v := Version{3, 12, 1}
	if got := v.MinorString(); got != "3.12" {
		t.Errorf("MinorString() = %q, want %q", got, "3.12")
	}
}

func TestMinimumPythonVersion(t *testing.T) {
	old := Version{3, 7, 9}
	if old.Compare(MinimumPythonVersion) >= 0 {
		t.Errorf("3.7.9 should be below the minimum %s", MinimumPythonVersion.String())
	}
	supported := Version{3, 8, 0}
	if supported.Compare(MinimumPythonVersion) < 0 {
		t.Errorf("3.8.0 should satisfy the minimum %s", MinimumPythonVersion.String())
	}
}
