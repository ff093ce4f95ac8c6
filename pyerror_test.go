package uni20

import (
	"errors"
	"strings"
	"testing"
)

func TestNewPythonErrorFromJSON(t *testing.T) {
	data := []byte(`{
		"type": "exception",
		"exception": "ImportError",
		"message": "No module named 'uni20'",
		"args": ["No module named 'uni20'"],
		"traceback": "Traceback (most recent call last):\n  ...\nImportError: No module named 'uni20'\n"
	}`)

	pyErr, err := NewPythonErrorFromJSON(data)
	if err != nil {
		t.Fatalf("NewPythonErrorFromJSON failed: %v", err)
	}
	if pyErr.Exception != "ImportError" {
		t.Errorf("Exception = %q, want ImportError", pyErr.Exception)
	}
	if pyErr.Message != "No module named 'uni20'" {
		t.Errorf("Message = %q", pyErr.Message)
	}
	if len(pyErr.ExceptionArgs) != 1 {
		t.Errorf("ExceptionArgs has %d entries, want 1", len(pyErr.ExceptionArgs))
	}
	if !strings.Contains(pyErr.Traceback, "ImportError") {
		t.Errorf("Traceback missing exception name: %q", pyErr.Traceback)
	}
	if pyErr.Cause != nil {
		t.Error("Cause should be nil")
	}
}

func TestPythonErrorCauseChain(t *testing.T) {
	data := []byte(`{
		"exception": "RuntimeError",
		"message": "buildinfo failed",
		"traceback": "tb-outer",
		"cause": {
			"exception": "OSError",
			"message": "file not found",
			"args": [2, "file not found"],
			"traceback": "tb-inner"
		}
	}`)

	pyErr, err := NewPythonErrorFromJSON(data)
	if err != nil {
		t.Fatalf("NewPythonErrorFromJSON failed: %v", err)
	}
	if pyErr.Cause == nil {
		t.Fatal("expected a cause")
	}
	if pyErr.Cause.Exception != "OSError" {
		t.Errorf("cause Exception = %q, want OSError", pyErr.Cause.Exception)
	}
	if len(pyErr.Cause.ExceptionArgs) != 2 {
		t.Errorf("cause args = %v", pyErr.Cause.ExceptionArgs)
	}

	// errors.As should walk the chain through Unwrap.
	var inner *PythonError
	if !errors.As(pyErr.Unwrap(), &inner) {
		t.Fatal("Unwrap did not yield a *PythonError")
	}
	if inner.Exception != "OSError" {
		t.Errorf("unwrapped Exception = %q", inner.Exception)
	}

	s := pyErr.ToString()
	if !strings.Contains(s, "RuntimeError: buildinfo failed") {
		t.Errorf("ToString missing outer exception: %q", s)
	}
	if !strings.Contains(s, "Caused by: OSError: file not found") {
		t.Errorf("ToString missing cause: %q", s)
	}
}

func TestPythonErrorFromMap(t *testing.T) {
	m := map[string]interface{}{
		"exception": "ValueError",
		"message":   "bad value",
		"traceback": "tb",
		"args":      []interface{}{"bad value"},
		"cause": map[string]interface{}{
			"exception": "KeyError",
			"message":   "'generator'",
			"traceback": "tb2",
		},
	}

	pyErr := newPythonErrorFromMap(m)
	if pyErr.Exception != "ValueError" || pyErr.Message != "bad value" {
		t.Errorf("unexpected error: %v", pyErr)
	}
	if pyErr.Cause == nil || pyErr.Cause.Exception != "KeyError" {
		t.Errorf("cause not parsed: %+v", pyErr.Cause)
	}
	if got := pyErr.Error(); got != "python ValueError: bad value" {
		t.Errorf("Error() = %q", got)
	}
}

func TestPythonErrorFromMapMissingFields(t *testing.T) {
	pyErr := newPythonErrorFromMap(map[string]interface{}{})
	if pyErr.Exception != "" || pyErr.Message != "" || pyErr.Cause != nil {
		t.Errorf("empty map should produce empty error, got %+v", pyErr)
	}
}
