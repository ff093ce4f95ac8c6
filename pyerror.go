package uni20

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PythonError represents an exception raised inside the probe interpreter.
// It captures the exception type, message, arguments, full traceback, and
// the chained cause (Python's __cause__/__context__), so a failed import of
// the uni20 module or a failure inside buildinfo() arrives in Go with its
// complete diagnostic context.
type PythonError struct {
	// Exception is the exception class name (e.g., "ImportError").
	Exception string `json:"exception"`

	// Message is the exception message.
	Message string `json:"message"`

	// ExceptionArgs are the positional arguments the exception was
	// constructed with (e.g., errno and strerror for OSError).
	ExceptionArgs []interface{} `json:"args,omitempty"`

	// Traceback is the full Python traceback string.
	Traceback string `json:"traceback"`

	// Cause is the chained exception, if any.
	Cause *PythonError `json:"cause,omitempty"`
}

// Error implements the error interface.
func (e *PythonError) Error() string {
	return fmt.Sprintf("python %s: %s", e.Exception, e.Message)
}

// ToString formats the exception as a readable string with type, message,
// traceback, and the full cause chain.
func (e *PythonError) ToString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n%s", e.Exception, e.Message, e.Traceback)
	for cause := e.Cause; cause != nil; cause = cause.Cause {
		fmt.Fprintf(&sb, "\nCaused by: %s: %s\n%s", cause.Exception, cause.Message, cause.Traceback)
	}
	return sb.String()
}

// Unwrap returns the chained cause so errors.Is/As can walk the chain.
func (e *PythonError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// NewPythonErrorFromJSON parses a PythonError from JSON bytes as sent by the
// probe on its status pipe.
func NewPythonErrorFromJSON(data []byte) (*PythonError, error) {
	var pyErr PythonError
	if err := json.Unmarshal(data, &pyErr); err != nil {
		return nil, err
	}
	return &pyErr, nil
}

// newPythonErrorFromMap converts the exception mapping embedded in a probe
// response into a PythonError. Missing fields are left empty.
func newPythonErrorFromMap(m map[string]interface{}) *PythonError {
	pyErr := &PythonError{}
	if s, ok := m["exception"].(string); ok {
		pyErr.Exception = s
	}
	if s, ok := m["message"].(string); ok {
		pyErr.Message = s
	}
	if s, ok := m["traceback"].(string); ok {
		pyErr.Traceback = s
	}
	if args, ok := m["args"].([]interface{}); ok {
		pyErr.ExceptionArgs = args
	}
	if cause, ok := m["cause"].(map[string]interface{}); ok {
		pyErr.Cause = newPythonErrorFromMap(cause)
	}
	return pyErr
}
