// Package uni20 provides a Go harness for the uni20 Python bindings: it
// locates a Python interpreter, resolves the directory containing the
// compiled uni20 extension module, and talks to the bindings through a
// Python probe subprocess without requiring CGO.
//
// The uni20 native library itself is an external collaborator. This package
// consumes exactly two of its entry points, greet() and buildinfo(), and
// turns the latter into a typed, validated BuildInfo structure.
//
// # Architecture Overview
//
// The harness launches a small embedded probe program (go:embed) in a Python
// subprocess. The probe prepends the resolved bindings directory to sys.path,
// imports uni20, reports readiness on a status pipe, and then serves requests
// over a pair of inherited pipe file descriptors:
//
//  1. Requests and responses are framed with a 4-byte big-endian length
//     prefix followed by the encoded body.
//
//  2. Bodies are MessagePack maps when the interpreter has the msgpack
//     package available, falling back to JSON otherwise. The probe announces
//     the codec in its ready message and the Go side selects the matching
//     Serializer.
//
// The bindings directory is always an explicit parameter resolved by
// ResolveBindings; the harness never mutates a global module search path.
//
// # Environment Discovery
//
//	// Use the interpreter found on PATH
//	env, err := uni20.NewEnvironmentFromSystem()
//
//	// Or a specific interpreter
//	env, err := uni20.NewEnvironmentFromExecutable("/opt/python/bin/python3")
//
// # Probing the Bindings
//
//	bindings, err := uni20.ResolveBindings("", os.Getenv)
//	if errors.Is(err, uni20.ErrBindingsNotConfigured) {
//	    // no bindings directory supplied; skip rather than fail
//	}
//
//	probe, err := env.NewProbe(bindings, nil)
//	defer probe.Close()
//
//	greeting, err := probe.Greet(ctx)          // "Hello from uni20!"
//	info, err := probe.BuildInfo(ctx)          // fresh snapshot per call
//	err = info.Validate()                      // contract check
//
// # The BuildInfo Contract
//
// BuildInfo carries eight required non-empty string fields describing the
// native build (generator, build type, system triple, compiler identity) and
// two non-empty option maps, build_options and detected_environment. Every
// option entry carries a value key and optional help text; the value may be
// empty only when non-empty help accompanies it. Keys beyond the required
// set are preserved in BuildInfo.Extra and tolerated by validation.
//
// # Failure Semantics
//
// An unconfigured bindings directory surfaces as ErrBindingsNotConfigured so
// callers can skip. Import failures and exceptions inside the interpreter
// cross the pipe as *PythonError with the exception type, message, traceback
// and chained cause. Contract violations are reported per offending key as a
// *ValidationError.
package uni20
