package uni20

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// PythonEnvironment represents a Python installation capable of hosting the
// uni20 probe. It records the interpreter path, its version, and the paths
// queried from the interpreter itself.
//
// An environment is discovered, never created: the harness consumes whatever
// interpreter the machine (or the caller) provides, as long as it satisfies
// MinimumPythonVersion.
type PythonEnvironment struct {
	// EnvironmentName is the identifier for this environment (e.g., "system").
	EnvironmentName string

	// PythonPath is the full path to the Python executable.
	PythonPath string

	// PythonVersion is the detected interpreter version (e.g., 3.12.1).
	PythonVersion Version

	// EnvBinPath is the directory containing the interpreter executable.
	EnvBinPath string

	// SitePackagesPath is the interpreter's first site-packages directory.
	// May be empty if the interpreter could not report one.
	SitePackagesPath string
}

// Name returns the environment identifier.
func (env *PythonEnvironment) Name() string {
	return env.EnvironmentName
}

// NewEnvironmentFromExecutable creates a PythonEnvironment from an existing
// Python executable. This is used when the caller pins a specific interpreter
// (e.g., the one the bindings were built against).
//
// The function queries the executable to determine version information and
// the site-packages path, and verifies the interpreter meets
// MinimumPythonVersion.
func NewEnvironmentFromExecutable(pythonPath string) (*PythonEnvironment, error) {
	if err := checkExecutable(pythonPath); err != nil {
		return nil, fmt.Errorf("python executable not usable: %v", err)
	}

	env := &PythonEnvironment{
		EnvironmentName: "system",
		PythonPath:      pythonPath,
		EnvBinPath:      filepath.Dir(pythonPath),
	}

	// Get Python version
	versionCmd := exec.Command(pythonPath, "--version")
	versionOutput, err := versionCmd.Output()
	if err != nil {
		return nil, fmt.Errorf("error getting Python version: %v", err)
	}

	versionStr := strings.TrimSpace(string(versionOutput))
	env.PythonVersion, err = ParsePythonVersion(versionStr)
	if err != nil {
		return nil, fmt.Errorf("error parsing Python version: %v", err)
	}

	if env.PythonVersion.Compare(MinimumPythonVersion) < 0 {
		return nil, fmt.Errorf("python %s is older than the minimum supported version %s",
			env.PythonVersion.String(), MinimumPythonVersion.String())
	}

	// Get site-packages path. Not fatal if the interpreter cannot report it;
	// the probe injects the bindings directory explicitly anyway.
	sitePackagesCmd := exec.Command(pythonPath, "-c", "import site; print(site.getsitepackages()[0])")
	sitePackagesOutput, err := sitePackagesCmd.Output()
	if err == nil {
		env.SitePackagesPath = strings.TrimSpace(string(sitePackagesOutput))
	}

	return env, nil
}

// NewEnvironmentFromSystem creates a PythonEnvironment using the system
// Python installation.
//
// On Unix systems, it searches for "python3" then "python" using
// exec.LookPath. On Windows, it first tries "py.exe" (the Python launcher),
// then searches for "python" while filtering out the Microsoft Store
// placeholder executables.
//
// Returns an error if no Python installation is found.
func NewEnvironmentFromSystem() (*PythonEnvironment, error) {
	pythonPath := ""
	if runtime.GOOS == "windows" {
		// Windows ships placeholder python executables under
		// AppData\Local\Microsoft\WindowsApps which must be excluded.
		wcmd := exec.Command("where", "py")
		wout, err := wcmd.Output()
		if err == nil {
			pythonPath = firstLine(string(wout))
		}
		if pythonPath == "" {
			wcmd = exec.Command("where", "python")
			wout, err = wcmd.Output()
			if err != nil {
				return nil, fmt.Errorf("error running 'where python': %v", err)
			}
			for _, p := range strings.Split(string(wout), "\n") {
				p = strings.TrimSpace(p)
				if p != "" && !strings.Contains(p, "Microsoft\\WindowsApps") {
					pythonPath = p
					break
				}
			}
		}
		if pythonPath == "" {
			return nil, fmt.Errorf("python not found")
		}
	} else {
		var err error
		// look for explicit python3 first
		pythonPath, err = exec.LookPath("python3")
		if err != nil {
			pythonPath, err = exec.LookPath("python")
			if err != nil {
				return nil, fmt.Errorf("python not found: %v", err)
			}
		}
	}

	return NewEnvironmentFromExecutable(pythonPath)
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
