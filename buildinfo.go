package uni20

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// OptionEntry is the metadata record attached to a single build option or
// detected environment entry. Every record carries a value key; the value may
// be empty only when non-empty help text accompanies it.
type OptionEntry struct {
	// Value is the recorded option value. Nil means the bindings omitted the
	// value key entirely, which violates the contract; a pointer keeps the
	// missing key distinguishable from an empty value.
	Value *string `json:"value" mapstructure:"value"`

	// Help is optional descriptive text for the option.
	Help string `json:"help,omitempty" mapstructure:"help"`
}

// BuildInfo is the structured metadata snapshot describing how the uni20
// native module was built. It is produced fresh by every buildinfo() call
// and is immutable from the harness's perspective.
//
// The field set below is the required contract; any additional keys the
// bindings report are preserved in Extra and tolerated by Validate.
type BuildInfo struct {
	// Generator is the CMake generator used for the build (e.g., "Ninja").
	Generator string `json:"generator" mapstructure:"generator" validate:"required"`

	// BuildType is the CMake build type (e.g., "Release", "Debug").
	BuildType string `json:"build_type" mapstructure:"build_type" validate:"required"`

	// SystemName is the target operating system (e.g., "Linux").
	SystemName string `json:"system_name" mapstructure:"system_name" validate:"required"`

	// SystemVersion is the target OS version string.
	SystemVersion string `json:"system_version" mapstructure:"system_version" validate:"required"`

	// SystemProcessor is the target processor (e.g., "x86_64").
	SystemProcessor string `json:"system_processor" mapstructure:"system_processor" validate:"required"`

	// CXXCompilerID identifies the C++ compiler (e.g., "GNU", "Clang").
	CXXCompilerID string `json:"cxx_compiler_id" mapstructure:"cxx_compiler_id" validate:"required"`

	// CXXCompilerVersion is the C++ compiler version.
	CXXCompilerVersion string `json:"cxx_compiler_version" mapstructure:"cxx_compiler_version" validate:"required"`

	// CXXCompilerPath is the full path to the C++ compiler.
	CXXCompilerPath string `json:"cxx_compiler_path" mapstructure:"cxx_compiler_path" validate:"required"`

	// BuildOptions maps compile-time switch names to their metadata records.
	BuildOptions map[string]OptionEntry `json:"build_options" mapstructure:"build_options" validate:"required,min=1,dive"`

	// DetectedEnvironment maps configure-time detection results
	// (found libraries, feature probes) to their metadata records.
	DetectedEnvironment map[string]OptionEntry `json:"detected_environment" mapstructure:"detected_environment" validate:"required,min=1,dive"`

	// Extra holds keys beyond the required contract, preserved verbatim.
	Extra map[string]interface{} `json:"-" mapstructure:",remain"`

	// raw is the snapshot exactly as the bindings delivered it.
	raw map[string]interface{}
}

// Raw returns the snapshot exactly as delivered by the bindings, including
// keys beyond the required contract. The map must not be mutated.
func (bi *BuildInfo) Raw() map[string]interface{} {
	return bi.raw
}

// ValidationError reports BuildInfo contract violations. Each violation
// identifies the offending key or field and the rule it broke.
type ValidationError struct {
	// Violations lists one human-readable message per violated rule.
	Violations []string
}

// Error returns all violations joined on "; ".
func (e *ValidationError) Error() string {
	return fmt.Sprintf("buildinfo contract violated: %s", strings.Join(e.Violations, "; "))
}

// DecodeBuildInfo converts the generic mapping returned by the bindings'
// buildinfo() entry point into a typed BuildInfo. Unknown keys are collected
// into Extra; a required key of the wrong type is a decode error naming the
// key.
//
// Decoding does not validate the contract; call Validate on the result.
func DecodeBuildInfo(raw map[string]interface{}) (*BuildInfo, error) {
	var info BuildInfo
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &info,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("error creating buildinfo decoder: %v", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("buildinfo has unexpected shape: %w", err)
	}
	info.raw = raw
	return &info, nil
}

// buildInfoValidator validates BuildInfo structs. Field names in violation
// messages use the wire names from the mapstructure tags.
var buildInfoValidator = newBuildInfoValidator()

func newBuildInfoValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// An option entry must carry the value key, and the value may be empty
	// only when help text accompanies it.
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		entry := sl.Current().Interface().(OptionEntry)
		switch {
		case entry.Value == nil:
			sl.ReportError(entry.Value, "value", "Value", "value_present", "")
		case *entry.Value == "" && entry.Help == "":
			sl.ReportError(entry.Value, "value", "Value", "value_or_help", "")
		}
	}, OptionEntry{})

	return v
}

// Validate checks the BuildInfo contract:
//
//   - all eight required string fields are present and non-empty;
//   - build_options and detected_environment are non-empty mappings;
//   - every entry in either mapping carries a value key, and the value is
//     non-empty unless non-empty help text accompanies it.
//
// Keys beyond the required set are tolerated. On failure the returned error
// is a *ValidationError listing every violated key.
func (bi *BuildInfo) Validate() error {
	err := buildInfoValidator.Struct(bi)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("error validating buildinfo: %v", err)
	}

	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Violations = append(ve.Violations, describeViolation(fe))
	}
	return ve
}

// describeViolation turns a validator field error into a message naming the
// offending key the way it appears on the wire.
func describeViolation(fe validator.FieldError) string {
	// Strip the leading struct name: "BuildInfo.build_options[X].value"
	// becomes "build_options[X].value".
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: missing or empty", field)
	case "min":
		return fmt.Sprintf("%s: must not be empty", field)
	case "value_present":
		return fmt.Sprintf("%s: entry is missing the required value key", field)
	case "value_or_help":
		return fmt.Sprintf("%s: entry needs a non-empty value or help text", field)
	default:
		return fmt.Sprintf("%s: failed %s", field, fe.Tag())
	}
}

// LoadBuildInfoFile reads a JSON snapshot previously written by
// WriteSnapshotFile (or captured by other means) and decodes it. This allows
// contract validation without a live interpreter.
func LoadBuildInfoFile(path string) (*BuildInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading buildinfo snapshot: %w", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing buildinfo snapshot: %v", err)
	}
	return DecodeBuildInfo(raw)
}

// WriteSnapshotFile writes the raw snapshot to path as indented JSON.
// The snapshot round-trips through LoadBuildInfoFile.
func (bi *BuildInfo) WriteSnapshotFile(path string) error {
	data, err := json.MarshalIndent(bi.raw, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling buildinfo snapshot: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing buildinfo snapshot: %v", err)
	}
	return nil
}
