package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	uni20 "github.com/uni20/uni20-go"
)

func strp(s string) *string { return &s }

func sampleBuildInfo() *uni20.BuildInfo {
	return &uni20.BuildInfo{
		Generator:          "Ninja",
		BuildType:          "Release",
		SystemName:         "Linux",
		SystemVersion:      "6.8.0",
		SystemProcessor:    "x86_64",
		CXXCompilerID:      "GNU",
		CXXCompilerVersion: "13.2.0",
		CXXCompilerPath:    "/usr/bin/c++",
		BuildOptions: map[string]uni20.OptionEntry{
			"UNI20_ENABLE_CUDA": {Value: strp("OFF"), Help: "Build with CUDA support"},
		},
		DetectedEnvironment: map[string]uni20.OptionEntry{
			"BLAS_FOUND": {Value: strp("TRUE")},
		},
	}
}

func TestRenderBuildInfo(t *testing.T) {
	rendered := RenderBuildInfo(sampleBuildInfo())

	for _, want := range []string{
		"uni20 build",
		"Ninja",
		"Release",
		"x86_64",
		"Build options",
		"UNI20_ENABLE_CUDA",
		"Build with CUDA support",
		"Detected environment",
		"BLAS_FOUND",
	} {
		assert.Contains(t, rendered, want)
	}
}

func TestRenderBuildInfoExtraKeys(t *testing.T) {
	bi := sampleBuildInfo()
	bi.Extra = map[string]interface{}{"git_commit": "abc1234"}

	rendered := RenderBuildInfo(bi)
	assert.Contains(t, rendered, "Additional keys")
	assert.Contains(t, rendered, "git_commit")
	assert.Contains(t, rendered, "abc1234")
}

func TestRenderBuildInfoEmptyValueShowsHelp(t *testing.T) {
	bi := sampleBuildInfo()
	bi.BuildOptions["UNI20_DOC_ONLY"] = uni20.OptionEntry{Value: strp(""), Help: "documented switch"}

	rendered := RenderBuildInfo(bi)
	assert.Contains(t, rendered, "UNI20_DOC_ONLY")
	assert.Contains(t, rendered, "documented switch")
	assert.Contains(t, rendered, "(unset)")
}

func TestRenderBuildInfoMissingValueKey(t *testing.T) {
	// Rendering tolerates a nonconforming entry; rejecting it is the
	// validator's job.
	bi := sampleBuildInfo()
	bi.BuildOptions["UNI20_NO_VALUE"] = uni20.OptionEntry{Help: "no value key"}

	rendered := RenderBuildInfo(bi)
	assert.Contains(t, rendered, "UNI20_NO_VALUE")
	assert.Contains(t, rendered, "(unset)")
}

func TestRenderBuildInfoSortedKeys(t *testing.T) {
	bi := sampleBuildInfo()
	bi.BuildOptions["AAA_FIRST"] = uni20.OptionEntry{Value: strp("1")}
	bi.BuildOptions["ZZZ_LAST"] = uni20.OptionEntry{Value: strp("2")}

	rendered := RenderBuildInfo(bi)
	assert.Less(t, strings.Index(rendered, "AAA_FIRST"), strings.Index(rendered, "ZZZ_LAST"))
}
