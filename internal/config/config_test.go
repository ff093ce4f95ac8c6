package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, v, err := Load(LoaderOptions{})
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, DefaultProbeTimeout, cfg.Timeout)
	assert.False(t, cfg.Verbose)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("UNI20_BINDINGS_DIR", dir)
	t.Setenv("UNI20_TIMEOUT", "5s")
	t.Setenv("UNI20_VERBOSE", "true")

	cfg, _, err := Load(LoaderOptions{})
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.BindingsDir)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "bindings_dir: " + dir + "\ntimeout: 10s\nverbose: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, _, err := Load(LoaderOptions{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.BindingsDir)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.True(t, cfg.Verbose)
}

func TestLoadMissingExplicitConfigFile(t *testing.T) {
	_, _, err := Load(LoaderOptions{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	python := filepath.Join(dir, "python3")
	require.NoError(t, os.WriteFile(python, []byte("#!/bin/sh\n"), 0755))

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid",
			cfg:  Config{BindingsDir: dir, Python: python, Timeout: time.Second},
		},
		{
			name: "empty bindings dir allowed",
			cfg:  Config{Timeout: time.Second},
		},
		{
			name:    "missing bindings dir",
			cfg:     Config{BindingsDir: filepath.Join(dir, "nope"), Timeout: time.Second},
			wantErr: "directory does not exist",
		},
		{
			name:    "missing python",
			cfg:     Config{Python: filepath.Join(dir, "nope"), Timeout: time.Second},
			wantErr: "file does not exist",
		},
		{
			name:    "python is a directory",
			cfg:     Config{Python: dir, Timeout: time.Second},
			wantErr: "file does not exist",
		},
		{
			name:    "zero timeout",
			cfg:     Config{},
			wantErr: "must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
