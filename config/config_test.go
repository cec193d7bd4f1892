package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "A", cfg.Annotate.Namespace)
	assert.Equal(t, "goslim_generic", cfg.Annotate.SlimTag)
	assert.Equal(t, "listUP.xml", cfg.Annotate.ProteinFile)
	assert.Equal(t, "xlsx", cfg.Annotate.Format)
	assert.False(t, cfg.Annotate.Relaxed)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Ontology.Path)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			modify: func(c *Config) {},
		},
		{
			name:    "missing ontology path",
			modify:  func(c *Config) { c.Ontology.Path = "" },
			wantErr: "ontology.path is required",
		},
		{
			name:    "unknown namespace",
			modify:  func(c *Config) { c.Annotate.Namespace = "X" },
			wantErr: "namespace",
		},
		{
			name:    "unknown format",
			modify:  func(c *Config) { c.Annotate.Format = "ods" },
			wantErr: "annotate.format",
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Log.Level = "chatty" },
			wantErr: "log.level",
		},
		{
			name:    "negative workers",
			modify:  func(c *Config) { c.Annotate.Workers = -1 },
			wantErr: "annotate.workers",
		},
		{
			name:    "empty slim tag",
			modify:  func(c *Config) { c.Annotate.SlimTag = "" },
			wantErr: "annotate.slim_tag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Ontology.Path = "go.obo"
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goslim.yaml")
	content := `
ontology:
  path: /data/go.obo
  slim_path: /data/goslim_generic.obo
  verbose: true
annotate:
  namespace: B
  relaxed: true
  format: tsv
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "/data/go.obo", cfg.Ontology.Path)
	assert.Equal(t, "/data/goslim_generic.obo", cfg.Ontology.SlimPath)
	assert.True(t, cfg.Ontology.Verbose)
	assert.Equal(t, "B", cfg.Annotate.Namespace)
	assert.True(t, cfg.Annotate.Relaxed)
	assert.Equal(t, "tsv", cfg.Annotate.Format)
	assert.Equal(t, "goslim_generic", cfg.Annotate.SlimTag, "unset keys keep defaults")
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goslim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("annotate:\n  format: tsv\n"), 0o644))
	t.Setenv("GOSLIM_ANNOTATE_FORMAT", "json")
	t.Setenv("GOSLIM_ONTOLOGY_PATH", "/env/go.obo")

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Annotate.Format)
	assert.Equal(t, "/env/go.obo", cfg.Ontology.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
