package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esglens/esglens/internal/config"
)

// writeOverlay writes YAML content to a temp file and returns its path.
func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestShallowMergeYAML_SingleKeyOverride(t *testing.T) {
	t.Setenv("ESGLENS_HOME", t.TempDir())
	target := config.New()
	overlay := writeOverlay(t, `
server:
  addr: ":8080"
  max_upload_mb: 5
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, ":8080", target.Server.Addr)
	assert.Equal(t, 5, target.Server.MaxUploadMB)
	// The section is replaced, not merged field by field.
	assert.Zero(t, target.Server.ReadTimeoutSeconds)
	assert.Empty(t, target.Server.CORSOrigins)

	// Untouched sections keep defaults.
	assert.Equal(t, config.DefaultModel, target.Insights.Model)
	assert.True(t, target.Cache.Enabled)
}

func TestShallowMergeYAML_PartialPlaceholdersKeepDefaults(t *testing.T) {
	t.Setenv("ESGLENS_HOME", t.TempDir())
	target := config.New()
	overlay := writeOverlay(t, `
placeholders:
  supplier_diversity: 7
  business_ethics: Medium
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	p := target.Placeholders.ToPlaceholders()
	assert.InDelta(t, 7.0, p.SupplierDiversity, 1e-9)
	assert.Equal(t, "Medium", p.BusinessEthics)
	assert.InDelta(t, 85.0, p.CustomerSatisfaction, 1e-9)
	assert.Equal(t, "Compliant", p.DataPrivacy)
}

func TestShallowMergeYAML_UnknownKeysIgnored(t *testing.T) {
	t.Setenv("ESGLENS_HOME", t.TempDir())
	target := config.New()
	overlay := writeOverlay(t, `
future_section:
  anything: true
logging:
  level: debug
  format: json
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, "debug", target.Logging.Level)
	assert.Equal(t, "json", target.Logging.Format)
}

func TestShallowMergeYAML_Errors(t *testing.T) {
	t.Run("nil target", func(t *testing.T) {
		err := config.ShallowMergeYAML(nil, "whatever.yaml")
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		err := config.ShallowMergeYAML(config.New(), filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading overlay file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		overlay := writeOverlay(t, "server: [unclosed")
		err := config.ShallowMergeYAML(config.New(), overlay)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing overlay YAML")
	})

	t.Run("wrong section shape", func(t *testing.T) {
		overlay := writeOverlay(t, "cache:\n  ttl_seconds: [1, 2]\n")
		err := config.ShallowMergeYAML(config.New(), overlay)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"cache"`)
	})
}
