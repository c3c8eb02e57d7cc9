package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/callrank/internal/core/strategy"
	"github.com/agenthands/callrank/internal/core/weights"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[ranking]
strategy = "SubtreeWithPenalty"
weight_profile = 2
penalty = 7

[memgraph]
uri = "bolt://memgraph:7687"

[logging]
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	kind, err := cfg.Ranking.Kind()
	require.NoError(t, err)
	assert.Equal(t, strategy.SubtreeWithPenalty, kind)

	table, err := cfg.Ranking.Table()
	require.NoError(t, err)
	assert.Equal(t, 3.0, table.UpdateCallee)
	assert.Equal(t, 1.0, table.Common)
	assert.Equal(t, 7.0, table.ResponsePenalty)

	assert.Equal(t, "bolt://memgraph:7687", cfg.Memgraph.URI)
	assert.Equal(t, "json", cfg.Logging.Format)
	// untouched sections keep their defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Summary.Limit)
}

func TestLoad_ExplicitWeights(t *testing.T) {
	path := writeConfig(t, `
[ranking.weights]
remove = 4
add_new_service = 9
response_penalty = 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	table, err := cfg.Ranking.Table()
	require.NoError(t, err)
	assert.Equal(t, 4.0, table.Remove)
	assert.Equal(t, 9.0, table.AddNewService)
	assert.Equal(t, 2.0, table.ResponsePenalty)
	assert.Zero(t, table.Common)
	// entries not in the file come from the default profile
	assert.Equal(t, 2.0, table.UpdateCaller)
	assert.Equal(t, 1.0, table.AddExistingEndpoint)
}

func TestLoad_PartialWeightsKeepProfile(t *testing.T) {
	path := writeConfig(t, `
[ranking]
weight_profile = 3

[ranking.weights]
common = 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	table, err := cfg.Ranking.Table()
	require.NoError(t, err)

	want, err := weights.Profile(3)
	require.NoError(t, err)
	want.Common = 4
	assert.Equal(t, want, table)
	assert.Equal(t, float64(weights.DefaultPenalty), table.ResponsePenalty)
	assert.Equal(t, 5.0, table.AddNewService)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeConfig(t, `[ranking]
strategy = "Random"`))
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)

	_, err = Load(writeConfig(t, `[ranking]
weight_profile = 9`))
	assert.ErrorIs(t, err, weights.ErrUnknownProfile)

	_, err = Load(writeConfig(t, `[ranking`))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	kind, err := cfg.Ranking.Kind()
	require.NoError(t, err)
	assert.Equal(t, strategy.Default, kind)

	table, err := cfg.Ranking.Table()
	require.NoError(t, err)
	assert.Equal(t, weights.Default(), table)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "claude")
	t.Setenv("LLM_API_KEY", "secret")
	t.Setenv("MEMGRAPH_URI", "bolt://other:7687")
	t.Setenv("RANKING_STRATEGY", "Subtree")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LLM_MODEL", "")

	cfg := Default()
	cfg.LLM.Model = "from-file"
	cfg.ApplyEnv()

	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Equal(t, "from-file", cfg.LLM.Model)
	assert.Equal(t, "bolt://other:7687", cfg.Memgraph.URI)
	assert.Equal(t, "Subtree", cfg.Ranking.Strategy)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestSampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, cfg.Summary.Ranking, "{{ranking}}")

	table, err := cfg.Ranking.Table()
	require.NoError(t, err)
	assert.Equal(t, weights.Default(), table)
}
