// cmd/magick/main_test.go
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magick-cards/internal/models"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := `
app:
  name: magick-test
storage:
  driver: sqlite
  sqlite:
    path: ` + filepath.Join(dir, "state.db") + `
logging:
  level: error
  output: stderr
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	root, closeApp := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--config", configPath}, args...))
	err := root.Execute()
	closeApp()
	return out.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	root, _ := newRootCmd()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"daily", "draw", "recommend", "favorite", "settings"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
	assert.Equal(t, "magick", root.Use)
}

func TestCLI_SettingsLifecycle(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := run(t, cfg, "settings", "show")
	require.NoError(t, err)
	var shown models.UserSettings
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, models.MonetizationAffiliate, shown.MonetizationMode)

	out, err = run(t, cfg, "settings", "set", "--mode", "sponsor", "--dark-mode")
	require.NoError(t, err)
	var updated models.UserSettings
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, models.MonetizationSponsor, updated.MonetizationMode)
	assert.True(t, updated.DarkMode)
	require.NotNil(t, updated.Location, "location was backfilled by the first run")
	assert.Equal(t, "Jacksonville, FL", updated.Location.City)

	_, err = run(t, cfg, "settings", "set", "--mode", "referral")
	assert.Error(t, err)

	_, err = run(t, cfg, "settings", "set")
	assert.Error(t, err)
}

func TestCLI_Favorites(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := run(t, cfg, "favorite", "toggle", "datenight-01")
	require.NoError(t, err)
	assert.Contains(t, out, `"favorite": true`)

	out, err = run(t, cfg, "favorite", "list")
	require.NoError(t, err)
	var cards []models.Card
	require.NoError(t, json.Unmarshal([]byte(out), &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "datenight-01", cards[0].ID)

	_, err = run(t, cfg, "favorite", "toggle", "no-such-card")
	assert.Error(t, err)
}

func TestCLI_Recommend(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := run(t, cfg, "recommend", "--card", "datenight-01")
	require.NoError(t, err)
	var recs []models.RecommendedBusiness
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.NotEmpty(t, recs)
	assert.LessOrEqual(t, len(recs), 3)
	assert.Equal(t, "biz-riverside-bistro", recs[0].ID)

	out, err = run(t, cfg, "recommend", "--card", "connection-01")
	require.NoError(t, err)
	recs = nil
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	assert.Empty(t, recs)
}

func TestCLI_DailyAndDraw(t *testing.T) {
	cfg := writeTestConfig(t)

	first, err := run(t, cfg, "daily")
	require.NoError(t, err)
	second, err := run(t, cfg, "daily")
	require.NoError(t, err)
	assert.JSONEq(t, first, second)

	out, err := run(t, cfg, "draw", "--deck", "datenight", "--seed", "3")
	require.NoError(t, err)
	var card models.Card
	require.NoError(t, json.Unmarshal([]byte(out), &card))
	assert.Equal(t, "datenight", card.Deck)

	_, err = run(t, cfg, "draw", "--deck", "nope")
	assert.Error(t, err)
}
