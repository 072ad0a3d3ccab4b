package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeTOML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trollbot.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "secret")
	cfg, err := Load("")
	require.NoError(t, err)
	want := Default()
	want.DiscordToken = "secret"
	require.Equal(t, &want, cfg)
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	_, err := Load("")
	require.ErrorIs(t, err, ErrNoToken)

	cfg, err := Read("")
	require.NoError(t, err)
	require.Equal(t, DriverJSON, cfg.Storage.Driver)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeTOML(t, `
discord_token = "from-file"
prefix = "?"
admin_role = "1"
disabled_commands = ["ping"]

[storage]
driver = "sqlite"

[xp]
cooldown = "2m"
leaderboard_size = 5
`)
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("XP_LEADERBOARD_SIZE", "20")
	t.Setenv("MOD_ROLE_ID", "2")
	t.Setenv("STORAGE_SQLITE_PATH", "/var/lib/trollbot/xp.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-file", cfg.DiscordToken, "empty env keeps the file value")
	require.Equal(t, "?", cfg.Prefix)
	require.Equal(t, "1", cfg.AdminRoleID)
	require.Equal(t, "2", cfg.ModRoleID)
	require.Equal(t, DriverSQLite, cfg.Storage.Driver)
	require.Equal(t, "/var/lib/trollbot/xp.db", cfg.Storage.SQLitePath)
	require.Equal(t, 2*time.Minute, cfg.XP.Cooldown)
	require.Equal(t, 20, cfg.XP.LeaderboardSize)
	require.Equal(t, int64(15), cfg.XP.PerMessage)
	require.True(t, cfg.Disabled("PING"))
	require.False(t, cfg.Disabled("leaderboard"))
}

func TestUnknownKeysRejected(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "secret")
	_, err := Load(writeTOML(t, `prefx = "!"`))
	require.ErrorContains(t, err, "prefx")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"driver":  func(c *Config) { c.Storage.Driver = "mongo" },
		"prefix":  func(c *Config) { c.Prefix = " " },
		"size":    func(c *Config) { c.XP.LeaderboardSize = 0 },
		"xp":      func(c *Config) { c.XP.PerMessage = -1 },
		"timeout": func(c *Config) { c.CommandTimeout = -time.Second },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.DiscordToken = "secret"
			require.NoError(t, cfg.Validate())
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
