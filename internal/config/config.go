// Package config loads bot configuration from an optional YAML file with
// environment variable overrides, so deployments can use either.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Channels maps logical channel kinds to concrete Discord channels. IDs are
// preferred; names are the fallback when an ID is unset.
type Channels struct {
	CitizenshipLogID    string `yaml:"citizenship_log_id"`
	CitizenshipStatusID string `yaml:"citizenship_status_id"`
	ModLogID            string `yaml:"mod_log_id"`
	AnnouncementsID     string `yaml:"announcements_id"`

	CitizenshipLogName    string `yaml:"citizenship_log_name"`
	CitizenshipStatusName string `yaml:"citizenship_status_name"`
	ModLogName            string `yaml:"mod_log_name"`
	AnnouncementsName     string `yaml:"announcements_name"`
}

// FieldLimits carries per-field max lengths for form validation.
type FieldLimits struct {
	DisplayName    int `yaml:"display_name"`
	RobloxUsername int `yaml:"roblox_username"`
	Reason         int `yaml:"reason"`
	CriminalRecord int `yaml:"criminal_record"`
	AdditionalInfo int `yaml:"additional_info"`
}

// Config is the full bot configuration.
type Config struct {
	DiscordToken string `yaml:"-"` // secrets come from the environment only
	GuildID      string `yaml:"guild_id"`

	AdminRoleIDs   []string `yaml:"admin_role_ids"`
	ManagerRoleIDs []string `yaml:"citizenship_manager_role_ids"`
	CitizenRoleID  string   `yaml:"citizen_role_id"`

	Channels    Channels    `yaml:"channels"`
	FieldLimits FieldLimits `yaml:"field_limits"`

	RobloxAPIKey string        `yaml:"-"`
	RobloxBanURL string        `yaml:"roblox_ban_url"`
	DatabaseURL  string        `yaml:"-"`
	RedisURL     string        `yaml:"-"`
	Port         string        `yaml:"port"`
	CallTimeout  time.Duration `yaml:"call_timeout"`
}

func defaults() Config {
	return Config{
		Channels: Channels{
			CitizenshipLogName:    "citizenship-log",
			CitizenshipStatusName: "citizenship-status",
			ModLogName:            "mod-log",
			AnnouncementsName:     "announcements",
		},
		FieldLimits: FieldLimits{
			DisplayName:    100,
			RobloxUsername: 50,
			Reason:         1000,
			CriminalRecord: 500,
			AdditionalInfo: 500,
		},
		Port:        "5000",
		CallTimeout: 10 * time.Second,
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then environment variables on top. Secrets (bot token, API keys,
// DSNs) are never read from the file.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.DiscordToken = os.Getenv("DISCORD_BOT_TOKEN")
	cfg.RobloxAPIKey = os.Getenv("ROBLOX_API_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisURL = os.Getenv("REDIS_URL")

	override(&cfg.GuildID, "DISCORD_GUILD_ID")
	override(&cfg.CitizenRoleID, "CITIZEN_ROLE_ID")
	override(&cfg.Port, "PORT")

	// Legacy single-role env vars append to the configured lists.
	if id := os.Getenv("ADMIN_ROLE_ID"); id != "" && !contains(cfg.AdminRoleIDs, id) {
		cfg.AdminRoleIDs = append(cfg.AdminRoleIDs, id)
	}
	if id := os.Getenv("CITIZENSHIP_MANAGER_ROLE_ID"); id != "" && !contains(cfg.ManagerRoleIDs, id) {
		cfg.ManagerRoleIDs = append(cfg.ManagerRoleIDs, id)
	}

	return cfg, nil
}

// Validate reports the settings the bot cannot start without.
func (c Config) Validate() error {
	var missing []string
	if c.DiscordToken == "" {
		missing = append(missing, "DISCORD_BOT_TOKEN")
	}
	if c.GuildID == "" {
		missing = append(missing, "DISCORD_GUILD_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func override(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
