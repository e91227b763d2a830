package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/williamhatcher/harmonyAuth/internal/discord"
)

type Config struct {
	AppPort string `yaml:"app_port"`

	RedisURL string `yaml:"redis_url"`

	APIBaseURL     string   `yaml:"api_base_url"`
	RequiredScopes []string `yaml:"required_scopes"`
	RetrieveGuilds bool     `yaml:"retrieve_guilds"`

	UseHeader  bool   `yaml:"use_header"`
	UseCookie  bool   `yaml:"use_cookie"`
	CookieName string `yaml:"cookie_name"`

	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	VerifyClientID bool   `yaml:"verify_client_id"`
}

func defaults() Config {
	return Config{
		AppPort:        "8080",
		RedisURL:       "redis://localhost:6379",
		APIBaseURL:     discord.DefaultBaseURL,
		RequiredScopes: []string{"identify", "guilds"},
		RetrieveGuilds: true,
		UseHeader:      true,
		UseCookie:      false,
		CookieName:     "token",
		VerifyClientID: true,
	}
}

// Load builds the configuration from defaults, an optional YAML file
// named by CONFIG_PATH, and environment variables; later sources
// override earlier ones.
func Load() (Config, error) {

	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil

}

func applyEnv(cfg *Config) {
	setString(&cfg.AppPort, "APP_PORT")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.APIBaseURL, "DISCORD_API_BASE_URL")
	setString(&cfg.CookieName, "COOKIE_NAME")
	setString(&cfg.ClientID, "DISCORD_CLIENT_ID")
	setString(&cfg.ClientSecret, "DISCORD_CLIENT_SECRET")

	setBool(&cfg.RetrieveGuilds, "RETRIEVE_GUILDS")
	setBool(&cfg.UseHeader, "USE_HEADER")
	setBool(&cfg.UseCookie, "USE_COOKIE")
	setBool(&cfg.VerifyClientID, "VERIFY_CLIENT_ID")

	if v := os.Getenv("REQUIRED_SCOPES"); v != "" {
		scopes := []string{}
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				scopes = append(scopes, s)
			}
		}
		cfg.RequiredScopes = scopes
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// Validate rejects configurations that cannot authenticate anything.
func (c Config) Validate() error {
	if !c.UseHeader && !c.UseCookie {
		return errors.New("config: use_header and use_cookie are both false, one of them needs to be true")
	}
	if len(c.RequiredScopes) == 0 {
		return errors.New("config: required_scopes must not be empty")
	}
	return nil
}
