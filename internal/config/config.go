// Package config loads and validates the adapter configuration from
// environment variables and an optional YAML file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"jarvismcp/internal/domain"
)

const (
	DefaultHost                    = "localhost"
	DefaultPort                    = 8011
	DefaultTools                   = "logs,debug,health"
	DefaultDiscoveryNetwork        = NetworkContainer
	DefaultDiscoveryRefreshSeconds = 300
	DefaultDiscoveryTimeoutSeconds = 5
	DefaultBackendTimeoutSeconds   = 30
	DefaultPostgresPort            = 5432
)

// Discovery network styles. NetworkHost rewrites discovered container
// hostnames to localhost for host-network deployments.
const (
	NetworkContainer = "container"
	NetworkHost      = "host"
)

type Postgres struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

func (p Postgres) DSN(database string) string {
	if database == "" {
		database = p.Database
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:   "/" + database,
	}
	return u.String()
}

type Config struct {
	Host string
	Port int

	// EnabledGroups preserves the order given in JARVIS_MCP_TOOLS.
	EnabledGroups []string

	DiscoveryURL     string
	DiscoveryNetwork string
	DiscoveryRefresh time.Duration
	DiscoveryTimeout time.Duration

	BackendTimeout time.Duration

	// ServiceOverrides holds per-backend explicit URLs (JARVIS_<NAME>_URL).
	ServiceOverrides map[string]string

	AppID  string
	AppKey string

	// Root is the directory scanned for jarvis-*/docker-compose files.
	Root string

	Postgres Postgres
}

// Load reads configuration. path may be empty; when set it must name a
// readable YAML file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("JARVIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindCompatEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, domain.E(domain.CodeConfiguration, "config.load", fmt.Sprintf("read config file %s", path), err)
		}
	}

	cfg := &Config{
		Host:             v.GetString("mcp.host"),
		Port:             v.GetInt("mcp.port"),
		EnabledGroups:    splitGroups(v.GetString("mcp.tools")),
		DiscoveryURL:     strings.TrimSuffix(v.GetString("discovery.url"), "/"),
		DiscoveryNetwork: v.GetString("discovery.network"),
		DiscoveryRefresh: time.Duration(v.GetInt("discovery.refresh_seconds")) * time.Second,
		DiscoveryTimeout: time.Duration(v.GetInt("discovery.timeout_seconds")) * time.Second,
		BackendTimeout:   time.Duration(v.GetInt("backend.timeout_seconds")) * time.Second,
		ServiceOverrides: make(map[string]string, len(domain.KnownServices())),
		AppID:            v.GetString("auth.app_id"),
		AppKey:           v.GetString("auth.app_key"),
		Root:             v.GetString("root"),
		Postgres: Postgres{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetInt("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Database: v.GetString("postgres.db"),
		},
	}

	for _, service := range domain.KnownServices() {
		if override := v.GetString(serviceKey(service)); override != "" {
			cfg.ServiceOverrides[service] = strings.TrimSuffix(override, "/")
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mcp.host", DefaultHost)
	v.SetDefault("mcp.port", DefaultPort)
	v.SetDefault("mcp.tools", DefaultTools)
	v.SetDefault("discovery.network", DefaultDiscoveryNetwork)
	v.SetDefault("discovery.refresh_seconds", DefaultDiscoveryRefreshSeconds)
	v.SetDefault("discovery.timeout_seconds", DefaultDiscoveryTimeoutSeconds)
	v.SetDefault("backend.timeout_seconds", DefaultBackendTimeoutSeconds)
	v.SetDefault("root", defaultRoot())
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", DefaultPostgresPort)
	v.SetDefault("postgres.user", "jarvis")
	v.SetDefault("postgres.db", "jarvis")
}

// bindCompatEnv keeps the env var names the rest of the fleet already uses.
func bindCompatEnv(v *viper.Viper) {
	_ = v.BindEnv("discovery.url", "JARVIS_DISCOVERY_URL", "JARVIS_CONFIG_URL")
	_ = v.BindEnv("auth.app_id", "JARVIS_APP_ID")
	_ = v.BindEnv("auth.app_key", "JARVIS_APP_KEY")
	for _, service := range domain.KnownServices() {
		_ = v.BindEnv(serviceKey(service), serviceEnvVar(service))
	}
}

func serviceKey(service string) string {
	return "services." + strings.TrimPrefix(service, "jarvis-")
}

// serviceEnvVar maps jarvis-command-center to JARVIS_COMMAND_CENTER_URL.
func serviceEnvVar(service string) string {
	return strings.ToUpper(strings.ReplaceAll(service, "-", "_")) + "_URL"
}

func splitGroups(raw string) []string {
	seen := make(map[string]struct{})
	var groups []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		groups = append(groups, name)
	}
	return groups
}

func defaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/opt/jarvis"
	}
	return home + "/jarvis"
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return domain.Errorf(domain.CodeConfiguration, "config.validate", "invalid port %d", c.Port)
	}
	if len(c.EnabledGroups) == 0 {
		return domain.Errorf(domain.CodeConfiguration, "config.validate", "no tool groups enabled")
	}
	if c.DiscoveryNetwork != NetworkContainer && c.DiscoveryNetwork != NetworkHost {
		return domain.Errorf(domain.CodeConfiguration, "config.validate",
			"discovery.network must be %q or %q, got %q", NetworkContainer, NetworkHost, c.DiscoveryNetwork)
	}
	if c.DiscoveryURL != "" {
		if _, err := url.Parse(c.DiscoveryURL); err != nil {
			return domain.E(domain.CodeConfiguration, "config.validate", "invalid discovery URL", err)
		}
	}
	if c.DiscoveryTimeout <= 0 || c.DiscoveryRefresh <= 0 || c.BackendTimeout <= 0 {
		return domain.Errorf(domain.CodeConfiguration, "config.validate", "timeouts must be positive")
	}
	return nil
}

// AuthHeaders returns the credential headers for authenticated backends,
// or an empty map when no credentials are configured.
func (c *Config) AuthHeaders() map[string]string {
	if c.AppID == "" || c.AppKey == "" {
		return map[string]string{}
	}
	return map[string]string{
		"X-Jarvis-App-Id":  c.AppID,
		"X-Jarvis-App-Key": c.AppKey,
	}
}

// Addr is the bind address for the transport layer.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
