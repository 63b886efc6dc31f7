package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	SwitchAddr    string // switch management address
	SwitchScheme  string // "https" or "http" (default: "https")
	SwitchPort    int    // NX-API port (default: 8443)
	Username      string
	Password      string
	Insecure      bool // skip TLS certificate verification
	Timeout       time.Duration
	Transport     string // registered transport name (default: "nxapi")
	ListenAddr    string
	APITokenHash  string // bcrypt hash of the REST bearer token
	MCPToken      string // plaintext bearer token for the MCP endpoint
	DataDir       string
	AuditEnabled  bool
	MonitorSpec   string // cron spec for the fabric monitor
	MonitorVsans  []int  // VSANs the monitor polls
	LogLevel      string
	LogFormat     string // "console" or "json"
	SNMPCommunity string
	ConfigFile    string // Path to .env file (if loaded)
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Command-line parameters (passed as opts)
// 2. .env file (if exists)
// 3. Environment variables
// 4. Default values
//
// If opts is provided, it overrides all other sources.
// Otherwise, .env file overrides environment variables.
func Load(opts *Config) *Config {
	cfg := &Config{
		SwitchScheme:  "https",
		SwitchPort:    8443,
		Timeout:       30 * time.Second,
		Transport:     "nxapi",
		ListenAddr:    ":8080",
		DataDir:       "./data",
		AuditEnabled:  true,
		MonitorSpec:   "@every 5m",
		LogLevel:      "info",
		LogFormat:     "console",
		SNMPCommunity: "public",
	}

	// First, try to load from .env file
	envFile := ".env"
	if _, err := os.Stat(envFile); err == nil {
		if err := loadFromEnvFile(cfg, envFile); err != nil {
			fmt.Printf("Warning: Failed to load .env file: %v\n", err)
		} else {
			cfg.ConfigFile = envFile
		}
	}

	// Then load environment variables (only if not already set by .env)
	cfg.SwitchAddr = coalesce(cfg.SwitchAddr, os.Getenv("SANCTL_SWITCH_ADDR"), "")
	cfg.SwitchScheme = coalesce(cfg.SwitchScheme, os.Getenv("SANCTL_SWITCH_SCHEME"), "https")
	cfg.Username = coalesce(cfg.Username, os.Getenv("SANCTL_USERNAME"), "")
	cfg.Password = coalesce(cfg.Password, os.Getenv("SANCTL_PASSWORD"), "")
	cfg.Transport = coalesce(cfg.Transport, os.Getenv("SANCTL_TRANSPORT"), "nxapi")
	cfg.ListenAddr = coalesce(cfg.ListenAddr, os.Getenv("SANCTL_LISTEN_ADDR"), ":8080")
	cfg.APITokenHash = coalesce(cfg.APITokenHash, os.Getenv("SANCTL_API_TOKEN_HASH"), "")
	cfg.MCPToken = coalesce(cfg.MCPToken, os.Getenv("SANCTL_MCP_TOKEN"), "")
	cfg.DataDir = coalesce(cfg.DataDir, os.Getenv("SANCTL_DATA_DIR"), "./data")
	cfg.MonitorSpec = coalesce(cfg.MonitorSpec, os.Getenv("SANCTL_MONITOR_SPEC"), "@every 5m")
	cfg.LogLevel = coalesce(cfg.LogLevel, os.Getenv("SANCTL_LOG_LEVEL"), "info")
	cfg.LogFormat = coalesce(cfg.LogFormat, os.Getenv("SANCTL_LOG_FORMAT"), "console")
	cfg.SNMPCommunity = coalesce(cfg.SNMPCommunity, os.Getenv("SANCTL_SNMP_COMMUNITY"), "public")
	if v := os.Getenv("SANCTL_SWITCH_PORT"); v != "" {
		setInt(&cfg.SwitchPort, v)
	}
	if v := os.Getenv("SANCTL_INSECURE"); v != "" {
		setBool(&cfg.Insecure, v)
	}
	if v := os.Getenv("SANCTL_AUDIT_ENABLED"); v != "" {
		setBool(&cfg.AuditEnabled, v)
	}
	if v := os.Getenv("SANCTL_TIMEOUT"); v != "" {
		setDuration(&cfg.Timeout, v)
	}
	if v := os.Getenv("SANCTL_MONITOR_VSANS"); v != "" {
		cfg.MonitorVsans = ParseVsanList(v)
	}

	// Finally, apply CLI opts if provided (highest priority)
	if opts != nil {
		if opts.SwitchAddr != "" {
			cfg.SwitchAddr = opts.SwitchAddr
		}
		if opts.SwitchScheme != "" {
			cfg.SwitchScheme = opts.SwitchScheme
		}
		if opts.SwitchPort != 0 {
			cfg.SwitchPort = opts.SwitchPort
		}
		if opts.Username != "" {
			cfg.Username = opts.Username
		}
		if opts.Password != "" {
			cfg.Password = opts.Password
		}
		if opts.Insecure {
			cfg.Insecure = true
		}
		if opts.Timeout != 0 {
			cfg.Timeout = opts.Timeout
		}
		if opts.Transport != "" {
			cfg.Transport = opts.Transport
		}
		if opts.ListenAddr != "" {
			cfg.ListenAddr = opts.ListenAddr
		}
		if opts.APITokenHash != "" {
			cfg.APITokenHash = opts.APITokenHash
		}
		if opts.MCPToken != "" {
			cfg.MCPToken = opts.MCPToken
		}
		if opts.DataDir != "" {
			cfg.DataDir = opts.DataDir
		}
		if opts.MonitorSpec != "" {
			cfg.MonitorSpec = opts.MonitorSpec
		}
		if len(opts.MonitorVsans) > 0 {
			cfg.MonitorVsans = opts.MonitorVsans
		}
		if opts.LogLevel != "" {
			cfg.LogLevel = opts.LogLevel
		}
		if opts.LogFormat != "" {
			cfg.LogFormat = opts.LogFormat
		}
		if opts.SNMPCommunity != "" {
			cfg.SNMPCommunity = opts.SNMPCommunity
		}
	}

	// Validate scheme
	if cfg.SwitchScheme != "http" && cfg.SwitchScheme != "https" {
		cfg.SwitchScheme = "https"
	}

	// Validate log format
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		cfg.LogFormat = "console"
	}

	return cfg
}

// loadFromEnvFile loads configuration from a .env file
func loadFromEnvFile(cfg *Config, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE or KEY="VALUE"
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), "\"")

		// Map .env keys to config fields
		switch key {
		case "SANCTL_SWITCH_ADDR":
			cfg.SwitchAddr = value
		case "SANCTL_SWITCH_SCHEME":
			cfg.SwitchScheme = value
		case "SANCTL_SWITCH_PORT":
			setInt(&cfg.SwitchPort, value)
		case "SANCTL_USERNAME":
			cfg.Username = value
		case "SANCTL_PASSWORD":
			cfg.Password = value
		case "SANCTL_INSECURE":
			setBool(&cfg.Insecure, value)
		case "SANCTL_TIMEOUT":
			setDuration(&cfg.Timeout, value)
		case "SANCTL_TRANSPORT":
			cfg.Transport = value
		case "SANCTL_LISTEN_ADDR":
			cfg.ListenAddr = value
		case "SANCTL_API_TOKEN_HASH":
			cfg.APITokenHash = value
		case "SANCTL_MCP_TOKEN":
			cfg.MCPToken = value
		case "SANCTL_DATA_DIR":
			cfg.DataDir = value
		case "SANCTL_AUDIT_ENABLED":
			setBool(&cfg.AuditEnabled, value)
		case "SANCTL_MONITOR_SPEC":
			cfg.MonitorSpec = value
		case "SANCTL_MONITOR_VSANS":
			cfg.MonitorVsans = ParseVsanList(value)
		case "SANCTL_LOG_LEVEL":
			cfg.LogLevel = value
		case "SANCTL_LOG_FORMAT":
			cfg.LogFormat = value
		case "SANCTL_SNMP_COMMUNITY":
			cfg.SNMPCommunity = value
		}
	}

	return scanner.Err()
}

// IsAPIAuthEnabled checks if REST authentication is configured
func (c *Config) IsAPIAuthEnabled() bool {
	return c.APITokenHash != ""
}

// IsMCPAuthEnabled checks if MCP bearer token authentication is configured
func (c *Config) IsMCPAuthEnabled() bool {
	return c.MCPToken != ""
}

// String returns a string representation of the config source
func (c *Config) String() string {
	if c.ConfigFile != "" {
		return fmt.Sprintf(".env file (%s)", c.ConfigFile)
	}
	return "environment variables"
}

// coalesce returns the first non-empty string value
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func setInt(dst *int, value string) {
	if n, err := strconv.Atoi(value); err == nil {
		*dst = n
	}
}

func setBool(dst *bool, value string) {
	if b, err := strconv.ParseBool(value); err == nil {
		*dst = b
	}
}

func setDuration(dst *time.Duration, value string) {
	if d, err := time.ParseDuration(value); err == nil {
		*dst = d
	}
}

// ParseVsanList parses a comma-separated VSAN id list like "1,20,300".
func ParseVsanList(value string) []int {
	var vsans []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			vsans = append(vsans, n)
		}
	}
	return vsans
}
