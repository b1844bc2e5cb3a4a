package configs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/i2y/populi-mcp/internal/adapter/outbound/credentials"
	"github.com/i2y/populi-mcp/internal/adapter/outbound/github"
	"github.com/i2y/populi-mcp/internal/adapter/outbound/httpinvoker"
)

// Environment prefixes. Process settings live under POPULI_MCP_, while the
// upstream credentials keep the names operators already use.
const (
	envPrefix       = "populi_mcp"
	populiEnvPrefix = "populi"
	githubEnvPrefix = "github"
)

const remoteConfigTimeout = 30 * time.Second

// DefaultServerName is the MCP server name advertised when none is configured.
const DefaultServerName = "populi-mcp"

// FileConfig defines the structure loaded from the YAML configuration file.
// Secrets are never read from the file.
type FileConfig struct {
	Populi struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"populi"`
	GitHub struct {
		APIURL string `yaml:"api_url"`
	} `yaml:"github"`
	Tools struct {
		Disabled []string `yaml:"disabled"`
	} `yaml:"tools"`
	Server struct {
		Name string `yaml:"name"`
	} `yaml:"server"`
}

// PopuliConfig holds the Populi credentials, loaded with the "POPULI_" prefix.
type PopuliConfig struct {
	BaseURL string `envconfig:"BASE_URL"`
	APIKey  string `envconfig:"API_KEY"`
}

// GitHubConfig holds the GitHub Classroom credentials, loaded with the "GITHUB_" prefix.
type GitHubConfig struct {
	Token  string `envconfig:"TOKEN"`
	APIURL string `envconfig:"API_URL"`
}

// Config holds the final application configuration, merged from the .env file,
// the YAML file and environment variables, in increasing precedence.
// Process fields use the prefix "POPULI_MCP_".
type Config struct {
	ConfigFilePath string `envconfig:"CONFIG_FILE"`
	EnvFilePath    string `envconfig:"ENV_FILE" default:".env"`

	ServerName    string   `envconfig:"SERVER_NAME"`
	DisabledTools []string `envconfig:"DISABLED_TOOLS"`

	ListenAddr               string        `envconfig:"LISTEN_ADDR" default:":8080"`
	AdminAddr                string        `envconfig:"ADMIN_ADDR" default:":8081"`
	HTTPClientTimeout        time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"0s"`
	ShutdownTimeout          time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	OtelExporterOtlpEndpoint string        `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool          `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	LogLevel                 string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFile                  string        `envconfig:"LOG_FILE" default:"/tmp/populi-mcp.log"`

	Populi PopuliConfig `ignored:"true"`
	GitHub GitHubConfig `ignored:"true"`
}

// ParsedLogLevel returns the slog.Level based on the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// CredentialSettings returns the raw upstream settings for the credential resolver.
// Missing values are not an error here.
func (c *Config) CredentialSettings() credentials.Settings {
	return credentials.Settings{
		PopuliBaseURL: c.Populi.BaseURL,
		PopuliAPIKey:  c.Populi.APIKey,
		GitHubAPIURL:  c.GitHub.APIURL,
		GitHubToken:   c.GitHub.Token,
	}
}

// Load reads configuration from fsys: first the .env file (variables already in
// the environment win), then the optional YAML file, then environment variables,
// which override file settings.
func Load(fsys afero.Fs) (*Config, error) {
	// 1. Initial pass, primarily for the file paths.
	var initialCfg Config
	if err := envconfig.Process(envPrefix, &initialCfg); err != nil {
		return nil, fmt.Errorf("failed to process initial environment variables: %w", err)
	}

	// 2. .env file. It may itself point at the YAML file, so re-read the paths.
	if err := loadEnvFile(fsys, initialCfg.EnvFilePath); err != nil {
		return nil, err
	}
	if err := envconfig.Process(envPrefix, &initialCfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	// 3. YAML file, local or github://owner/repo/path[@ref].
	fileCfg := FileConfig{}
	if initialCfg.ConfigFilePath != "" {
		yamlFile, err := readConfigFile(fsys, initialCfg.ConfigFilePath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(yamlFile, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file '%s': %w", initialCfg.ConfigFilePath, err)
		}
	} else {
		slog.Debug("No config file path specified (POPULI_MCP_CONFIG_FILE), using defaults/env vars only.")
	}

	// 4. Start from file values, then let the environment override them.
	finalCfg := initialCfg
	finalCfg.ServerName = fileCfg.Server.Name
	finalCfg.DisabledTools = fileCfg.Tools.Disabled
	finalCfg.Populi.BaseURL = fileCfg.Populi.BaseURL
	finalCfg.GitHub.APIURL = fileCfg.GitHub.APIURL

	if err := envconfig.Process(envPrefix, &finalCfg); err != nil {
		return nil, fmt.Errorf("failed to process overriding environment variables: %w", err)
	}
	if err := envconfig.Process(populiEnvPrefix, &finalCfg.Populi); err != nil {
		return nil, fmt.Errorf("failed to process Populi environment variables: %w", err)
	}
	if err := envconfig.Process(githubEnvPrefix, &finalCfg.GitHub); err != nil {
		return nil, fmt.Errorf("failed to process GitHub environment variables: %w", err)
	}

	if finalCfg.ServerName == "" {
		finalCfg.ServerName = DefaultServerName
	}
	if finalCfg.GitHub.APIURL == "" {
		finalCfg.GitHub.APIURL = credentials.DefaultGitHubAPIURL
	}
	return &finalCfg, nil
}

// readConfigFile reads the YAML file from fsys or, for github:// locations,
// through the repository contents API with the GITHUB_ credentials.
func readConfigFile(fsys afero.Fs, path string) ([]byte, error) {
	if !github.IsContentURL(path) {
		yamlFile, err := afero.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		slog.Info("Loaded configuration from file.", "path", path)
		return yamlFile, nil
	}

	ref, err := github.ParseContentURL(path)
	if err != nil {
		return nil, err
	}
	var gh GitHubConfig
	if err := envconfig.Process(githubEnvPrefix, &gh); err != nil {
		return nil, fmt.Errorf("failed to process GitHub environment variables: %w", err)
	}

	logger := slog.Default()
	resolver := credentials.New(credentials.Settings{GitHubAPIURL: gh.APIURL, GitHubToken: gh.Token}, logger)
	client := github.NewClassroomClient(httpinvoker.New(&http.Client{Timeout: remoteConfigTimeout}, logger), resolver, logger)

	ctx, cancel := context.WithTimeout(context.Background(), remoteConfigTimeout)
	defer cancel()
	yamlFile, err := client.FetchContent(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from GitHub '%s': %w", path, err)
	}
	slog.Info("Loaded configuration from GitHub.", "url", path)
	return yamlFile, nil
}

// loadEnvFile exports the variables of a dotenv file without overwriting ones
// already set. A missing file is not an error.
func loadEnvFile(fsys afero.Fs, path string) error {
	if path == "" {
		return nil
	}
	f, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open env file '%s': %w", path, err)
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse env file '%s': %w", path, err)
	}
	for key, value := range vars {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to set %s from env file: %w", key, err)
		}
	}
	slog.Info("Loaded environment from file.", "path", path, "count", len(vars))
	return nil
}
