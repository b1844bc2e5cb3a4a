package credentials

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/i2y/populi-mcp/internal/domain"
)

// DefaultGitHubAPIURL is the GitHub REST API root used when none is configured.
const DefaultGitHubAPIURL = "https://api.github.com"

// Settings carries the raw configuration values the resolver validates.
// Empty values are allowed here; they fail only the operations that need them.
type Settings struct {
	PopuliBaseURL string
	PopuliAPIKey  string
	GitHubAPIURL  string
	GitHubToken   string
}

// Resolver hands out per-service credentials. Each service is resolved on its
// first use, so operations for one service keep working while the other
// service is unconfigured.
type Resolver struct {
	populi    func() (domain.PopuliCredentials, error)
	classroom func() (domain.ClassroomCredentials, error)
}

// New creates a Resolver over immutable settings.
func New(s Settings, logger *slog.Logger) *Resolver {
	log := logger.With("component", "credential_resolver")
	return &Resolver{
		populi: sync.OnceValues(func() (domain.PopuliCredentials, error) {
			baseURL := strings.TrimRight(strings.TrimSpace(s.PopuliBaseURL), "/")
			apiKey := strings.TrimSpace(s.PopuliAPIKey)
			if baseURL == "" || apiKey == "" {
				log.Warn("Populi credentials missing", slog.Bool("base_url_set", baseURL != ""), slog.Bool("api_key_set", apiKey != ""))
				return domain.PopuliCredentials{}, domain.MissingPopuliCredentials()
			}
			log.Debug("Populi credentials resolved", slog.String("base_url", baseURL))
			return domain.PopuliCredentials{BaseURL: baseURL, APIKey: apiKey}, nil
		}),
		classroom: sync.OnceValues(func() (domain.ClassroomCredentials, error) {
			token := strings.TrimSpace(s.GitHubToken)
			if token == "" {
				log.Warn("GitHub token missing")
				return domain.ClassroomCredentials{}, domain.MissingClassroomToken()
			}
			apiURL := strings.TrimRight(strings.TrimSpace(s.GitHubAPIURL), "/")
			if apiURL == "" {
				apiURL = DefaultGitHubAPIURL
			}
			log.Debug("GitHub credentials resolved", slog.String("api_url", apiURL))
			return domain.ClassroomCredentials{APIURL: apiURL, Token: token}, nil
		}),
	}
}

// Populi returns the Populi credentials or a *domain.ConfigurationError.
func (r *Resolver) Populi() (domain.PopuliCredentials, error) {
	return r.populi()
}

// Classroom returns the GitHub Classroom credentials or a *domain.ConfigurationError.
func (r *Resolver) Classroom() (domain.ClassroomCredentials, error) {
	return r.classroom()
}
