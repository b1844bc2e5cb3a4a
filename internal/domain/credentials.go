package domain

// PopuliCredentials authenticate calls to the Populi API.
// BaseURL has no trailing slash, e.g. https://yourschool.populiweb.com.
type PopuliCredentials struct {
	BaseURL string
	APIKey  string
}

// ClassroomCredentials authenticate calls to the GitHub Classroom REST API.
type ClassroomCredentials struct {
	APIURL string
	Token  string
}

// Configuration keys read by the credential resolver.
const (
	EnvPopuliBaseURL = "POPULI_BASE_URL"
	EnvPopuliAPIKey  = "POPULI_API_KEY"
	EnvGitHubToken   = "GITHUB_TOKEN"
)

// MissingPopuliCredentials is returned by any Populi-backed operation when either value is empty.
func MissingPopuliCredentials() *ConfigurationError {
	return &ConfigurationError{
		Service: ServicePopuli,
		Keys:    []string{EnvPopuliBaseURL, EnvPopuliAPIKey},
		Message: "Populi MCP requires POPULI_BASE_URL and POPULI_API_KEY environment variables. " +
			"Example: POPULI_BASE_URL=https://yourschool.populiweb.com POPULI_API_KEY=sk_xxx",
	}
}

// MissingClassroomToken is returned by any GitHub Classroom operation when the token is empty.
func MissingClassroomToken() *ConfigurationError {
	return &ConfigurationError{
		Service: ServiceClassroom,
		Keys:    []string{EnvGitHubToken},
		Message: "GitHub Classroom tools require GITHUB_TOKEN environment variable. " +
			"Create a token at https://github.com/settings/tokens with 'admin:org' scope.",
	}
}
