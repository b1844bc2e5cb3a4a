package credentials_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i2y/populi-mcp/internal/adapter/outbound/credentials"
	"github.com/i2y/populi-mcp/internal/domain"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolver_Populi(t *testing.T) {
	tests := []struct {
		name     string
		settings credentials.Settings
		want     domain.PopuliCredentials
		wantErr  bool
	}{
		{
			name:     "Success - trailing slash trimmed",
			settings: credentials.Settings{PopuliBaseURL: "https://school.populiweb.com/", PopuliAPIKey: "sk_1"},
			want:     domain.PopuliCredentials{BaseURL: "https://school.populiweb.com", APIKey: "sk_1"},
		},
		{
			name:     "Failure - missing key",
			settings: credentials.Settings{PopuliBaseURL: "https://school.populiweb.com"},
			wantErr:  true,
		},
		{
			name:     "Failure - missing base URL",
			settings: credentials.Settings{PopuliAPIKey: "sk_1"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := credentials.New(tt.settings, newLogger())
			got, err := r.Populi()
			if tt.wantErr {
				var cfgErr *domain.ConfigurationError
				require.ErrorAs(t, err, &cfgErr)
				assert.Contains(t, err.Error(), "POPULI_BASE_URL")
				assert.Contains(t, err.Error(), "POPULI_API_KEY")
				assert.Contains(t, err.Error(), "Example:")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_ServicesAreIndependent(t *testing.T) {
	r := credentials.New(credentials.Settings{GitHubToken: "ghp_x"}, newLogger())

	_, err := r.Populi()
	require.Error(t, err)

	creds, err := r.Classroom()
	require.NoError(t, err)
	assert.Equal(t, credentials.DefaultGitHubAPIURL, creds.APIURL)
	assert.Equal(t, "ghp_x", creds.Token)

	// Repeated calls keep failing the same way.
	_, err = r.Populi()
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, domain.ServicePopuli, cfgErr.Service)
}

func TestResolver_MissingGitHubToken(t *testing.T) {
	r := credentials.New(credentials.Settings{PopuliBaseURL: "https://x", PopuliAPIKey: "k"}, newLogger())
	_, err := r.Classroom()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
}
