package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, map[string]string{"OAUTH_TOKEN": "token"})
	require.NoError(t, err)

	assert.Equal(t, "[::]:9742", cfg.Addr)
	assert.Equal(t, "token", cfg.Token)
	assert.Equal(t, 30*time.Second, cfg.CacheWindow())
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.APITimeout())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Precedence(t *testing.T) {
	file := writeFile(t, "config.json", `{
		"bind": "127.0.0.1:1000",
		"oauth_token": "file-token",
		"cache_invalidation_seconds": 5,
		"log_level": "debug"
	}`)

	tests := []struct {
		name      string
		args      []string
		environ   map[string]string
		wantAddr  string
		wantToken string
		wantCache int
	}{
		{
			name:      "file only",
			args:      []string{"-config", file},
			wantAddr:  "127.0.0.1:1000",
			wantToken: "file-token",
			wantCache: 5,
		},
		{
			name:      "flags override file",
			args:      []string{"-config", file, "-a", "127.0.0.1:2000", "-c", "60"},
			wantAddr:  "127.0.0.1:2000",
			wantToken: "file-token",
			wantCache: 60,
		},
		{
			name:      "env overrides flags",
			args:      []string{"-config", file, "-a", "127.0.0.1:2000", "-t", "flag-token"},
			environ:   map[string]string{"BIND": "127.0.0.1:3000", "OAUTH_TOKEN": "env-token"},
			wantAddr:  "127.0.0.1:3000",
			wantToken: "env-token",
			wantCache: 5,
		},
		{
			name:      "config path from env",
			environ:   map[string]string{"CONFIG": file, "CACHE_INVALIDATION_SECONDS": "0"},
			wantAddr:  "127.0.0.1:1000",
			wantToken: "file-token",
			wantCache: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.args, tt.environ)
			require.NoError(t, err)

			assert.Equal(t, tt.wantAddr, cfg.Addr)
			assert.Equal(t, tt.wantToken, cfg.Token)
			assert.Equal(t, tt.wantCache, cfg.CacheSeconds)
			assert.Equal(t, "debug", cfg.LogLevel)
			assert.Equal(t, file, cfg.ConfigFilePath)
		})
	}
}

func TestLoad_YAML(t *testing.T) {
	file := writeFile(t, "config.yaml", `
bind: "0.0.0.0:9742"
oauth_token: yaml-token
api_base_url: http://localhost:8080
audit_file: /tmp/remo-audit.log
`)

	cfg, err := Load([]string{"-config", file}, nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9742", cfg.Addr)
	assert.Equal(t, "yaml-token", cfg.Token)
	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	assert.Equal(t, "/tmp/remo-audit.log", cfg.AuditFile)
}

func TestLoad_TokenFile(t *testing.T) {
	tokenFile := writeFile(t, "token", "  secret-token\n")

	cfg, err := Load(nil, map[string]string{"OAUTH_TOKEN_FILE": tokenFile})
	require.NoError(t, err)
	assert.Equal(t, "secret-token", cfg.Token)

	// токен, заданный напрямую, имеет приоритет над файлом
	cfg, err = Load([]string{"-token-file", tokenFile}, map[string]string{"OAUTH_TOKEN": "direct"})
	require.NoError(t, err)
	assert.Equal(t, "direct", cfg.Token)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		environ map[string]string
		wantErr error
	}{
		{
			name:    "missing token",
			wantErr: ErrMissingToken,
		},
		{
			name:    "empty token file",
			environ: map[string]string{"OAUTH_TOKEN_FILE": writeFile(t, "empty", "\n")},
			wantErr: ErrMissingToken,
		},
		{
			name:    "invalid bind",
			environ: map[string]string{"OAUTH_TOKEN": "t", "BIND": "localhost"},
			wantErr: ErrInvalidAddr,
		},
		{
			name:    "missing token file",
			environ: map[string]string{"OAUTH_TOKEN_FILE": filepath.Join(t.TempDir(), "nope")},
		},
		{
			name:    "negative cache",
			args:    []string{"-c", "-1"},
			environ: map[string]string{"OAUTH_TOKEN": "t"},
		},
		{
			name:    "bad env value",
			environ: map[string]string{"OAUTH_TOKEN": "t", "CACHE_INVALIDATION_SECONDS": "soon"},
		},
		{
			name: "unknown flag",
			args: []string{"-unknown"},
		},
		{
			name: "missing config file",
			args: []string{"-config", filepath.Join(t.TempDir(), "missing.json")},
		},
		{
			name: "broken config file",
			args: []string{"-config", writeFile(t, "broken.json", "{")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args, tt.environ)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoad_AuditURL(t *testing.T) {
	cfg, err := Load([]string{"-audit-url", "http://flag.example/audit"}, map[string]string{"OAUTH_TOKEN": "t"})
	require.NoError(t, err)
	assert.Equal(t, "http://flag.example/audit", cfg.AuditURL)

	cfg, err = Load([]string{"-audit-url", "http://flag.example/audit"}, map[string]string{
		"OAUTH_TOKEN": "t",
		"AUDIT_URL":   "http://env.example/audit",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://env.example/audit", cfg.AuditURL)
}
