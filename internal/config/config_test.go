package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches into a fresh directory so no stray config.yaml or .env
// is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DefaultRequestTimeout, cfg.Server.RequestTimeout)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
	assert.True(t, cfg.Security.RateLimit.Enabled)

	assert.Equal(t, "intraday", cfg.Paths.IntradayDir)
	assert.Equal(t, "transaction", cfg.Paths.TransactionDir)
	assert.Equal(t, "CASE", cfg.Paths.CaseDir)
	assert.Equal(t, "*.xlsx", cfg.Paths.IntradayPattern)
	assert.Equal(t, "*.csv", cfg.Paths.TransactionPattern)

	assert.Equal(t, 60, cfg.Analytics.MinDays)
	assert.Equal(t, 0.7, cfg.Analytics.MinAbsCorr)
	assert.Equal(t, 40, cfg.Analytics.TopN)
	assert.Equal(t, 5, cfg.Analytics.CandidateCount)
	assert.Equal(t, 10, cfg.Analytics.OverviewSize)

	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, SnapshotCacheTTL, cfg.Cache.TTL)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		yaml        string
		dotenv      string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no sources",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "both", cfg.Logging.Output)
			},
		},
		{
			name: "yaml overlays defaults",
			yaml: "server:\n  port: 9000\n  read_timeout: 30s\nanalytics:\n  min_abs_corr: 0.85\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout, "untouched keys keep defaults")
				assert.Equal(t, 0.85, cfg.Analytics.MinAbsCorr)
				assert.Equal(t, 60, cfg.Analytics.MinDays)
			},
		},
		{
			name: "environment beats yaml",
			yaml: "server:\n  port: 9000\n",
			env: map[string]string{
				"EGX_SERVER_PORT":               "9100",
				"EGX_SECURITY_ALLOWED_ORIGINS":  "http://a.example,https://b.example",
				"EGX_ANALYTICS_TOP_N":           "25",
				"EGX_CACHE_BACKEND":             "Redis",
				"EGX_CACHE_REDIS_ADDR":          "localhost:6379",
				"EGX_SECURITY_RATE_LIMIT_BURST": "10",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9100, cfg.Server.Port)
				assert.Equal(t, []string{"http://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, 25, cfg.Analytics.TopN)
				assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
				assert.Equal(t, 10, cfg.Security.RateLimit.Burst)
			},
		},
		{
			name:   "dotenv file",
			dotenv: "EGX_PATHS_CASE_DIR=history\nEGX_ANALYTICS_MIN_DAYS=30\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "history", cfg.Paths.CaseDir)
				assert.Equal(t, 30, cfg.Analytics.MinDays)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"EGX_SERVER_PORT": "99999"},
			wantErr: true,
		},
		{
			name:    "unparseable env value",
			env:     map[string]string{"EGX_ANALYTICS_MIN_DAYS": "sixty"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "server: [\n",
			wantErr: true,
		},
		{
			name:    "redis without address",
			env:     map[string]string{"EGX_CACHE_BACKEND": "redis"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := chdir(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.dotenv != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(tt.dotenv), 0644))
				t.Cleanup(func() {
					os.Unsetenv("EGX_PATHS_CASE_DIR")
					os.Unsetenv("EGX_ANALYTICS_MIN_DAYS")
				})
			}
			path := ""
			if tt.yaml != "" {
				path = filepath.Join(dir, "egx.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoad_FindsConfigInWorkingDirectory(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: 7070\n"), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, "read timeout"},
		{"cors without origins", func(c *Config) { c.Security.AllowedOrigins = nil }, "allowed origin"},
		{"bad rate limit", func(c *Config) { c.Security.RateLimit.RPS = 0 }, "rate limit"},
		{"min days", func(c *Config) { c.Analytics.MinDays = 1 }, "min_days"},
		{"correlation above one", func(c *Config) { c.Analytics.MinAbsCorr = 1.2 }, "min_abs_corr"},
		{"top n", func(c *Config) { c.Analytics.TopN = 1 }, "top_n"},
		{"candidate count", func(c *Config) { c.Analytics.CandidateCount = 0 }, "list sizes"},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, "unknown cache backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_Normalizes(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = ""
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""
	cfg.Security.EnableCORS = false
	cfg.Security.AllowedOrigins = nil

	require.NoError(t, cfg.Validate())
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestPathsConfig_Resolve(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "history")

	pc := Default().Paths
	pc.BaseDir = base
	pc.CaseDir = abs

	paths, err := pc.Resolve()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "intraday"), paths.IntradayDir)
	assert.Equal(t, filepath.Join(base, "transaction"), paths.TransactionDir)
	assert.Equal(t, abs, paths.CaseDir, "absolute paths kept")

	require.NoError(t, paths.EnsureDirectories())
	assert.DirExists(t, paths.ReportsDir)
	assert.DirExists(t, paths.LogsDir)
	assert.NoDirExists(t, paths.IntradayDir, "input directories are not created")
}

func TestPathsConfig_ResolveDefaultsToExecutableDir(t *testing.T) {
	paths, err := Default().Paths.Resolve()
	require.NoError(t, err)

	exeDir, err := ExecutableDir()
	require.NoError(t, err)
	assert.Equal(t, exeDir, paths.BaseDir)
}
