package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests using t.Setenv cannot run in parallel (shared process env).

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("INKBOARD_JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "inkboard", cfg.Database.User)
	assert.Equal(t, "inkboard_dev", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxConns)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, time.Duration(0), cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("INKBOARD_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("INKBOARD_DB_HOST", "db.internal")
	t.Setenv("INKBOARD_DB_PORT", "5433")
	t.Setenv("INKBOARD_DB_MAX_CONNS", "50")
	t.Setenv("INKBOARD_REDIS_ADDR", "redis.internal:6379")
	t.Setenv("INKBOARD_REDIS_DB", "2")
	t.Setenv("INKBOARD_JWT_ACCESS_TTL", "30m")
	t.Setenv("INKBOARD_SERVER_ADDR", ":9090")
	t.Setenv("INKBOARD_CORS_ORIGINS", "https://app.example.com, https://staging.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 50, cfg.Database.MaxConns)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.Server.CORSOrigins)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		val     string
		wantErr string
	}{
		{
			name:    "missing jwt secret",
			key:     "INKBOARD_JWT_SECRET",
			val:     "",
			wantErr: "INKBOARD_JWT_SECRET is required",
		},
		{
			name:    "short jwt secret",
			key:     "INKBOARD_JWT_SECRET",
			val:     "too-short",
			wantErr: "at least 32 characters",
		},
		{
			name:    "bad db port",
			key:     "INKBOARD_DB_PORT",
			val:     "70000",
			wantErr: "INKBOARD_DB_PORT must be 1-65535",
		},
		{
			name:    "non-numeric db port",
			key:     "INKBOARD_DB_PORT",
			val:     "abc",
			wantErr: "parsing INKBOARD_DB_PORT",
		},
		{
			name:    "zero max conns",
			key:     "INKBOARD_DB_MAX_CONNS",
			val:     "0",
			wantErr: "INKBOARD_DB_MAX_CONNS must be >= 1",
		},
		{
			name:    "bad access ttl",
			key:     "INKBOARD_JWT_ACCESS_TTL",
			val:     "not-a-duration",
			wantErr: "parsing INKBOARD_JWT_ACCESS_TTL",
		},
		{
			name:    "negative access ttl",
			key:     "INKBOARD_JWT_ACCESS_TTL",
			val:     "-1h",
			wantErr: "INKBOARD_JWT_ACCESS_TTL must be positive",
		},
		{
			name:    "negative write timeout",
			key:     "INKBOARD_SERVER_WRITE_TIMEOUT",
			val:     "-5s",
			wantErr: "INKBOARD_SERVER_WRITE_TIMEOUT must be >= 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.key != "INKBOARD_JWT_SECRET" {
				t.Setenv("INKBOARD_JWT_SECRET", "0123456789abcdef0123456789abcdef")
			}
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	db := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "inkboard",
		Password: "secret",
		DBName:   "inkboard_dev",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=inkboard password=secret dbname=inkboard_dev sslmode=disable",
		db.DSN())
}
