package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "a", want: []string{"a"}},
		{in: " a , b,,c ", want: []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CSV(tt.in), tt.in)
	}
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:file::memory:")
	t.Setenv("JWT_SECRET", "a")
	t.Setenv("JWT_REFRESH_SECRET", "b")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("ACCESS_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 5*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, "products", cfg.ESIndex)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, ":8080", cfg.Addr())
	require.NoError(t, cfg.Validate())
}

func TestValidate_SameSecrets(t *testing.T) {
	t.Parallel()

	cfg := Config{JWTAccessSecret: "x", JWTRefreshSecret: "x", AccessTTL: time.Minute, RefreshTTL: time.Hour}
	require.Error(t, cfg.Validate())
}

func TestValidate_ListsMissing(t *testing.T) {
	t.Parallel()

	cfg := Config{AccessTTL: time.Minute, RefreshTTL: time.Hour, JWTAccessSecret: "x"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_REFRESH_SECRET")
	assert.NotContains(t, err.Error(), "JWT_SECRET,")
}
