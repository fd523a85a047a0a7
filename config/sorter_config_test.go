package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)

	cfg, err := Load()

	req.NoError(err)
	req.Equal("8080", cfg.Port)
	req.Equal(3000, cfg.MaxFeatures)
	req.Equal("balanced", cfg.ClassWeight)
	req.InDelta(0.2, cfg.EvalTestSize, 1e-12)
	req.Equal(int64(42), cfg.EvalSeed)
	req.Equal(30*time.Minute, cfg.CacheTTL)
	req.Equal(3, cfg.ConsumerMaxRetries)
	req.Equal("sorter", cfg.MongoDBName)
	req.Empty(cfg.MongoDBURL)
	req.False(cfg.AuthEnabled())
	req.True(cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("MAX_FEATURES", "500")
	t.Setenv("CLASS_WEIGHT", "none")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ENV", "production")

	cfg, err := Load()

	req.NoError(err)
	req.Equal(500, cfg.MaxFeatures)
	req.Equal("none", cfg.ClassWeight)
	req.Equal([]string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	req.True(cfg.AuthEnabled())
	req.True(cfg.IsProduction())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad class weight", "CLASS_WEIGHT", "auto"},
		{"test size out of range", "EVAL_TEST_SIZE", "1.5"},
		{"negative C", "SVM_C", "-1"},
		{"unknown env", "ENV", "moon"},
		{"node out of range", "NODE_ID", "4096"},
		{"zero consumer retries", "CONSUMER_MAX_RETRIES", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s: expected error", tt.key, tt.value)
			}
		})
	}
}
