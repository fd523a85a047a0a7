package database

import "testing"

func TestSimpleProtocolURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u@h/db", "postgres://u@h/db?default_query_exec_mode=simple_protocol"},
		{"postgres://u@h/db?sslmode=disable", "postgres://u@h/db?sslmode=disable&default_query_exec_mode=simple_protocol"},
		{"postgres://u@h/db?default_query_exec_mode=exec", "postgres://u@h/db?default_query_exec_mode=exec"},
	}
	for _, tt := range tests {
		if got := simpleProtocolURL(tt.in); got != tt.want {
			t.Errorf("simpleProtocolURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultConfigs(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "7")
	t.Setenv("REDIS_POOL_SIZE", "9")

	if got := DefaultPostgresConfig().MaxConns; got != 7 {
		t.Errorf("MaxConns = %d, want 7", got)
	}
	if got := DefaultRedisConfig().PoolSize; got != 9 {
		t.Errorf("PoolSize = %d, want 9", got)
	}
}
