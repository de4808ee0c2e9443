package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	req := require.New(t)
	cfg := NewConfig()

	req.NoError(cfg.Validate())
	req.Equal(5000, cfg.Port)
	req.Equal(":5000", cfg.TCPAddr())
	req.Equal(100, cfg.HistorySize)
	req.Equal(RateLimitConfig{Burst: 30, RefillInterval: time.Second}, cfg.RateLimit())
	req.Equal([]string{"http://localhost:8080"}, cfg.Origins())
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Run("overrides from the environment", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("CHAT_HOST", "127.0.0.1")
		t.Setenv("CHAT_PORT", "6000")
		t.Setenv("CHAT_HISTORY_SIZE", "10")
		t.Setenv("CHAT_ALLOWED_ORIGINS", "http://a.example, https://b.example")
		t.Setenv("CHAT_RATE_LIMIT_REFILL_INTERVAL", "250ms")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := NewConfigFromEnv()
		req.NoError(err)
		req.Equal("127.0.0.1:6000", cfg.TCPAddr())
		req.Equal(10, cfg.HistorySize)
		req.Equal([]string{"http://a.example", "https://b.example"}, cfg.Origins())
		req.Equal(250*time.Millisecond, cfg.RateLimitRefill)
		req.Equal("DEBUG", cfg.LogLevel)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("CHAT_HISTORY_SIZE", "0")

		_, err := NewConfigFromEnv()
		req.Error(err)
		req.Contains(err.Error(), "HistorySize")
	})

	t.Run("rejects a file cap above the line cap", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("CHAT_MAX_LINE_LENGTH", "1024")
		t.Setenv("CHAT_MAX_FILE_PAYLOAD", "4096")

		_, err := NewConfigFromEnv()
		req.Error(err)
		req.Contains(err.Error(), "MaxFilePayload")
	})

	t.Run("rejects unknown log levels", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("LOG_LEVEL", "verbose")

		_, err := NewConfigFromEnv()
		req.Error(err)
	})
}

func TestParseOrigins(t *testing.T) {
	req := require.New(t)
	req.Nil(parseOrigins("   "))
	req.Equal([]string{"a", "b"}, parseOrigins("a, b"))
}

func TestOriginPolicy(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelError)

	tests := []struct {
		name    string
		origins []string
		header  string
		want    bool
	}{
		{"listed origin", []string{"http://localhost:8080"}, "http://localhost:8080", true},
		{"case insensitive", []string{"http://LOCALHOST:8080"}, "HTTP://localhost:8080", true},
		{"unlisted origin", []string{"http://localhost:8080"}, "http://evil.example", false},
		{"missing header", []string{"http://localhost:8080"}, "", false},
		{"wildcard", []string{"*"}, "https://anything.example", true},
		{"wildcard still needs a valid origin", []string{"*"}, "not a url", false},
		{"invalid configuration entries are skipped", []string{"nope", "http://ok.example"}, "http://ok.example", true},
		{"empty allow-list", nil, "http://localhost:8080", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := newOriginPolicy(log, tt.origins)
			r := httptest.NewRequest(http.MethodGet, "/ws", http.NoBody)
			if tt.header != "" {
				r.Header.Set("Origin", tt.header)
			}
			require.Equal(t, tt.want, policy.check(r))
		})
	}
}

func TestRateLimiter(t *testing.T) {
	t.Run("disabled limiter allows everything", func(t *testing.T) {
		rl := newRateLimiter(0, time.Second)
		for i := 0; i < 100; i++ {
			require.True(t, rl.allow())
		}
	})

	t.Run("burst then refuse", func(t *testing.T) {
		req := require.New(t)
		rl := newRateLimiter(3, time.Hour)
		req.True(rl.allow())
		req.True(rl.allow())
		req.True(rl.allow())
		req.False(rl.allow())
	})

	t.Run("refills over the interval", func(t *testing.T) {
		req := require.New(t)
		rl := newRateLimiter(2, 40*time.Millisecond)
		req.True(rl.allow())
		req.True(rl.allow())
		req.False(rl.allow())
		req.Eventually(rl.allow, time.Second, 5*time.Millisecond)
	})
}
