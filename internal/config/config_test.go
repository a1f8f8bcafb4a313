package config

import (
	"os"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("NONEXISTENT_REQUIRED_VAR")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	os.Setenv("TEST_REQUIRED", "value123")
	defer os.Unsetenv("TEST_REQUIRED")

	result := mustGetEnv("TEST_REQUIRED")
	if result != "value123" {
		t.Errorf("Expected 'value123', got %q", result)
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "GEMINI_API_KEY", "CHAT_TIMEOUT_SECONDS", "RATE_LIMIT_MAX",
		"RATE_LIMIT_WINDOW_MINUTES", "RATE_LIMIT_STORE", "PROFILE_STORE", "FRONTEND_URL", "JWT_SECRET"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "3001" {
		t.Errorf("Expected port 3001, got %q", cfg.Port)
	}
	if cfg.ChatTimeoutSeconds != 30 {
		t.Errorf("Expected 30s chat timeout, got %d", cfg.ChatTimeoutSeconds)
	}
	if cfg.RateLimitMax != 100 || cfg.RateLimitWindowMinutes != 15 {
		t.Errorf("Expected 100 req / 15 min, got %d / %d", cfg.RateLimitMax, cfg.RateLimitWindowMinutes)
	}
	if cfg.FrontendURL != "http://localhost:5173" {
		t.Errorf("Expected dev frontend origin, got %q", cfg.FrontendURL)
	}
	if cfg.GeminiConfigured() {
		t.Error("Expected Gemini to be reported as not configured")
	}
	if cfg.IsProduction() {
		t.Error("Expected development mode by default")
	}
}

func TestLoad_ProductionOrigin(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("FRONTEND_URL", "")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := Load()

	if cfg.FrontendURL != "https://projeto-zen.vercel.app" {
		t.Errorf("Expected production frontend origin, got %q", cfg.FrontendURL)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Errorf("Expected JWT secret from env, got %q", cfg.JWTSecret)
	}
}

func TestProviderKey_IgnoresPlaceholder(t *testing.T) {
	if got := providerKey("sua_chave_api_aqui"); got != "" {
		t.Errorf("Expected placeholder to be discarded, got %q", got)
	}
	if got := providerKey("  real-key "); got != "real-key" {
		t.Errorf("Expected trimmed key, got %q", got)
	}
}

func TestLoadClient_TrimsTrailingSlash(t *testing.T) {
	t.Setenv("NEURA_API_URL", "https://relay.example.com/")
	t.Setenv("NEURA_TIMEOUT_SECONDS", "")

	cfg := LoadClient()

	if cfg.APIURL != "https://relay.example.com" {
		t.Errorf("Expected trailing slash removed, got %q", cfg.APIURL)
	}
	if cfg.TimeoutSeconds != 25 {
		t.Errorf("Expected default 25s client timeout, got %d", cfg.TimeoutSeconds)
	}
}
