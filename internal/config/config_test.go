package config

import (
	"os"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "openai_key")
		os.Unsetenv("LLM_PROVIDER")
		os.Unsetenv("DATABASE_PATH")
		os.Unsetenv("HTTP_ADDR")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.LLMProvider != "openai" {
			t.Errorf("Expected default provider 'openai', got '%s'", cfg.LLMProvider)
		}
		if cfg.OpenAIAPIKey != "openai_key" {
			t.Errorf("Expected OpenAIAPIKey to be 'openai_key', got '%s'", cfg.OpenAIAPIKey)
		}
		if cfg.DatabasePath != "data/planguard.db" {
			t.Errorf("Expected default database path, got '%s'", cfg.DatabasePath)
		}
		if cfg.HTTPAddr != ":8080" {
			t.Errorf("Expected default HTTP addr ':8080', got '%s'", cfg.HTTPAddr)
		}
	})

	t.Run("MissingOpenAIKey", func(t *testing.T) {
		os.Unsetenv("OPENAI_API_KEY")
		os.Unsetenv("LLM_PROVIDER")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing OPENAI_API_KEY, got nil")
		}
		expectedError := "OPENAI_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("GeminiProvider", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "gemini")
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		os.Unsetenv("OPENAI_API_KEY")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
	})

	t.Run("MissingGeminiKey", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "gemini")
		os.Unsetenv("GEMINI_API_KEY")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for missing GEMINI_API_KEY, got nil")
		}
	})

	t.Run("UnsupportedProvider", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "other")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for unsupported provider, got nil")
		}
	})

	t.Run("TelegramIDs", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "openai_key")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "123, 456")
		t.Setenv("TELEGRAM_ADMIN_ID", "123")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(cfg.TelegramAllowedUserIDs) != 2 || cfg.TelegramAllowedUserIDs[1] != 456 {
			t.Errorf("Expected allowed IDs [123 456], got %v", cfg.TelegramAllowedUserIDs)
		}
		if cfg.AdminTelegramID != 123 {
			t.Errorf("Expected admin ID 123, got %d", cfg.AdminTelegramID)
		}
	})

	t.Run("InvalidTelegramIDs", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "openai_key")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "abc")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for invalid allowed IDs, got nil")
		}
	})
}
