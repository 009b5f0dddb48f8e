package config

import (
	"errors"
	"testing"
)

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PORT", "")
	t.Setenv("PERSONA_NAME", "")
	t.Setenv("PUSHOVER_TOKEN", "")
	t.Setenv("PUSHOVER_USER", "")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.Port != DefaultPort {
		t.Errorf("Port got %d, want %d", s.Port, DefaultPort)
	}
	if s.ListenAddr != "0.0.0.0:7860" {
		t.Errorf("ListenAddr got %s, want 0.0.0.0:7860", s.ListenAddr)
	}
	if s.PersonaName != DefaultPersonaName {
		t.Errorf("PersonaName got %s, want %s", s.PersonaName, DefaultPersonaName)
	}
	if s.NotifierEnabled() {
		t.Error("Notifier should be disabled without Pushover credentials")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PORT", "8080")
	t.Setenv("PERSONA_NAME", "Ada Lovelace")
	t.Setenv("PUSHOVER_TOKEN", "tok")
	t.Setenv("PUSHOVER_USER", "usr")
	t.Setenv("LLM_PROVIDER", "openai")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.ListenAddr != "0.0.0.0:8080" {
		t.Errorf("ListenAddr got %s, want 0.0.0.0:8080", s.ListenAddr)
	}
	if s.PersonaName != "Ada Lovelace" {
		t.Errorf("PersonaName got %s", s.PersonaName)
	}
	if !s.NotifierEnabled() {
		t.Error("Notifier should be enabled with both Pushover credentials")
	}
	if s.LLMProvider != "openai" {
		t.Errorf("LLMProvider got %s", s.LLMProvider)
	}
}

func TestLoad_BadPortFallsBack(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PORT", "not-a-number")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Port != DefaultPort {
		t.Errorf("Port got %d, want default %d", s.Port, DefaultPort)
	}
}
