package config

import (
	"testing"
	"time"
)

func TestBaseURL(t *testing.T) {
	tests := []struct {
		origin string
		want   string
	}{
		{"https://erp.example.com", "https://erp.example.com/api"},
		{"https://erp.example.com/", "https://erp.example.com/api"},
		{"https://erp.example.com/api", "https://erp.example.com/api"},
		{"  ", "http://localhost:3000/api"},
	}

	for _, tt := range tests {
		if got := BaseURL(tt.origin); got != tt.want {
			t.Errorf("BaseURL(%q) = %q, want %q", tt.origin, got, tt.want)
		}
	}
}

func TestLoadPrefersERPAPIURL(t *testing.T) {
	t.Setenv("ERP_API_URL", "https://primary.example.com")
	t.Setenv("VITE_API_URL", "https://vite.example.com")
	t.Setenv("ERP_API_TIMEOUT", "45")
	t.Setenv("ERP_SESSION_STORE", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "https://primary.example.com/api" {
		t.Errorf("Unexpected base URL %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 45*time.Second {
		t.Errorf("Expected 45s timeout, got %s", cfg.API.Timeout)
	}
	if cfg.Session.Store != "memory" {
		t.Errorf("Expected memory store, got %q", cfg.Session.Store)
	}
	if cfg.API.RefreshPath != "/auth/refresh" {
		t.Errorf("Unexpected refresh path %q", cfg.API.RefreshPath)
	}
}

func TestLoadFallsBackToViteURL(t *testing.T) {
	t.Setenv("ERP_API_URL", "")
	t.Setenv("VITE_API_URL", "https://vite.example.com")
	t.Setenv("ERP_API_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "https://vite.example.com/api" {
		t.Errorf("Unexpected base URL %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != defaultTimeout {
		t.Errorf("Expected default timeout, got %s", cfg.API.Timeout)
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv("ERP_API_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("Expected an error for an unparseable timeout")
	}
}
