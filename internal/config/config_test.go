package config

import (
	"reflect"
	"testing"
)

func TestLoad_RequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/pos")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/pos")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("IMAGE_DIR", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8081" {
		t.Errorf("Port: got %q, want %q", cfg.Port, "8081")
	}
	if cfg.ImageDir != "./uploads/menu" {
		t.Errorf("ImageDir: got %q", cfg.ImageDir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel: got %q", cfg.LogLevel)
	}
	if cfg.AMQPURL != "" {
		t.Errorf("AMQPURL: expected empty by default, got %q", cfg.AMQPURL)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" http://a.test , ,http://b.test")
	want := []string{"http://a.test", "http://b.test"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
