package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Encounters int    `env:"TEST_ENCOUNTERS" envDefault:"3"`
	Scenario   string `env:"TEST_SCENARIO"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Encounters != 3 {
		t.Fatalf("expected default encounters 3, got %d", cfg.Encounters)
	}
}

func TestParseEnvUsesPrefix(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("PARTYBATTLE_TEST_SCENARIO", "arena.lua")
	t.Setenv("TEST_ENCOUNTERS", "99")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Scenario != "arena.lua" {
		t.Fatalf("Scenario = %q, want arena.lua", cfg.Scenario)
	}
	if cfg.Encounters != 3 {
		t.Fatalf("unprefixed variable leaked: Encounters = %d", cfg.Encounters)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("PARTYBATTLE_TEST_ENCOUNTERS", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
