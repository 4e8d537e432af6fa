package simulate

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/partybattle/internal/storage/sqlite"
)

const duel = `
local s = Scenario.new("duel")
s:seed(5)
s:encounters(2)
s:turn_cap(50)
s:party("Paladin", { template = "paladin", policy = "random" })
s:opposition("Skeleton", { template = "skeleton", policy = "random" })
return s
`

func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "duel.lua")
	if err := os.WriteFile(path, []byte(duel), 0o600); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Lanes != 1 {
		t.Fatalf("lanes = %d, want 1", cfg.Lanes)
	}
	if cfg.Locale != "en" {
		t.Fatalf("locale = %q, want en", cfg.Locale)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("log level = %q, want info", cfg.Log.Level)
	}
}

func TestParseConfigEnvAndFlags(t *testing.T) {
	t.Setenv("PARTYBATTLE_SEED", "77")
	t.Setenv("PARTYBATTLE_LOG_LEVEL", "debug")
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"-scenario", "crypt.lua", "-lanes", "4", "-narrate"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Seed != 77 {
		t.Fatalf("seed = %d, want 77", cfg.Seed)
	}
	if cfg.Scenario != "crypt.lua" || cfg.Lanes != 4 || !cfg.Narrate {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q, want debug", cfg.Log.Level)
	}
}

func TestRunRequiresScenario(t *testing.T) {
	if err := Run(context.Background(), Config{}, nil, nil); err == nil {
		t.Fatal("expected missing scenario error")
	}
}

func TestRunPrintsTotals(t *testing.T) {
	var out, errOut bytes.Buffer
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	cfg := Config{
		Scenario: writeScenario(t),
		Lanes:    1,
		Reports:  true,
		DBPath:   dbPath,
		Locale:   "en",
	}
	cfg.Log.Level = "info"

	if err := Run(context.Background(), cfg, &out, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "(duel, seed 5)") {
		t.Fatalf("missing run header:\n%s", text)
	}
	if !strings.Contains(text, "2 encounters") {
		t.Fatalf("missing totals:\n%s", text)
	}
	if strings.Count(text, "Encounter ") != 2 {
		t.Fatalf("expected two encounter reports:\n%s", text)
	}
	if !strings.Contains(errOut.String(), "run finished") {
		t.Fatalf("expected run log, got:\n%s", errOut.String())
	}

	store, err := sqlite.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	page, err := store.ListEncounters(context.Background(), "", 0, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Records) != 2 {
		t.Fatalf("stored %d encounters, want 2", len(page.Records))
	}
}

func TestRunRejectsBadInputs(t *testing.T) {
	base := Config{Scenario: writeScenario(t), Locale: "en"}
	base.Log.Level = "info"

	badLocale := base
	badLocale.Locale = "not a locale!"
	if err := Run(context.Background(), badLocale, nil, nil); err == nil {
		t.Fatal("expected locale error")
	}

	badLevel := base
	badLevel.Log.Level = "loud"
	if err := Run(context.Background(), badLevel, nil, nil); err == nil {
		t.Fatal("expected log level error")
	}

	badCatalog := base
	badCatalog.CatalogFile = filepath.Join(t.TempDir(), "missing.yaml")
	if err := Run(context.Background(), badCatalog, nil, nil); err == nil {
		t.Fatal("expected catalog error")
	}

	missing := base
	missing.Scenario = filepath.Join(t.TempDir(), "missing.lua")
	if err := Run(context.Background(), missing, nil, nil); err == nil {
		t.Fatal("expected scenario error")
	}
}
