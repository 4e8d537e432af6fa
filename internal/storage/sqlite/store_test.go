package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/partybattle/internal/battle"
	"github.com/louisbranch/partybattle/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "partybattle.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func sampleRecord(runID, encounterID string) storage.EncounterRecord {
	return storage.EncounterRecord{
		RunID: runID,
		Lane:  1,
		Index: 2,
		Seed:  99,
		Report: battle.Report{
			EncounterID:      encounterID,
			Turns:            57,
			Reason:           battle.PartyDefeated,
			PartyDeaths:      3,
			OppositionDeaths: 1,
			Combatants: []battle.CombatantReport{
				{
					ID: "paladin-0", Name: "Paladin", Slot: 0, Faction: battle.Party,
					HP: 0, HPMax: 69, MP: 4, MPMax: 23, Status: battle.Poisoned | battle.Protected,
					Telemetry: battle.Telemetry{
						Casts:          map[battle.Ability]int{battle.Attack: 5, battle.Reap: 1},
						DamageDealt:    40,
						DamageReceived: 80,
						HealingDealt:   12,
						Whoopsie:       1,
						Deaths:         1,
						Karma:          100,
					},
					Fitness: 20,
				},
				{
					ID: "skeleton-1", Name: "Skeleton A", Slot: 1, Faction: battle.Opposition, Alive: true,
					HP: 10, HPMax: 59, MP: 22, MPMax: 22,
					Telemetry: battle.Telemetry{Casts: map[battle.Ability]int{}},
				},
			},
		},
		CreatedAt: time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC),
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestSaveGetEncounterRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	input := sampleRecord("run-1", "enc-1")
	seq, err := store.SaveEncounter(context.Background(), input)
	if err != nil {
		t.Fatalf("save encounter: %v", err)
	}
	if seq != 1 {
		t.Fatalf("seq = %d, want 1", seq)
	}

	got, err := store.GetEncounter(context.Background(), "enc-1")
	if err != nil {
		t.Fatalf("get encounter: %v", err)
	}
	if got.RunID != "run-1" || got.Lane != 1 || got.Index != 2 || got.Seed != 99 {
		t.Fatalf("run context = %+v", got)
	}
	if !got.CreatedAt.Equal(input.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, input.CreatedAt)
	}
	if got.Report.Turns != 57 || got.Report.Reason != battle.PartyDefeated {
		t.Fatalf("report = %+v", got.Report)
	}
	if len(got.Report.Combatants) != 2 {
		t.Fatalf("combatants = %d, want 2", len(got.Report.Combatants))
	}
	paladin := got.Report.Combatants[0]
	if paladin.Status != battle.Poisoned|battle.Protected {
		t.Fatalf("status = %v", paladin.Status)
	}
	if paladin.Telemetry.Casts[battle.Reap] != 1 || paladin.Telemetry.Casts[battle.Attack] != 5 {
		t.Fatalf("casts = %v", paladin.Telemetry.Casts)
	}
	if paladin.Telemetry.Karma != 100 || paladin.Fitness != 20 {
		t.Fatalf("telemetry = %+v fitness = %v", paladin.Telemetry, paladin.Fitness)
	}
	skeleton := got.Report.Combatants[1]
	if skeleton.Faction != battle.Opposition || !skeleton.Alive {
		t.Fatalf("skeleton = %+v", skeleton)
	}
}

func TestSaveEncounterDuplicate(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.SaveEncounter(context.Background(), sampleRecord("run-1", "enc-1")); err != nil {
		t.Fatalf("save encounter: %v", err)
	}
	_, err := store.SaveEncounter(context.Background(), sampleRecord("run-1", "enc-1"))
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate error = %v, want ErrAlreadyExists", err)
	}
}

func TestSaveEncounterValidation(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.SaveEncounter(context.Background(), sampleRecord("run-1", "")); err == nil {
		t.Fatal("expected missing encounter id error")
	}
	if _, err := store.SaveEncounter(context.Background(), sampleRecord(" ", "enc-1")); err == nil {
		t.Fatal("expected missing run id error")
	}
}

func TestGetEncounterNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.GetEncounter(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestListEncountersPaginates(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	for i := range 5 {
		if _, err := store.SaveEncounter(context.Background(), sampleRecord("run-a", fmt.Sprintf("a-%d", i))); err != nil {
			t.Fatalf("save a-%d: %v", i, err)
		}
		if _, err := store.SaveEncounter(context.Background(), sampleRecord("run-b", fmt.Sprintf("b-%d", i))); err != nil {
			t.Fatalf("save b-%d: %v", i, err)
		}
	}

	var ids []string
	token := ""
	pages := 0
	for {
		page, err := store.ListEncounters(context.Background(), "run-a", 2, token)
		if err != nil {
			t.Fatalf("list page %d: %v", pages, err)
		}
		pages++
		for _, record := range page.Records {
			if record.RunID != "run-a" {
				t.Fatalf("record from run %q", record.RunID)
			}
			if len(record.Report.Combatants) != 2 {
				t.Fatalf("record %s has %d combatants", record.Report.EncounterID, len(record.Report.Combatants))
			}
			ids = append(ids, record.Report.EncounterID)
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	if pages != 3 {
		t.Fatalf("pages = %d, want 3", pages)
	}
	want := []string{"a-0", "a-1", "a-2", "a-3", "a-4"}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}

	all, err := store.ListEncounters(context.Background(), "", 0, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all.Records) != 10 || all.NextPageToken != "" {
		t.Fatalf("list all = %d records, token %q", len(all.Records), all.NextPageToken)
	}
}

func TestListEncountersRejectsForeignToken(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	for i := range 3 {
		if _, err := store.SaveEncounter(context.Background(), sampleRecord("run-a", fmt.Sprintf("a-%d", i))); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	page, err := store.ListEncounters(context.Background(), "run-a", 1, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := store.ListEncounters(context.Background(), "run-b", 1, page.NextPageToken); err == nil {
		t.Fatal("expected token mismatch error")
	}
	if _, err := store.ListEncounters(context.Background(), "run-a", 1, "garbage"); err == nil {
		t.Fatal("expected malformed token error")
	}
}

func TestReopenKeepsData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "partybattle.db")
	store, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.SaveEncounter(context.Background(), sampleRecord("run-1", "enc-1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetEncounter(context.Background(), "enc-1"); err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
}
