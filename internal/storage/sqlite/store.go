package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/partybattle/internal/battle"
	sqlitemigrate "github.com/louisbranch/partybattle/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/partybattle/internal/storage"
	"github.com/louisbranch/partybattle/internal/storage/cursor"
	"github.com/louisbranch/partybattle/internal/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// Store persists encounter reports in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.EncounterStore = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveEncounter inserts one encounter and its combatants and returns the
// assigned sequence number.
func (s *Store) SaveEncounter(ctx context.Context, record storage.EncounterRecord) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	report := record.Report
	encounterID := strings.TrimSpace(report.EncounterID)
	if encounterID == "" {
		return 0, fmt.Errorf("encounter id is required")
	}
	runID := strings.TrimSpace(record.RunID)
	if runID == "" {
		return 0, fmt.Errorf("run id is required")
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save encounter: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO encounters (
		   encounter_id, run_id, lane, idx, seed,
		   turns, reason, party_deaths, opposition_deaths, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		encounterID, runID, record.Lane, record.Index, record.Seed,
		report.Turns, string(report.Reason), report.PartyDeaths, report.OppositionDeaths, toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, storage.ErrAlreadyExists
		}
		return 0, fmt.Errorf("insert encounter: %w", err)
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("encounter seq: %w", err)
	}

	for _, c := range report.Combatants {
		casts, err := encodeCasts(c.Telemetry.Casts)
		if err != nil {
			return 0, err
		}
		t := c.Telemetry
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO encounter_combatants (
			   encounter_id, slot, combatant_id, name, faction, alive,
			   hp, hp_max, mp, mp_max, status, casts,
			   damage_dealt, damage_received, healing_dealt, whoopsie, deaths, karma, fitness
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			encounterID, c.Slot, c.ID, c.Name, c.Faction.String(), c.Alive,
			c.HP, c.HPMax, c.MP, c.MPMax, int64(c.Status), casts,
			t.DamageDealt, t.DamageReceived, t.HealingDealt, t.Whoopsie, t.Deaths, t.Karma, c.Fitness,
		); err != nil {
			return 0, fmt.Errorf("insert combatant %s: %w", c.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save encounter: %w", err)
	}
	return seq, nil
}

// GetEncounter returns one encounter by ID.
func (s *Store) GetEncounter(ctx context.Context, encounterID string) (storage.EncounterRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.EncounterRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.EncounterRecord{}, fmt.Errorf("storage is not configured")
	}
	encounterID = strings.TrimSpace(encounterID)
	if encounterID == "" {
		return storage.EncounterRecord{}, fmt.Errorf("encounter id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, selectEncounter+` WHERE encounter_id = ?`, encounterID)
	record, err := scanEncounter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.EncounterRecord{}, storage.ErrNotFound
		}
		return storage.EncounterRecord{}, fmt.Errorf("get encounter: %w", err)
	}
	if err := s.loadCombatants(ctx, &record); err != nil {
		return storage.EncounterRecord{}, err
	}
	return record, nil
}

// ListEncounters returns one page of a run's encounters in insertion order.
// An empty runID lists every run.
func (s *Store) ListEncounters(ctx context.Context, runID string, pageSize int, pageToken string) (storage.EncounterPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.EncounterPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.EncounterPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	pageSize = min(pageSize, maxPageSize)
	runID = strings.TrimSpace(runID)
	after, err := cursor.Resume(pageToken, runID)
	if err != nil {
		return storage.EncounterPage{}, fmt.Errorf("page token: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		selectEncounter+` WHERE seq > ? AND (? = '' OR run_id = ?) ORDER BY seq LIMIT ?`,
		after, runID, runID, pageSize+1,
	)
	if err != nil {
		return storage.EncounterPage{}, fmt.Errorf("list encounters: %w", err)
	}
	defer rows.Close()

	var page storage.EncounterPage
	for rows.Next() {
		record, err := scanEncounter(rows)
		if err != nil {
			return storage.EncounterPage{}, fmt.Errorf("scan encounter: %w", err)
		}
		page.Records = append(page.Records, record)
	}
	if err := rows.Err(); err != nil {
		return storage.EncounterPage{}, fmt.Errorf("iterate encounters: %w", err)
	}
	if len(page.Records) > pageSize {
		page.Records = page.Records[:pageSize]
		token, err := cursor.Encode(cursor.New(page.Records[pageSize-1].Seq, runID))
		if err != nil {
			return storage.EncounterPage{}, err
		}
		page.NextPageToken = token
	}
	for i := range page.Records {
		if err := s.loadCombatants(ctx, &page.Records[i]); err != nil {
			return storage.EncounterPage{}, err
		}
	}
	return page, nil
}

const selectEncounter = `SELECT seq, encounter_id, run_id, lane, idx, seed,
        turns, reason, party_deaths, opposition_deaths, created_at
   FROM encounters`

type scanner interface {
	Scan(dest ...any) error
}

func scanEncounter(row scanner) (storage.EncounterRecord, error) {
	var record storage.EncounterRecord
	var reason string
	var createdAt int64
	err := row.Scan(
		&record.Seq,
		&record.Report.EncounterID,
		&record.RunID,
		&record.Lane,
		&record.Index,
		&record.Seed,
		&record.Report.Turns,
		&reason,
		&record.Report.PartyDeaths,
		&record.Report.OppositionDeaths,
		&createdAt,
	)
	if err != nil {
		return storage.EncounterRecord{}, err
	}
	record.Report.Reason = battle.Termination(reason)
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

func (s *Store) loadCombatants(ctx context.Context, record *storage.EncounterRecord) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT slot, combatant_id, name, faction, alive,
		        hp, hp_max, mp, mp_max, status, casts,
		        damage_dealt, damage_received, healing_dealt, whoopsie, deaths, karma, fitness
		   FROM encounter_combatants
		  WHERE encounter_id = ?
		  ORDER BY slot`,
		record.Report.EncounterID,
	)
	if err != nil {
		return fmt.Errorf("list combatants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c battle.CombatantReport
		var faction string
		var status int64
		var casts string
		err := rows.Scan(
			&c.Slot, &c.ID, &c.Name, &faction, &c.Alive,
			&c.HP, &c.HPMax, &c.MP, &c.MPMax, &status, &casts,
			&c.Telemetry.DamageDealt, &c.Telemetry.DamageReceived, &c.Telemetry.HealingDealt,
			&c.Telemetry.Whoopsie, &c.Telemetry.Deaths, &c.Telemetry.Karma, &c.Fitness,
		)
		if err != nil {
			return fmt.Errorf("scan combatant: %w", err)
		}
		if c.Faction, err = battle.ParseFaction(faction); err != nil {
			return fmt.Errorf("combatant %s: %w", c.ID, err)
		}
		c.Status = battle.Status(status)
		if c.Telemetry.Casts, err = decodeCasts(casts); err != nil {
			return fmt.Errorf("combatant %s: %w", c.ID, err)
		}
		record.Report.Combatants = append(record.Report.Combatants, c)
	}
	return rows.Err()
}

func encodeCasts(casts map[battle.Ability]int) (string, error) {
	named := make(map[string]int, len(casts))
	for a, n := range casts {
		named[a.String()] = n
	}
	data, err := json.Marshal(named)
	if err != nil {
		return "", fmt.Errorf("encode casts: %w", err)
	}
	return string(data), nil
}

func decodeCasts(raw string) (map[battle.Ability]int, error) {
	var named map[string]int
	if err := json.Unmarshal([]byte(raw), &named); err != nil {
		return nil, fmt.Errorf("decode casts: %w", err)
	}
	casts := make(map[battle.Ability]int, len(named))
	for name, n := range named {
		a, err := battle.AbilityByName(name)
		if err != nil {
			return nil, fmt.Errorf("decode casts: %w", err)
		}
		casts[a] = n
	}
	return casts, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
