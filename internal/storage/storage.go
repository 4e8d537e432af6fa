// Package storage defines persistence for finished encounters.
//
// Implementations live in subpackages; sqlite is the only one.
package storage

import (
	"context"
	"time"

	"github.com/louisbranch/partybattle/internal/battle"
	apperrors "github.com/louisbranch/partybattle/internal/platform/errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrAlreadyExists indicates a record with the same identity is stored.
var ErrAlreadyExists = apperrors.New(apperrors.CodeAlreadyExists, "record already exists")

// EncounterRecord is a stored encounter report with its run context.
type EncounterRecord struct {
	Seq       int64
	RunID     string
	Lane      int
	Index     int
	Seed      int64
	Report    battle.Report
	CreatedAt time.Time
}

// EncounterPage is one page of records in insertion order.
type EncounterPage struct {
	Records       []EncounterRecord
	NextPageToken string
}

// EncounterStore persists encounter reports.
type EncounterStore interface {
	SaveEncounter(ctx context.Context, record EncounterRecord) (int64, error)
	GetEncounter(ctx context.Context, encounterID string) (EncounterRecord, error)
	ListEncounters(ctx context.Context, runID string, pageSize int, pageToken string) (EncounterPage, error)
}
