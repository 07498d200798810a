// Package journal persists scan cycles and their findings to Postgres
// so operators can review what the keeper saw and when. The keeper
// works fine without it; the chain remains the source of truth.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CycleRow is one scan cycle in perpscope.scan_cycles.
type CycleRow struct {
	CycleID      uuid.UUID
	MarkPrice    int64
	FundingIndex int64
	Scanned      int
	Skipped      int
	Failed       int
	Findings     int
	StartedAt    time.Time
	DurationMs   int64
}

// FindingRow is one liquidatable position in perpscope.findings.
type FindingRow struct {
	CycleID       uuid.UUID
	Owner         string // base58
	BaseAmount    int64
	Collateral    int64
	EntryPrice    int64
	Health        float64
	UnrealizedPnL int64
	Penalty       int64
}

// Writer writes scan results using multi-row INSERTs, one transaction
// per cycle.
type Writer struct {
	db *sql.DB
}

func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// EnsureSchema creates the journal tables if they do not exist.
func (w *Writer) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE SCHEMA IF NOT EXISTS perpscope;

CREATE TABLE IF NOT EXISTS perpscope.scan_cycles (
    cycle_id      UUID PRIMARY KEY,
    mark_price    BIGINT NOT NULL,
    funding_index BIGINT NOT NULL,
    scanned       INT NOT NULL,
    skipped       INT NOT NULL,
    failed        INT NOT NULL,
    findings      INT NOT NULL,
    started_at    TIMESTAMPTZ NOT NULL,
    duration_ms   BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS perpscope.findings (
    id             BIGSERIAL PRIMARY KEY,
    cycle_id       UUID NOT NULL REFERENCES perpscope.scan_cycles (cycle_id),
    owner          TEXT NOT NULL,
    base_amount    BIGINT NOT NULL,
    collateral     BIGINT NOT NULL,
    entry_price    BIGINT NOT NULL,
    health         DOUBLE PRECISION NOT NULL,
    unrealized_pnl BIGINT NOT NULL,
    penalty        BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS findings_owner_idx ON perpscope.findings (owner);
`
	if _, err := w.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure journal schema: %w", err)
	}
	return nil
}

// WriteCycle records one cycle and its findings atomically.
func (w *Writer) WriteCycle(ctx context.Context, cycle CycleRow, findings []FindingRow) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin journal tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO perpscope.scan_cycles
		    (cycle_id, mark_price, funding_index, scanned, skipped, failed, findings, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		cycle.CycleID, cycle.MarkPrice, cycle.FundingIndex,
		cycle.Scanned, cycle.Skipped, cycle.Failed, cycle.Findings,
		cycle.StartedAt, cycle.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("insert scan cycle: %w", err)
	}

	if len(findings) > 0 {
		if err := insertFindings(ctx, tx, findings); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit journal tx: %w", err)
	}
	return nil
}

func insertFindings(ctx context.Context, tx *sql.Tx, rows []FindingRow) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO perpscope.findings
		(cycle_id, owner, base_amount, collateral, entry_price, health, unrealized_pnl, penalty) VALUES `)

	args := make([]interface{}, 0, len(rows)*8)
	for i, r := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 8
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args,
			r.CycleID, r.Owner, r.BaseAmount, r.Collateral,
			r.EntryPrice, r.Health, r.UnrealizedPnL, r.Penalty,
		)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert findings: %w", err)
	}
	return nil
}
