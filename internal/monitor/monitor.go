// Package monitor scans candidate positions for liquidation
// opportunities. Each cycle takes one market snapshot, fans out the
// per-candidate position fetches with bounded concurrency, and collects
// the positions whose health breaches the maintenance threshold.
package monitor

import (
	"context"
	"errors"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"PerpScope/internal/account"
	"PerpScope/internal/ledger"
	"PerpScope/internal/risk"
)

// DefaultConcurrency bounds in-flight position fetches per cycle.
const DefaultConcurrency = 8

// Monitor drives liquidation scans against one program deployment.
// Stateless across cycles: every Scan re-fetches everything.
type Monitor struct {
	fetcher     ledger.AccountFetcher
	programID   solana.PublicKey
	concurrency int
	log         zerolog.Logger
}

// New creates a Monitor. concurrency <= 0 falls back to
// DefaultConcurrency.
func New(fetcher ledger.AccountFetcher, programID solana.PublicKey, concurrency int, log zerolog.Logger) *Monitor {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Monitor{
		fetcher:     fetcher,
		programID:   programID,
		concurrency: concurrency,
		log:         log,
	}
}

// Finding is one liquidatable position discovered during a scan.
type Finding struct {
	Owner         solana.PublicKey
	Position      account.Position
	Health        float64
	UnrealizedPnL int64
	Penalty       uint64 // expected liquidator reward
}

// Report is the outcome of one scan cycle.
type Report struct {
	CycleID      uuid.UUID
	MarkPrice    uint64
	FundingIndex int64
	Scanned      int // candidates with a live position that were evaluated
	Skipped      int // absent or flat positions
	Failed       int // fetch or decode failures, excluded from this cycle
	Findings     []Finding
}

// Addresses returns just the owners of the liquidatable positions.
func (r *Report) Addresses() []solana.PublicKey {
	out := make([]solana.PublicKey, len(r.Findings))
	for i, f := range r.Findings {
		out[i] = f.Owner
	}
	return out
}

// Scan evaluates every candidate against a single market snapshot taken
// at the start of the cycle. An absent market state aborts the cycle
// with an empty report: health cannot be computed without a shared mark
// price. A single candidate's failure only excludes that candidate.
//
// Cancellation is cooperative at per-candidate granularity: on ctx
// cancellation, results collected so far are returned alongside
// ctx.Err().
func (m *Monitor) Scan(ctx context.Context, candidates []solana.PublicKey) (*Report, error) {
	report := &Report{CycleID: uuid.New()}

	market, err := ledger.GetMarketState(ctx, m.fetcher, m.programID)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountAbsent) {
			m.log.Warn().
				Stringer("cycle_id", report.CycleID).
				Msg("market state not initialized, skipping cycle")
			return report, nil
		}
		return nil, err
	}
	report.MarkPrice = market.MarkPrice
	report.FundingIndex = market.FundingIndex

	outcomes := make([]outcome, len(candidates))

	sem := make(chan struct{}, m.concurrency)
	var wg sync.WaitGroup

launch:
	for i, owner := range candidates {
		select {
		case <-ctx.Done():
			break launch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, owner solana.PublicKey) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = m.evaluate(ctx, owner, market, report.CycleID)
		}(i, owner)
	}
	wg.Wait()

	// Findings keep candidate order; correctness is order-independent
	// since each is judged against the same snapshot.
	for _, o := range outcomes {
		switch {
		case o.scanned:
			report.Scanned++
		case o.skipped:
			report.Skipped++
		case o.failed:
			report.Failed++
		}
		if o.finding != nil {
			report.Findings = append(report.Findings, *o.finding)
		}
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// outcome classifies one candidate's result within a cycle.
type outcome struct {
	finding *Finding
	scanned bool
	skipped bool
	failed  bool
}

func (m *Monitor) evaluate(
	ctx context.Context,
	owner solana.PublicKey,
	market account.MarketState,
	cycleID uuid.UUID,
) (o outcome) {
	pos, err := ledger.GetPosition(ctx, m.fetcher, m.programID, owner)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountAbsent) {
			o.skipped = true
			return o
		}
		o.failed = true
		m.log.Warn().
			Stringer("cycle_id", cycleID).
			Stringer("owner", owner).
			Err(err).
			Msg("candidate excluded from cycle")
		return o
	}

	if pos.IsFlat() {
		o.skipped = true
		return o
	}

	o.scanned = true
	health := risk.Health(pos, market.MarkPrice)
	if !risk.Liquidatable(health) {
		return o
	}

	o.finding = &Finding{
		Owner:         owner,
		Position:      pos,
		Health:        health,
		UnrealizedPnL: risk.UnrealizedPnL(pos, market.MarkPrice),
		Penalty:       risk.LiquidationPenalty(pos.Collateral),
	}
	m.log.Info().
		Stringer("cycle_id", cycleID).
		Stringer("owner", owner).
		Float64("health", health).
		Msg("liquidation opportunity")
	return o
}
