// Package alert publishes liquidation opportunities to NATS JetStream
// for downstream liquidator bots. Publishing is best-effort: a failed
// publish never fails the scan that produced it.
package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
)

// StreamName holds keeper alerts.
// Subjects follow the pattern: perp.scope.liquidatable.{owner}
const StreamName = "PERPSCOPE_ALERTS"

// LiquidationAlert is the published payload for one liquidatable
// position.
type LiquidationAlert struct {
	CycleID       uuid.UUID `json:"cycle_id"`
	Owner         string    `json:"owner"` // base58
	Health        float64   `json:"health"`
	MarkPrice     int64     `json:"mark_price"`
	Collateral    int64     `json:"collateral"`
	UnrealizedPnL int64     `json:"unrealized_pnl"`
	Penalty       int64     `json:"penalty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher emits alerts to JetStream.
type Publisher struct {
	js jetstream.JetStream
}

func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// Publish emits one alert on perp.scope.liquidatable.{owner}.
func (p *Publisher) Publish(ctx context.Context, alert LiquidationAlert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	subject := fmt.Sprintf("perp.scope.liquidatable.%s", alert.Owner)
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

// EnsureStream creates or updates the alerts stream.
func EnsureStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{"perp.scope.liquidatable.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("ensure alerts stream: %w", err)
	}
	return nil
}
