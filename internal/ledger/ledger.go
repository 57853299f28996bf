package ledger

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a visitor has no recorded win.
var ErrNotFound = errors.New("no win recorded for visitor")

// Win is one resolved spin.
type Win struct {
	VisitorID  string    `json:"visitorId"`
	Prize      string    `json:"prize"`
	FinalAngle float64   `json:"finalAngle"`
	WonAt      time.Time `json:"wonAt"`
}

// Ledger keeps the durable record of who won what.
type Ledger interface {
	RecordWin(ctx context.Context, win Win) error
	HasPlayed(ctx context.Context, visitorID string) (bool, error)
	// LastWin returns ErrNotFound when the visitor never won.
	LastWin(ctx context.Context, visitorID string) (Win, error)
}
