package contracts

import "context"

// Adapter fetches one category of market data from one upstream source.
// Adapters give no timeout guarantees of their own; the collection policy
// imposes the deadline externally, so Fetch must honor ctx cancellation
// and be safe to abandon.
type Adapter interface {
	// Category returns the category this adapter collects.
	Category() Category

	// Fetch retrieves the category payload. A partial recovery is
	// signalled by returning the payload together with ErrPartialData.
	Fetch(ctx context.Context) (Payload, error)
}

// Store persists dated snapshots. Re-saving a date overwrites the
// previous record for that date.
type Store interface {
	Save(ctx context.Context, snapshot MarketSnapshot) error
	Load(ctx context.Context, date string) (MarketSnapshot, error)
	ListDates(ctx context.Context) ([]string, error)
}

// Reporter consumes a finished snapshot and pushes the daily brief.
type Reporter interface {
	Publish(ctx context.Context, snapshot MarketSnapshot) error
}
