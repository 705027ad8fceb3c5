package audit

import "context"

// Store persists audit entries. Append is the only write; retrieval is always
// newest-first and bounded.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}

// Sink receives a copy of every appended entry. Sinks are strictly
// best-effort secondary outputs (Kafka, etc.); their errors are reported on
// the diagnostic channel like store failures.
type Sink interface {
	Publish(ctx context.Context, entry Entry) error
}
