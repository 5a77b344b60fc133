package dbchanges

import "context"

// ConsistencyLevel defines where a capture may read its rows from.
type ConsistencyLevel int

const (
	// StrongConsistency requires captures to read from the primary database. This is the default,
	// a start or end point read from a lagging replica reports changes that never happened.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows captures to read from a replica database, trading accuracy
	// for a reduced load on the primary database.
	EventualConsistency
)

// contextKey is a private type to prevent context key collisions.
type contextKey string

// ConsistencyLevelKey is the context key used to store the consistency level.
const ConsistencyLevelKey contextKey = "dbchanges.consistency_level"

// WithStrongConsistency returns a context that makes captures read from the primary database.
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that lets captures read from a replica database.
//
// Example usage:
//
//	ctx = dbchanges.WithEventualConsistency(ctx)
//	snapshot, err := source.CaptureTable(ctx, table)
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context, StrongConsistency if none is set.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
