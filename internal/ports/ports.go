package ports

import "context"

// Pinger reports whether a backing dependency, such as the database pool,
// is reachable. The health endpoint aggregates these probes.
type Pinger interface {
	Health(ctx context.Context) error
}
