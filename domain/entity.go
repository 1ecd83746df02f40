package domain

import "context"

// Entity is the extracted parameter a provider needs. Primary carries a
// location (Weather) or ticker (Finance); for Routing, Primary is the
// origin and Secondary the destination.
type Entity struct {
	Primary   string
	Secondary string
}

// Empty reports whether extraction failed to find anything usable.
func (e Entity) Empty() bool {
	return e.Primary == ""
}

// EntityExtractor pulls an Entity out of a free-form query. Implementations
// may be regex/heuristic (default) or LLM-backed (optional, per §4.7).
type EntityExtractor interface {
	Extract(ctx context.Context, query string) (Entity, bool)
}
