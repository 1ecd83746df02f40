package domain

import "context"

// Provider fetches the raw payload for an Entity from one external data
// source. Weather/Finance/Routing each register one primary Provider and
// an optional fallback, per §4.7 ("Finance uses a commercial provider
// primarily with a public fallback").
type Provider interface {
	Name() string
	Fetch(ctx context.Context, entity Entity) (map[string]any, error)
}
