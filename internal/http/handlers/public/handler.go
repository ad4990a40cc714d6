package public

import "github.com/paygate-next/internal/provider"

// Handler buyer-facing API handler entry
type Handler struct {
	*provider.Container
}

// New creates the public handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
