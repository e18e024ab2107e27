package relay

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (c *controller) Mux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	r.Get("/healthz", c.handleHealth)
	r.HandleFunc("/ws", c.handleWs)

	return r
}
