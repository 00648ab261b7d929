package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/soundlink/conductor/internal/httpserver/deps"
	"github.com/soundlink/conductor/internal/httpserver/handlers"
)

func init() { Register(registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", handlers.Search(d))
		r.Post("/signal", handlers.Signal(d))

		r.Get("/decodetrack", handlers.DecodeTrack(d))
		r.Post("/decodetracks", handlers.DecodeTracks(d))

		r.Route("/sessions/{guildID}", func(r chi.Router) {
			r.Get("/", handlers.GetSession(d))
			r.Delete("/", handlers.LeaveSession(d))
			r.Post("/play", handlers.Play(d))
		})

		r.Get("/nodes", handlers.Nodes(d))
		r.Post("/nodes/sweep", handlers.SweepNodes(d))
	})
}
