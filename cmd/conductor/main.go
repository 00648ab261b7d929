package main

import (
	"log"

	"github.com/soundlink/conductor/internal/app"
)

func main() {
	// Catalog collaborators are wired by the embedding deployment; the bare
	// binary runs with the generic node load path only.
	if err := app.New(app.CatalogClients{}).Run(); err != nil {
		log.Fatalf("❌ conductor failed to start: %v", err)
	}
}
