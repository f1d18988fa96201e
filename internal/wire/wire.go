// Package wire provides dependency injection for the tether application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"sync"

	"github.com/example/tether/internal/adapters/bundler"
	"github.com/example/tether/internal/adapters/sqlite"
	"github.com/example/tether/internal/app"
	"github.com/example/tether/internal/db"
	"github.com/example/tether/internal/ports/primary"
)

var (
	ticketService     primary.TicketService
	artifactService   primary.ArtifactService
	messageService    primary.MessageService
	continuityService primary.ContinuityService
	once              sync.Once
)

// TicketService returns the singleton TicketService instance.
func TicketService() primary.TicketService {
	once.Do(initServices)
	return ticketService
}

// ArtifactService returns the singleton ArtifactService instance.
func ArtifactService() primary.ArtifactService {
	once.Do(initServices)
	return artifactService
}

// MessageService returns the singleton MessageService instance.
func MessageService() primary.MessageService {
	once.Do(initServices)
	return messageService
}

// ContinuityService returns the singleton ContinuityService instance.
func ContinuityService() primary.ContinuityService {
	once.Do(initServices)
	return continuityService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Repository adapters (secondary ports) with injected DB
	ticketRepo := sqlite.NewTicketRepository(database)
	artifactRepo := sqlite.NewArtifactRepository(database)
	messageRepo := sqlite.NewMessageRepository(database)
	receiptRepo := sqlite.NewReceiptRepository(database)
	checkRepo := sqlite.NewCheckRunRepository(database)

	// The bundle builder assembles from the same store the repos serve
	builder := bundler.NewLocalBuilder(ticketRepo, artifactRepo)

	// Services (primary port implementations)
	ticketService = app.NewTicketService(ticketRepo)
	artifactService = app.NewArtifactService(artifactRepo, ticketRepo)
	messageService = app.NewMessageService(messageRepo)
	continuityService = app.NewContinuityService(receiptRepo, checkRepo, builder)
}
