package container

import (
	"fmt"

	"github.com/lyzr/crewledger/cmd/ledgerd/feed"
	"github.com/lyzr/crewledger/cmd/ledgerd/service"
	"github.com/lyzr/crewledger/common/bootstrap"
	"github.com/lyzr/crewledger/common/condition"
	"github.com/lyzr/crewledger/common/ledger"
)

// Container holds all initialized services (created once at startup)
type Container struct {
	// Components
	Components *bootstrap.Components

	// Domain
	Engine    *ledger.Engine
	Evaluator *condition.Evaluator

	// Services
	PatchService  *service.PatchService
	LedgerService *service.LedgerService

	// Live update feed; started by main
	Feed *feed.Hub
}

// NewContainer initializes all services once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	evaluator, err := condition.NewEvaluator()
	if err != nil {
		return nil, fmt.Errorf("failed to create condition evaluator: %w", err)
	}

	engine := ledger.NewEngine(components.Store, components.Locker, components.Logger)

	// Initialize services (bottom-up: dependencies first)
	patchService := service.NewPatchService(components.Logger)
	ledgerService := service.NewLedgerService(
		engine,
		patchService,
		evaluator,
		components.Bus,
		components.Telemetry,
		components.Logger,
	)

	return &Container{
		Components:    components,
		Engine:        engine,
		Evaluator:     evaluator,
		PatchService:  patchService,
		LedgerService: ledgerService,
		Feed:          feed.NewHub(components.Logger),
	}, nil
}
