package deps

import (
	"time"

	"github.com/soundlink/conductor/internal/logger"
	"github.com/soundlink/conductor/internal/node"
	"github.com/soundlink/conductor/internal/orchestrator"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	Orchestrator *orchestrator.Orchestrator
	Pool         *node.Pool
	HealthSweep  chan struct{} // manual health sweep trigger (nil when watcher disabled)
}
