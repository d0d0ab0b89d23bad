// Package runtime wires the chat client together: it allocates the channels
// between the components, builds the coordinator and the transport, and runs
// them with the interface under a single supervisor.
// It holds no business logic.
package runtime

import (
	"chatapp/contract"
	"chatapp/domain/event"
	"chatapp/runtime/workers"
	"chatapp/wire"
	"context"
	"log/slog"
	"net"
	"time"
)

type Config struct {
	Identity       string
	Remote         net.Addr
	Codec          wire.Codec
	CommandTimeout time.Duration
	ReadTimeout    time.Duration
	BufferSize     int
}

type Engine struct {
	log         *slog.Logger
	supervisor  contract.ISupervisor
	channels    event.Channels
	coordinator *workers.CoordinatorWorker
	transport   *workers.TransportWorker
}

// NewEngine takes ownership of conn: it is closed when the run ends.
func NewEngine(log *slog.Logger, supervisor contract.ISupervisor, conn contract.PacketConn, config Config) *Engine {
	channels := event.NewChannels(config.BufferSize)
	return &Engine{
		log:         log,
		supervisor:  supervisor,
		channels:    channels,
		coordinator: workers.NewCoordinatorWorker(log, config.Identity, channels),
		transport: workers.NewTransportWorker(
			log, conn, config.Remote, config.Codec, channels,
			config.CommandTimeout, config.ReadTimeout,
		),
	}
}

// Channels exposes the channels the interface has to be built with.
func (e *Engine) Channels() event.Channels {
	return e.channels
}

// Run starts the transport, the coordinator and the given interface, and
// waits for all three to return.
func (e *Engine) Run(ctx context.Context, frontend contract.Worker) error {
	e.log.Info("Engine starting", "frontend", contract.GetWorkerName(frontend))
	err := e.supervisor.Add(e.transport, e.coordinator, frontend).Run(ctx)
	e.log.Info("Engine stopped", "messages", len(e.coordinator.Conversation()))
	return err
}
