// Package shutdown coordinates graceful process termination: it tracks
// in-flight work, listens for SIGINT/SIGTERM, and runs registered cleanup
// handlers in reverse registration order once draining completes or a
// drain timeout expires.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"akamai-mcp-gateway/pkg/logging"
)

type State string

const (
	StateRunning  State = "running"
	StateDraining State = "draining"
	StateClosed   State = "closed"
)

// Handler is a cleanup function run during shutdown. It should return
// promptly; Coordinator does not apply a separate per-handler timeout.
type Handler func(ctx context.Context) error

// Coordinator tracks in-flight request count and a set of registered
// cleanup handlers, moving Running -> Draining -> Closed on a signal or an
// explicit Shutdown call.
type Coordinator struct {
	mu          sync.Mutex
	state       State
	inFlight    int
	drained     chan struct{}
	drainedOnce sync.Once
	handlers    []Handler
	drainWindow time.Duration
}

func New(drainWindow time.Duration) *Coordinator {
	if drainWindow <= 0 {
		drainWindow = 30 * time.Second
	}
	return &Coordinator{state: StateRunning, drained: make(chan struct{}), drainWindow: drainWindow}
}

// Register adds a cleanup handler, run in reverse registration order
// during Shutdown (last registered, first run — mirroring defer).
func (c *Coordinator) Register(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

// Begin marks the start of one unit of in-flight work. It returns false if
// the coordinator is already draining or closed, in which case the caller
// must reject the work instead of starting it.
func (c *Coordinator) Begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return false
	}
	c.inFlight++
	return true
}

// End marks completion of one unit of in-flight work, unblocking Shutdown
// if it is waiting for drain to complete.
func (c *Coordinator) End() {
	c.mu.Lock()
	c.inFlight--
	drained := c.state == StateDraining && c.inFlight <= 0
	c.mu.Unlock()

	if drained {
		c.signalDrained()
	}
}

func (c *Coordinator) signalDrained() {
	c.drainedOnce.Do(func() { close(c.drained) })
}

// State returns the coordinator's current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// WaitForSignal blocks until SIGINT or SIGTERM is received, then runs
// Shutdown and returns the process exit code to use (0 on clean shutdown,
// 1 if the drain window expired with work still outstanding or a cleanup
// handler failed).
func (c *Coordinator) WaitForSignal(ctx context.Context) int {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logging.InfoFields("Shutdown", "received signal, draining", map[string]interface{}{"signal": sig.String()})
	case <-ctx.Done():
		logging.Info("Shutdown", "context cancelled, draining")
	}

	return c.Shutdown(context.Background())
}

// Shutdown transitions Running -> Draining, waits for in-flight work to
// finish (bounded by drainWindow), then runs every registered handler in
// reverse order and transitions to Closed. It returns 0 when the drain was
// clean and every handler succeeded, 1 if the drain window expired first or
// any handler returned an error.
func (c *Coordinator) Shutdown(ctx context.Context) int {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return 0
	}
	c.state = StateDraining
	alreadyDrained := c.inFlight <= 0
	c.mu.Unlock()

	logging.Audit(logging.AuditEvent{
		Action:  "shutdown_phase_transition",
		Outcome: "draining",
		Details: string(StateRunning) + " -> " + string(StateDraining),
	})

	if alreadyDrained {
		c.signalDrained()
	}

	exitCode := 0
	select {
	case <-c.drained:
	case <-time.After(c.drainWindow):
		logging.Warn("Shutdown", "drain window expired with requests still in flight")
		exitCode = 1
	}

	c.mu.Lock()
	handlers := make([]Handler, len(c.handlers))
	copy(handlers, c.handlers)
	c.state = StateClosed
	c.mu.Unlock()

	for i := len(handlers) - 1; i >= 0; i-- {
		if err := handlers[i](ctx); err != nil {
			logging.ErrorFields("Shutdown", err, "cleanup handler failed", nil)
			exitCode = 1
		}
	}

	logging.Audit(logging.AuditEvent{
		Action:  "shutdown_phase_transition",
		Outcome: "closed",
		Details: string(StateDraining) + " -> " + string(StateClosed),
	})

	return exitCode
}
