package virtuallink

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// workerTickTimeout bounds each RunProcessingThread receive wait so the
// worker goroutine can observe ctx cancellation, matching
// MediumEndpoint.RunProcessingThread's own bounded-wait worker.
const workerTickTimeout = 200 * time.Millisecond

// Driver is the periodic processor that drives a RadioCore: on each step
// it checks the ACK timeout and, if the radio is receiving, polls the
// medium for an arrived frame. It offers two presentation modes — a
// cooperative tick the caller invokes from its own main loop, or a
// spawned worker goroutine — matching MediumEndpoint's own two delivery
// modes.
type Driver struct {
	Radio *RadioCore
}

// NewDriver wraps radio in a Driver.
func NewDriver(radio *RadioCore) *Driver {
	return &Driver{Radio: radio}
}

// ProcessingLoop performs one cooperative driver step. Call repeatedly
// from the host's main loop.
func (d *Driver) ProcessingLoop() {
	d.Radio.Tick()
}

// RunProcessingThread spawns one worker goroutine, via errgroup, that loops
// forever doing an ACK-timeout check followed by a blocking medium read:
// the goroutine sleeps in the kernel until a frame arrives or
// workerTickTimeout elapses, rather than polling on a fast timer. The bound
// only exists so the loop can observe ctx cancellation and exit cleanly;
// every wait still blocks for the full window whenever the radio is idle.
func (d *Driver) RunProcessingThread(ctx context.Context) *errgroup.Group {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			d.Radio.TickBlocking(workerTickTimeout)
		}
	})
	return g
}
