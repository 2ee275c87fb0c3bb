package catchup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zpdzap/chainbox/internal/config"
	"github.com/zpdzap/chainbox/internal/node"
	"github.com/zpdzap/chainbox/internal/ui"
)

// ErrUnavailable reports that the network has no catchpoint endpoint.
// Callers treat it as a soft skip, not a failure.
var ErrUnavailable = errors.New("fast catchup is not available for this network")

// pollInterval is how long the runner sleeps between status queries.
const pollInterval = 100 * time.Millisecond

// startGracePolls bounds how long a phase may sit in NotStarted before the
// runner concludes it finished before the first poll could see it.
const startGracePolls = 6000 // 10 minutes at the default interval

// Runner sequences the two catchup phases against a running node. The
// clock, status source, and trigger are injectable so tests can script a
// whole run without real delays.
type Runner struct {
	Network config.Network

	Status func() (string, error)
	Start  func(catchpoint string) error
	Fetch  func(url string) (string, error)

	Sleep    func(time.Duration)
	Interval time.Duration
	Grace    int
	Out      io.Writer
}

// NewRunner builds a Runner wired to the real node client, clock, and
// catchpoint endpoint.
func NewRunner(network config.Network, client *node.Client) *Runner {
	return &Runner{
		Network:  network,
		Status:   client.Status,
		Start:    client.CatchupStart,
		Fetch:    node.FetchCatchpoint,
		Sleep:    time.Sleep,
		Interval: pollInterval,
		Grace:    startGracePolls,
		Out:      os.Stdout,
	}
}

// Run fetches the network's catchpoint, triggers catchup, and tracks the
// accounts phase then the blocks phase to completion. Trigger failures are
// fatal to the run only; the node keeps running without synchronization.
func (r *Runner) Run() error {
	url := r.Network.CatchpointURL()
	if url == "" {
		return ErrUnavailable
	}

	catchpoint, err := r.Fetch(url)
	if err != nil {
		return fmt.Errorf("fast catchup: %w", err)
	}
	if err := r.Start(catchpoint); err != nil {
		return fmt.Errorf("fast catchup: %w", err)
	}

	for _, phase := range []node.Phase{node.PhaseAccounts, node.PhaseBlocks} {
		r.trackPhase(phase)
	}
	return nil
}

// trackPhase polls status snapshots through a PhaseTracker until the phase
// completes, rendering progress in place. Status errors and unparseable
// output are absorbed: both read as "phase not visible yet".
func (r *Runner) trackPhase(phase node.Phase) {
	tracker := NewPhaseTracker(phase)
	renderer := ui.NewProgressRenderer(r.Out)
	idle := 0

	for {
		raw, _ := r.Status()
		state, event := tracker.Observe(node.Parse(phase, raw))

		if event {
			processed, total := tracker.Progress()
			renderer.Render(string(phase), processed, total)
		}
		if state == Complete {
			renderer.Finish()
			return
		}

		if state == NotStarted {
			idle++
			if idle >= r.Grace {
				// The phase never surfaced: it ran to completion
				// between triggering and our first sighting.
				renderer.Finish()
				return
			}
		}
		r.Sleep(r.Interval)
	}
}
