package node

import (
	"strconv"
	"strings"
)

// Phase is one stage of fast catchup. Accounts runs first (snapshot
// ingestion), then Blocks (recent block download).
type Phase string

const (
	PhaseAccounts Phase = "accounts"
	PhaseBlocks   Phase = "blocks"
)

// labels returns the status-line labels whose trailing integers carry the
// phase's progress. The total label doubles as the phase marker.
func (p Phase) labels() (total, processed string) {
	if p == PhaseBlocks {
		return "total blocks", "downloaded blocks"
	}
	return "total accounts", "accounts processed"
}

// Snapshot is a structured read of one status report for one phase.
// Derived, never stored.
type Snapshot struct {
	Present   bool
	Processed uint64
	Total     uint64
}

// Parse extracts a phase's progress counters from the node's free-text
// status output. Anything malformed (marker absent, numeric field missing
// or non-numeric) comes back as a zero Snapshot with Present=false; the
// polling loop must never see an error from here.
func Parse(phase Phase, raw string) Snapshot {
	totalLabel, processedLabel := phase.labels()

	total, ok := intAfter(raw, totalLabel)
	if !ok {
		return Snapshot{}
	}
	processed, ok := intAfter(raw, processedLabel)
	if !ok {
		return Snapshot{}
	}
	return Snapshot{Present: true, Processed: processed, Total: total}
}

// intAfter finds label in raw and parses the first unsigned integer that
// follows it, tolerating a colon and surrounding whitespace.
func intAfter(raw, label string) (uint64, bool) {
	i := strings.Index(raw, label)
	if i < 0 {
		return 0, false
	}
	rest := strings.TrimLeft(raw[i+len(label):], ": \t")

	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseUint(rest[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
