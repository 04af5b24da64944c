package agent

import (
	"github.com/cespare/xxhash/v2"
)

// ringSize is the fixed loop-detection window of spec §4.F.4.
const ringSize = 10

// loopDetector is a fixed-size ring of call-pattern hashes, grounded on
// the teacher's tool_loop_detection.go shape but retargeted onto
// xxhash (spec.md's explicit "stable 64-bit non-cryptographic hash"
// requirement, §9) instead of a hand-rolled hash.
type loopDetector struct {
	ring  [ringSize]uint64
	count int
}

func newLoopDetector() *loopDetector { return &loopDetector{} }

// hashCall computes H(name || 0x7C || arguments_json), per spec §4.F.3.
func hashCall(name, argumentsJSON string) uint64 {
	h := xxhash.New()
	h.WriteString(name)
	h.Write([]byte{0x7C})
	h.WriteString(argumentsJSON)
	return h.Sum64()
}

// Record writes one call's hash into the ring at count mod ringSize.
func (d *loopDetector) Record(name, argumentsJSON string) {
	d.ring[d.count%ringSize] = hashCall(name, argumentsJSON)
	d.count++
}

// Detect tests pattern lengths 1, 2, 3 in that order against the
// ring's most recent window, per spec §4.F.4.
func (d *loopDetector) Detect() bool {
	window := d.count
	if window > ringSize {
		window = ringSize
	}
	if window < 4 {
		return false
	}

	recent := d.recentWindow(window)
	for _, l := range []int{1, 2, 3} {
		if window%l != 0 || window/l < 2 {
			continue
		}
		if allChunksEqual(recent, l) {
			return true
		}
	}
	return false
}

// recentWindow returns the last `window` entries in chronological order.
func (d *loopDetector) recentWindow(window int) []uint64 {
	out := make([]uint64, window)
	start := d.count - window
	for i := 0; i < window; i++ {
		out[i] = d.ring[(start+i)%ringSize]
	}
	return out
}

func allChunksEqual(entries []uint64, chunkLen int) bool {
	first := entries[:chunkLen]
	for i := chunkLen; i < len(entries); i += chunkLen {
		chunk := entries[i : i+chunkLen]
		for j := range chunk {
			if chunk[j] != first[j] {
				return false
			}
		}
	}
	return true
}
