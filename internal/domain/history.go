package domain

// Default rolling history capacities.
const (
	DefaultPriceHistorySize  = 60
	DefaultVolumeHistorySize = 24
)

// RollingHistory is a bounded FIFO of scalar samples in ascending
// chronological order. Oldest entries are evicted on overflow.
// It is an indicator input, never an authoritative price source.
type RollingHistory struct {
	Capacity int       `json:"capacity"`
	Samples  []float64 `json:"samples"`
}

// NewRollingHistory creates an empty history with the given capacity.
// A non-positive capacity falls back to 1.
func NewRollingHistory(capacity int) *RollingHistory {
	if capacity <= 0 {
		capacity = 1
	}
	return &RollingHistory{Capacity: capacity}
}

// Push appends a sample, evicting the oldest when full.
func (h *RollingHistory) Push(v float64) {
	if h.Capacity <= 0 {
		h.Capacity = 1
	}
	h.Samples = append(h.Samples, v)
	if len(h.Samples) > h.Capacity {
		h.Samples = h.Samples[len(h.Samples)-h.Capacity:]
	}
}

// Len returns the number of stored samples.
func (h *RollingHistory) Len() int {
	return len(h.Samples)
}

// Values returns a copy of the samples, oldest first.
func (h *RollingHistory) Values() []float64 {
	out := make([]float64, len(h.Samples))
	copy(out, h.Samples)
	return out
}
