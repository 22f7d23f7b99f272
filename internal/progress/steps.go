package progress

// minDelta is the smallest fraction change Steps forwards to its notifier.
const minDelta = 0.01

// Steps counts processed items against a known total and reports the
// completed fraction to a notifier, skipping updates smaller than 1%.
type Steps struct {
	notifier Notifier
	total    int
	done     int
	last     float64
}

// NewSteps creates a counter for total items
func NewSteps(n Notifier, total int) *Steps {
	if n == nil {
		n = Nop{}
	}
	return &Steps{notifier: n, total: total}
}

// Tick marks one item as processed
func (s *Steps) Tick() {
	if s.total <= 0 {
		return
	}
	s.done++
	f := float64(s.done) / float64(s.total)
	if f-s.last >= minDelta || s.done == s.total {
		s.last = f
		s.notifier.Report(f)
	}
}

// Done returns the number of processed items
func (s *Steps) Done() int {
	return s.done
}
