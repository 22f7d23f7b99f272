package progress

// Phased maps a fixed number of sequential operations onto one overall
// progress range of the wrapped notifier. Each Begin/End pair is one phase;
// the wrapped notifier sees a single Begin before the first phase and a
// single End after the last one.
type Phased struct {
	inner  Notifier
	phases int
	phase  int
	began  bool
}

// NewPhased creates a phased notifier. phases below 1 are treated as 1.
func NewPhased(inner Notifier, phases int) *Phased {
	if inner == nil {
		inner = Nop{}
	}
	if phases < 1 {
		phases = 1
	}
	return &Phased{inner: inner, phases: phases}
}

// Begin starts the current phase
func (p *Phased) Begin() {
	if !p.began {
		p.began = true
		p.inner.Begin()
	}
}

// Report forwards the fraction of the current phase scaled into the overall range
func (p *Phased) Report(fraction float64) {
	if p.phase >= p.phases {
		return
	}
	p.inner.Report((float64(p.phase) + clamp(fraction)) / float64(p.phases))
}

// End closes the current phase
func (p *Phased) End() {
	if p.phase >= p.phases {
		return
	}
	p.phase++
	p.inner.Report(float64(p.phase) / float64(p.phases))
	if p.phase == p.phases {
		p.inner.End()
	}
}

// Phase returns the zero-based index of the current phase
func (p *Phased) Phase() int {
	return p.phase
}
