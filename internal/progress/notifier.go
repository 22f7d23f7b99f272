// Package progress defines the notifier that codecs report coarse progress to
// during long encode and decode operations, plus a few ready-made notifiers.
package progress

// Notifier receives progress updates for one operation at a time.
// Begin and End bracket an operation; Report receives a fraction in [0, 1].
// Implementations decide how often to act on reports.
type Notifier interface {
	Begin()
	Report(fraction float64)
	End()
}

// Nop ignores every update. It is the default notifier of a codec.
type Nop struct{}

func (Nop) Begin() {}
func (Nop) Report(float64) {}
func (Nop) End() {}

// Func adapts a function to a Notifier that only cares about Report.
type Func func(fraction float64)

func (f Func) Begin() { f(0) }
func (f Func) Report(fraction float64) { f(clamp(fraction)) }
func (f Func) End() { f(1) }

func clamp(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
