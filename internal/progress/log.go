package progress

import (
	"log"
)

// LogNotifier writes progress to a logger each time another step of the
// operation has completed (every 10% by default).
type LogNotifier struct {
	logger *log.Logger
	label  string
	step   float64
	next   float64
}

// NewLogNotifier creates a notifier logging under label. A nil logger
// uses log.Default(); a step outside (0, 1] uses 0.1.
func NewLogNotifier(logger *log.Logger, label string, step float64) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	if step <= 0 || step > 1 {
		step = 0.1
	}
	return &LogNotifier{logger: logger, label: label, step: step}
}

// Begin logs the start of an operation
func (l *LogNotifier) Begin() {
	l.next = l.step
	l.logger.Printf("%s: started", l.label)
}

// Report logs once per crossed step
func (l *LogNotifier) Report(fraction float64) {
	fraction = clamp(fraction)
	if fraction < l.next {
		return
	}
	l.logger.Printf("%s: %.0f%%", l.label, fraction*100)
	for l.next <= fraction {
		l.next += l.step
	}
}

// End logs completion
func (l *LogNotifier) End() {
	l.logger.Printf("%s: done", l.label)
}
