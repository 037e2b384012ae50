package timewindow

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWindow reports a window whose bounds or step cannot be
// sampled.
var ErrInvalidWindow = errors.New("invalid time window")

// Window is a bounded, one-shot query interval: ephemeris sources
// sample it from Start to Stop every Step. It never grows into a
// streaming subscription; callers wanting fresher data build a new
// window.
type Window struct {
	Start time.Time
	Stop  time.Time
	Step  time.Duration
}

// New builds a validated window.
func New(start, stop time.Time, step time.Duration) (Window, error) {
	w := Window{Start: start, Stop: stop, Step: step}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Following returns the usual query shape: span of observations
// sampled every step, starting at epoch.
func Following(epoch time.Time, span, step time.Duration) (Window, error) {
	return New(epoch, epoch.Add(span), step)
}

// Validate checks the window bounds. A zero-length window is allowed
// and samples exactly once.
func (w Window) Validate() error {
	if w.Step <= 0 {
		return fmt.Errorf("%w: step %v", ErrInvalidWindow, w.Step)
	}
	if w.Stop.Before(w.Start) {
		return fmt.Errorf("%w: stop %v before start %v", ErrInvalidWindow, w.Stop.UTC(), w.Start.UTC())
	}
	return nil
}

// Duration returns Stop - Start.
func (w Window) Duration() time.Duration {
	return w.Stop.Sub(w.Start)
}

// Epochs returns the sample instants: Start, Start+Step, ... up to and
// including Stop when it falls on a step boundary.
func (w Window) Epochs() ([]time.Time, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	n := int(w.Duration()/w.Step) + 1
	epochs := make([]time.Time, 0, n)
	for t := w.Start; !t.After(w.Stop); t = t.Add(w.Step) {
		epochs = append(epochs, t)
	}
	return epochs, nil
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.Stop)
}
