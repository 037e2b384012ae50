package timewindow

import (
	"errors"
	"testing"
	"time"
)

var anchor = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

func TestNewValidatesBounds(t *testing.T) {
	if _, err := New(anchor, anchor.Add(-time.Second), time.Minute); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("stop before start: err = %v, want ErrInvalidWindow", err)
	}
	if _, err := New(anchor, anchor.Add(time.Hour), 0); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("zero step: err = %v, want ErrInvalidWindow", err)
	}
	if _, err := New(anchor, anchor.Add(time.Hour), -time.Minute); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("negative step: err = %v, want ErrInvalidWindow", err)
	}
	if _, err := New(anchor, anchor, time.Minute); err != nil {
		t.Fatalf("zero-length window: %v", err)
	}
}

func TestEpochsSampling(t *testing.T) {
	w, err := Following(anchor, time.Hour, 15*time.Minute)
	if err != nil {
		t.Fatalf("Following: %v", err)
	}

	epochs, err := w.Epochs()
	if err != nil {
		t.Fatalf("Epochs: %v", err)
	}
	if len(epochs) != 5 {
		t.Fatalf("len(epochs) = %d, want 5", len(epochs))
	}
	if !epochs[0].Equal(anchor) {
		t.Errorf("first epoch = %v, want start", epochs[0])
	}
	if !epochs[4].Equal(anchor.Add(time.Hour)) {
		t.Errorf("last epoch = %v, want stop", epochs[4])
	}
	for i := 1; i < len(epochs); i++ {
		if got := epochs[i].Sub(epochs[i-1]); got != 15*time.Minute {
			t.Errorf("gap %d = %v, want 15m", i, got)
		}
	}
}

func TestEpochsStopOffStep(t *testing.T) {
	// 50 minutes sampled every 15: the stop instant is not a sample.
	w, err := Following(anchor, 50*time.Minute, 15*time.Minute)
	if err != nil {
		t.Fatalf("Following: %v", err)
	}
	epochs, err := w.Epochs()
	if err != nil {
		t.Fatalf("Epochs: %v", err)
	}
	if len(epochs) != 4 {
		t.Fatalf("len(epochs) = %d, want 4", len(epochs))
	}
	if last := epochs[3]; !last.Equal(anchor.Add(45 * time.Minute)) {
		t.Errorf("last epoch = %v, want start+45m", last)
	}
}

func TestEpochsZeroLength(t *testing.T) {
	w, err := New(anchor, anchor, time.Minute)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	epochs, err := w.Epochs()
	if err != nil {
		t.Fatalf("Epochs: %v", err)
	}
	if len(epochs) != 1 || !epochs[0].Equal(anchor) {
		t.Fatalf("epochs = %v, want exactly the start", epochs)
	}
}

func TestContains(t *testing.T) {
	w, err := Following(anchor, time.Hour, time.Minute)
	if err != nil {
		t.Fatalf("Following: %v", err)
	}
	for _, tc := range []struct {
		t    time.Time
		want bool
	}{
		{anchor, true},
		{anchor.Add(time.Hour), true},
		{anchor.Add(30 * time.Minute), true},
		{anchor.Add(-time.Nanosecond), false},
		{anchor.Add(time.Hour + time.Nanosecond), false},
	} {
		if got := w.Contains(tc.t); got != tc.want {
			t.Errorf("Contains(%v) = %v, want %v", tc.t, got, tc.want)
		}
	}
}

func TestDuration(t *testing.T) {
	w, err := Following(anchor, 90*time.Minute, time.Minute)
	if err != nil {
		t.Fatalf("Following: %v", err)
	}
	if got := w.Duration(); got != 90*time.Minute {
		t.Errorf("Duration = %v, want 90m", got)
	}
}
