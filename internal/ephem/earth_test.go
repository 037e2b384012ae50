package ephem

import (
	"testing"
	"time"

	"github.com/signalsfoundry/heliosheet/core"
)

func TestFixedEarthOffset(t *testing.T) {
	got, err := FixedEarth{}.EarthOffset(time.Now())
	if err != nil {
		t.Fatalf("EarthOffset returned error: %v", err)
	}
	if got != core.DefaultEarthOffset {
		t.Errorf("got %+v, want %+v", got, core.DefaultEarthOffset)
	}
}

func TestNewVSOP87EarthMissingData(t *testing.T) {
	if _, err := NewVSOP87Earth(t.TempDir()); err == nil {
		t.Fatal("expected error for directory without VSOP87 series files")
	}
}
