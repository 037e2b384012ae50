package sceneapi

import (
	"context"
	"testing"
	"time"

	"github.com/signalsfoundry/heliosheet/core"
	"github.com/signalsfoundry/heliosheet/internal/ephem"
	"github.com/signalsfoundry/heliosheet/kb"
	"github.com/signalsfoundry/heliosheet/model"
	"github.com/signalsfoundry/heliosheet/timewindow"
)

// stubSource answers every fetch with a fixed heliocentric point and
// records the arc windows it was asked for.
type stubSource struct {
	windows []timewindow.Window
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Available(def model.SpacecraftDefinition) bool { return true }

func (s *stubSource) Fetch(ctx context.Context, def model.SpacecraftDefinition, epoch time.Time) (model.Position, error) {
	return model.Position{Vec: model.Vec3{X: 0.3}, Frame: def.Frame, Unit: def.Unit, Epoch: epoch}, nil
}

func (s *stubSource) FetchArc(ctx context.Context, def model.SpacecraftDefinition, w timewindow.Window) ([]model.Position, error) {
	s.windows = append(s.windows, w)
	pos, _ := s.Fetch(ctx, def, w.Start)
	return []model.Position{pos}, nil
}

func newStubService(t *testing.T) (*Service, *stubSource) {
	t.Helper()
	store := kb.NewStore()
	err := store.AddSpacecraft(model.SpacecraftDefinition{
		ID:     "probe",
		Source: model.EphemerisSourceHorizons,
		Frame:  model.FrameHeliocentric,
		Unit:   model.UnitAU,
	})
	if err != nil {
		t.Fatalf("AddSpacecraft: %v", err)
	}
	src := &stubSource{}
	svc := NewService(ServiceConfig{
		Store:    store,
		Resolver: ephem.NewResolver(nil, nil, src),
	})
	return svc, src
}

func TestServiceSceneDefaults(t *testing.T) {
	svc, _ := newStubService(t)

	scene, err := svc.Scene(context.Background(), SceneRequest{})
	if err != nil {
		t.Fatalf("Scene: %v", err)
	}
	if scene.Epoch.IsZero() {
		t.Error("zero request epoch should default to now")
	}
	if scene.ModelName != "parker" {
		t.Errorf("model = %q, want the production default", scene.ModelName)
	}
	if scene.Surface == nil {
		t.Error("default scene should carry a surface")
	}
	if scene.Parameters != model.DefaultSpiralParameters() {
		t.Errorf("parameters = %+v, want stock defaults", scene.Parameters)
	}
	if len(scene.Spacecraft) != 1 || scene.Spacecraft[0].ID != "probe" {
		t.Fatalf("spacecraft = %+v, want the one catalog entry", scene.Spacecraft)
	}
}

func TestServiceSceneModelNone(t *testing.T) {
	svc, _ := newStubService(t)

	scene, err := svc.Scene(context.Background(), SceneRequest{ModelName: ModelNone})
	if err != nil {
		t.Fatalf("Scene: %v", err)
	}
	if scene.Surface != nil {
		t.Error("ModelNone should skip the sheet")
	}
}

func TestServiceArcWindow(t *testing.T) {
	svc, src := newStubService(t)

	epoch := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Scene(context.Background(), SceneRequest{
		Epoch:       epoch,
		IncludeArcs: true,
	})
	if err != nil {
		t.Fatalf("Scene: %v", err)
	}
	if len(src.windows) != 1 {
		t.Fatalf("got %d arc windows, want 1", len(src.windows))
	}
	w := src.windows[0]
	if !w.Stop.Equal(epoch) {
		t.Errorf("arc stops at %v, want the scene epoch", w.Stop)
	}
	if got := w.Stop.Sub(w.Start); got != DefaultArcSpan {
		t.Errorf("arc span = %v, want %v", got, DefaultArcSpan)
	}
	if w.Step <= 0 {
		t.Errorf("arc step = %v, want positive", w.Step)
	}
}

func TestServiceSurfaceNamesModel(t *testing.T) {
	svc, _ := newStubService(t)

	_, name, err := svc.Surface(context.Background(), "", model.DefaultSpiralParameters())
	if err != nil {
		t.Fatalf("Surface: %v", err)
	}
	if name != "parker" {
		t.Errorf("name = %q, want parker", name)
	}

	_, _, err = svc.Surface(context.Background(), "moebius", model.DefaultSpiralParameters())
	if err == nil {
		t.Fatal("unknown model should fail")
	}
	if got := svc.Defaults(); got != model.DefaultSpiralParameters() {
		t.Errorf("Defaults() = %+v, want stock defaults", got)
	}
}
