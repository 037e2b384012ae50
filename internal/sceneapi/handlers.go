package sceneapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/heliosheet/core"
	"github.com/signalsfoundry/heliosheet/internal/ephem"
	"github.com/signalsfoundry/heliosheet/internal/logging"
	"github.com/signalsfoundry/heliosheet/internal/observability"
	"github.com/signalsfoundry/heliosheet/internal/render"
	"github.com/signalsfoundry/heliosheet/kb"
	"github.com/signalsfoundry/heliosheet/model"
)

// errBadQuery marks request parameters that fail to parse.
var errBadQuery = errors.New("bad query parameter")

// Server exposes a Service over HTTP.
type Server struct {
	svc     *Service
	metrics *observability.SceneCollector
	log     logging.Logger
}

// NewServer wires the HTTP layer. Metrics and logger may be nil.
func NewServer(svc *Service, metrics *observability.SceneCollector, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{svc: svc, metrics: metrics, log: log}
}

// Routes builds the handler tree with request-id, metrics, and span
// middleware applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /api/v1/scene", s.instrument("scene", s.handleScene))
	mux.Handle("GET /api/v1/surface", s.instrument("surface", s.handleSurface))
	mux.Handle("GET /api/v1/positions", s.instrument("positions", s.handlePositions))
	mux.Handle("GET /api/v1/spacecraft", s.instrument("spacecraft", s.handleSpacecraft))
	mux.Handle("GET /healthz", s.instrument("healthz", s.handleHealthz))
	return RequestIDMiddleware(s.log, mux)
}

func (s *Server) instrument(name string, h http.HandlerFunc) http.Handler {
	return s.metrics.Middleware(name, TracingHandler(name, h))
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	req, err := parseSceneRequest(r, s.svc.Defaults())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	scene, err := s.svc.Scene(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, render.BuildSceneDocument(scene))
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	req, err := parseSceneRequest(r, s.svc.Defaults())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req.ModelName = ModelNone

	scene, err := s.svc.Scene(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, render.BuildSceneDocument(scene))
}

// surfaceResponse carries the full surface grids, azimuth-major.
type surfaceResponse struct {
	Model      string               `json:"model"`
	Parameters render.ParametersDoc `json:"parameters"`
	X          [][]float64          `json:"x_au"`
	Y          [][]float64          `json:"y_au"`
	Z          [][]float64          `json:"z_au"`
	Field      [][]float64          `json:"field"`
}

func (s *Server) handleSurface(w http.ResponseWriter, r *http.Request) {
	params, err := parseParameters(r, s.svc.Defaults())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	surface, name, err := s.svc.Surface(r.Context(), r.URL.Query().Get("model"), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, surfaceResponse{
		Model:      name,
		Parameters: render.NewParametersDoc(params),
		X:          render.GridRows(surface.X),
		Y:          render.GridRows(surface.Y),
		Z:          render.GridRows(surface.Z),
		Field:      render.GridRows(surface.Field),
	})
}

// spacecraftInfo is one catalog entry on the wire.
type spacecraftInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Source string `json:"source"`
}

func (s *Server) handleSpacecraft(w http.ResponseWriter, r *http.Request) {
	defs := s.svc.store.ListSpacecraft()
	out := make([]spacecraftInfo, 0, len(defs))
	for _, def := range defs {
		out = append(out, spacecraftInfo{ID: def.ID, Name: def.Name, Source: def.Source.String()})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseSceneRequest(r *http.Request, defaults model.SpiralParameters) (SceneRequest, error) {
	q := r.URL.Query()
	req := SceneRequest{ModelName: q.Get("model")}

	if raw := q.Get("epoch"); raw != "" {
		epoch, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return SceneRequest{}, fmt.Errorf("%w: epoch %q", errBadQuery, raw)
		}
		req.Epoch = epoch
	}
	if raw := q.Get("spacecraft"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.SpacecraftIDs = append(req.SpacecraftIDs, id)
			}
		}
	}
	if raw := q.Get("arc"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return SceneRequest{}, fmt.Errorf("%w: arc %q", errBadQuery, raw)
		}
		req.IncludeArcs = include
	}
	if raw := q.Get("arc_span"); raw != "" {
		span, err := time.ParseDuration(raw)
		if err != nil || span <= 0 {
			return SceneRequest{}, fmt.Errorf("%w: arc_span %q", errBadQuery, raw)
		}
		req.ArcSpan = span
	}

	params, err := parseParameters(r, defaults)
	if err != nil {
		return SceneRequest{}, err
	}
	req.Parameters = params
	return req, nil
}

// parseParameters starts from the service defaults and applies any
// query overrides.
func parseParameters(r *http.Request, defaults model.SpiralParameters) (model.SpiralParameters, error) {
	q := r.URL.Query()
	params := defaults

	floatParams := []struct {
		key string
		dst *float64
	}{
		{"tilt_deg", &params.TiltDeg},
		{"amplitude_deg", &params.AmplitudeDeg},
		{"rotation_period_days", &params.RotationPeriodDays},
		{"wind_km_s", &params.WindSpeedKmS},
		{"r_min_au", &params.RMinAU},
		{"r_max_au", &params.RMaxAU},
	}
	for _, p := range floatParams {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.SpiralParameters{}, fmt.Errorf("%w: %s %q", errBadQuery, p.key, raw)
		}
		*p.dst = v
	}

	intParams := []struct {
		key string
		dst *int
	}{
		{"n_phi", &params.NPhi},
		{"n_r", &params.NR},
	}
	for _, p := range intParams {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return model.SpiralParameters{}, fmt.Errorf("%w: %s %q", errBadQuery, p.key, raw)
		}
		*p.dst = v
	}

	return params, nil
}

// toHTTPStatus maps pipeline errors onto HTTP status codes.
func toHTTPStatus(err error) int {
	switch {
	case errors.Is(err, errBadQuery),
		errors.Is(err, core.ErrInvalidParameter),
		errors.Is(err, core.ErrUnsupportedFrame),
		errors.Is(err, core.ErrUnsupportedUnit):
		return http.StatusBadRequest

	case errors.Is(err, kb.ErrUnknownSpacecraft):
		return http.StatusNotFound

	case errors.Is(err, ephem.ErrUnavailable),
		errors.Is(err, ephem.ErrNoData),
		errors.Is(err, ephem.ErrUpstream):
		return http.StatusBadGateway

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := toHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed",
			logging.String("path", r.URL.Path), logging.Err(err))
	} else {
		s.log.Warn(r.Context(), "request rejected",
			logging.String("path", r.URL.Path), logging.Err(err))
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error(context.Background(), "failed to encode response", logging.Err(err))
	}
}
