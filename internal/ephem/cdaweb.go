package ephem

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/signalsfoundry/heliosheet/internal/logging"
	"github.com/signalsfoundry/heliosheet/model"
	"github.com/signalsfoundry/heliosheet/timewindow"
)

// DefaultCDAWebURL is the public CDAS REST endpoint.
const DefaultCDAWebURL = "https://cdaweb.gsfc.nasa.gov/WS/cdasr/1"

// cdawebDefaultEpoch is the historical query window start used when a
// caller passes a zero epoch.
var cdawebDefaultEpoch = time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

const (
	cdawebTimeLayout = "20060102T150405Z"
	cdawebEpochKey   = "Epoch"
	cdawebWindow     = time.Hour
)

// CDAWebClient reads orbit variables from CDAWeb datasets through the
// CDAS REST service. Data requests are two-step: the service answers
// with a FileDescription naming a generated JSON file, which is then
// downloaded and parsed.
type CDAWebClient struct {
	baseURL string
	httpc   *http.Client
	log     logging.Logger
}

// NewCDAWebClient builds a client against baseURL (DefaultCDAWebURL
// when empty). Logger may be nil.
func NewCDAWebClient(baseURL string, timeout time.Duration, log logging.Logger) *CDAWebClient {
	if baseURL == "" {
		baseURL = DefaultCDAWebURL
	}
	if log == nil {
		log = logging.Noop()
	}
	return &CDAWebClient{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Name implements Source.
func (c *CDAWebClient) Name() string { return "cdaweb" }

// Available implements Source.
func (c *CDAWebClient) Available(def model.SpacecraftDefinition) bool {
	return def.Source == model.EphemerisSourceCDAWeb &&
		def.Dataset != "" &&
		def.Variable != ""
}

// Fetch implements Source. It queries a one-hour window starting at
// epoch and keeps the earliest record, matching how the tool has
// always sampled orbit datasets.
func (c *CDAWebClient) Fetch(ctx context.Context, def model.SpacecraftDefinition, epoch time.Time) (model.Position, error) {
	if !c.Available(def) {
		return model.Position{}, fmt.Errorf("%w: %q via cdaweb", ErrUnavailable, def.ID)
	}
	if epoch.IsZero() {
		epoch = cdawebDefaultEpoch
	}
	epoch = epoch.UTC()

	recs, err := c.records(ctx, def, epoch, epoch.Add(cdawebWindow))
	if err != nil {
		return model.Position{}, err
	}
	rec := recs[0]
	return model.Position{
		Vec:   rec.vec,
		Frame: def.Frame,
		Unit:  def.Unit,
		Epoch: rec.epoch,
	}, nil
}

// FetchArc implements Source. Records come back at the dataset's
// native cadence; the window step is honored by keeping only records
// at least a step apart.
func (c *CDAWebClient) FetchArc(ctx context.Context, def model.SpacecraftDefinition, w timewindow.Window) ([]model.Position, error) {
	if !c.Available(def) {
		return nil, fmt.Errorf("%w: %q via cdaweb", ErrUnavailable, def.ID)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	recs, err := c.records(ctx, def, w.Start.UTC(), w.Stop.UTC())
	if err != nil {
		return nil, err
	}

	// CDAS serves whole-file granularity, so records can stray past
	// the requested range.
	var (
		arc  []model.Position
		last time.Time
	)
	for _, rec := range recs {
		if !w.Contains(rec.epoch) {
			continue
		}
		if !last.IsZero() && rec.epoch.Sub(last) < w.Step {
			continue
		}
		arc = append(arc, model.Position{
			Vec:   rec.vec,
			Frame: def.Frame,
			Unit:  def.Unit,
			Epoch: rec.epoch,
		})
		last = rec.epoch
	}
	return arc, nil
}

// orbitRecord is one timestamped sample of an orbit variable.
type orbitRecord struct {
	epoch time.Time
	vec   model.Vec3
}

func (c *CDAWebClient) records(ctx context.Context, def model.SpacecraftDefinition, start, stop time.Time) ([]orbitRecord, error) {
	dataURL := fmt.Sprintf("%s/dataviews/sp_phys/datasets/%s/data/%s,%s/%s?format=json",
		c.baseURL,
		url.PathEscape(def.Dataset),
		start.Format(cdawebTimeLayout),
		stop.Format(cdawebTimeLayout),
		url.PathEscape(def.Variable),
	)

	var desc struct {
		FileDescription []struct {
			Name     string `json:"Name"`
			MimeType string `json:"MimeType"`
		} `json:"FileDescription"`
	}
	if err := c.getJSON(ctx, dataURL, &desc); err != nil {
		return nil, err
	}
	if len(desc.FileDescription) == 0 {
		return nil, fmt.Errorf("%w: cdaweb returned no files for %s", ErrNoData, def.Dataset)
	}

	var rows []map[string]json.RawMessage
	if err := c.getJSON(ctx, desc.FileDescription[0].Name, &rows); err != nil {
		return nil, err
	}

	recs := make([]orbitRecord, 0, len(rows))
	for _, row := range rows {
		rec, ok := parseOrbitRow(row, def.Variable)
		if !ok {
			continue
		}
		recs = append(recs, rec)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: no %s records in window", ErrNoData, def.Variable)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].epoch.Before(recs[j].epoch) })
	return recs, nil
}

func (c *CDAWebClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("cdaweb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: cdaweb query: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: cdaweb status %d for %s", ErrUpstream, resp.StatusCode, rawURL)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: cdaweb decode: %w", ErrUpstream, err)
	}
	return nil
}

// parseOrbitRow reads one record of a CDAS JSON data file: an object
// keyed by variable name, with an RFC 3339 Epoch and a three-component
// position array.
func parseOrbitRow(row map[string]json.RawMessage, variable string) (orbitRecord, bool) {
	rawEpoch, ok := row[cdawebEpochKey]
	if !ok {
		return orbitRecord{}, false
	}
	var epochStr string
	if err := json.Unmarshal(rawEpoch, &epochStr); err != nil {
		return orbitRecord{}, false
	}
	epoch, err := time.Parse(time.RFC3339, epochStr)
	if err != nil {
		return orbitRecord{}, false
	}

	rawVec, ok := row[variable]
	if !ok {
		return orbitRecord{}, false
	}
	var comps []float64
	if err := json.Unmarshal(rawVec, &comps); err != nil || len(comps) < 3 {
		return orbitRecord{}, false
	}

	return orbitRecord{
		epoch: epoch.UTC(),
		vec:   model.Vec3{X: comps[0], Y: comps[1], Z: comps[2]},
	}, true
}
