package ephem

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"

	"github.com/signalsfoundry/heliosheet/internal/logging"
	"github.com/signalsfoundry/heliosheet/model"
	"github.com/signalsfoundry/heliosheet/timewindow"
)

// DefaultHorizonsURL is the public JPL Horizons API endpoint.
const DefaultHorizonsURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

// horizonsCenter selects Sun body center as the coordinate origin, so
// returned vectors are heliocentric.
const horizonsCenter = "500@10"

// HorizonsClient queries the JPL Horizons API for spacecraft state
// vectors.
type HorizonsClient struct {
	baseURL string
	httpc   *http.Client
	log     logging.Logger
}

// NewHorizonsClient builds a client against baseURL (DefaultHorizonsURL
// when empty). Logger may be nil.
func NewHorizonsClient(baseURL string, timeout time.Duration, log logging.Logger) *HorizonsClient {
	if baseURL == "" {
		baseURL = DefaultHorizonsURL
	}
	if log == nil {
		log = logging.Noop()
	}
	return &HorizonsClient{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Name implements Source.
func (c *HorizonsClient) Name() string { return "horizons" }

// Available implements Source. Horizons serves heliocentric vectors
// for targets addressed by NAIF ID.
func (c *HorizonsClient) Available(def model.SpacecraftDefinition) bool {
	return def.Source == model.EphemerisSourceHorizons &&
		def.NAIFID != 0 &&
		def.Frame == model.FrameHeliocentric
}

// Fetch implements Source. It asks Horizons for a one-minute window
// starting at epoch and keeps the first returned vector.
func (c *HorizonsClient) Fetch(ctx context.Context, def model.SpacecraftDefinition, epoch time.Time) (model.Position, error) {
	if !c.Available(def) {
		return model.Position{}, fmt.Errorf("%w: %q via horizons", ErrUnavailable, def.ID)
	}
	epoch = epoch.UTC()

	jds := []float64{
		julian.TimeToJD(epoch),
		julian.TimeToJD(epoch.Add(time.Minute)),
	}
	q := c.baseQuery(def)
	q.Set("TLIST", quoteHorizons(formatJDList(jds)))

	recs, err := c.vectors(ctx, q)
	if err != nil {
		return model.Position{}, err
	}
	return positionFromVector(recs[0], def), nil
}

// FetchArc implements Source.
func (c *HorizonsClient) FetchArc(ctx context.Context, def model.SpacecraftDefinition, w timewindow.Window) ([]model.Position, error) {
	if !c.Available(def) {
		return nil, fmt.Errorf("%w: %q via horizons", ErrUnavailable, def.ID)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	q := c.baseQuery(def)
	q.Set("START_TIME", quoteHorizons(w.Start.UTC().Format(horizonsTimeLayout)))
	q.Set("STOP_TIME", quoteHorizons(w.Stop.UTC().Format(horizonsTimeLayout)))
	q.Set("STEP_SIZE", quoteHorizons(formatHorizonsStep(w.Step)))

	recs, err := c.vectors(ctx, q)
	if err != nil {
		return nil, err
	}
	arc := make([]model.Position, 0, len(recs))
	for _, rec := range recs {
		arc = append(arc, positionFromVector(rec, def))
	}
	return arc, nil
}

const horizonsTimeLayout = "2006-01-02 15:04"

func (c *HorizonsClient) baseQuery(def model.SpacecraftDefinition) url.Values {
	outUnits := "AU-D"
	if def.Unit == model.UnitKilometer {
		outUnits = "KM-S"
	}
	q := url.Values{}
	q.Set("format", "json")
	q.Set("COMMAND", quoteHorizons(strconv.Itoa(def.NAIFID)))
	q.Set("OBJ_DATA", quoteHorizons("NO"))
	q.Set("MAKE_EPHEM", quoteHorizons("YES"))
	q.Set("EPHEM_TYPE", quoteHorizons("VECTORS"))
	q.Set("VEC_TABLE", quoteHorizons("1"))
	q.Set("CENTER", quoteHorizons(horizonsCenter))
	q.Set("OUT_UNITS", quoteHorizons(outUnits))
	q.Set("CSV_FORMAT", quoteHorizons("YES"))
	return q
}

func (c *HorizonsClient) vectors(ctx context.Context, q url.Values) ([]vectorRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("horizons request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: horizons query: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: horizons read: %w", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: horizons status %d: %s", ErrUpstream, resp.StatusCode, firstLine(body))
	}

	var payload struct {
		Result string `json:"result"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: horizons decode: %w", ErrUpstream, err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("%w: horizons: %s", ErrUpstream, payload.Error)
	}
	return parseVectorTable(payload.Result)
}

// vectorRecord is one row of a Horizons VEC_TABLE=1 CSV ephemeris.
type vectorRecord struct {
	jd  float64
	vec model.Vec3
}

// parseVectorTable extracts the rows between the $$SOE and $$EOE
// markers of a Horizons result. Each CSV row carries the Julian date,
// a calendar date string, and the X, Y, Z components.
func parseVectorTable(result string) ([]vectorRecord, error) {
	start := strings.Index(result, "$$SOE")
	end := strings.Index(result, "$$EOE")
	if start < 0 || end < 0 || end < start {
		return nil, fmt.Errorf("%w: vector table markers missing", ErrNoData)
	}

	var recs []vectorRecord
	for _, line := range strings.Split(result[start+len("$$SOE"):end], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 5 {
			continue
		}
		jd, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			continue
		}
		var xyz [3]float64
		ok := true
		for i := range xyz {
			xyz[i], err = strconv.ParseFloat(strings.TrimSpace(fields[2+i]), 64)
			if err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		recs = append(recs, vectorRecord{
			jd:  jd,
			vec: model.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]},
		})
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: empty vector table", ErrNoData)
	}
	return recs, nil
}

func positionFromVector(rec vectorRecord, def model.SpacecraftDefinition) model.Position {
	return model.Position{
		Vec:   rec.vec,
		Frame: def.Frame,
		Unit:  def.Unit,
		Epoch: julian.JDToTime(rec.jd).UTC(),
	}
}

// quoteHorizons wraps a value in the single quotes the Horizons API
// expects around its parameters.
func quoteHorizons(v string) string { return "'" + v + "'" }

func formatJDList(jds []float64) string {
	parts := make([]string, len(jds))
	for i, jd := range jds {
		parts[i] = strconv.FormatFloat(jd, 'f', 9, 64)
	}
	return strings.Join(parts, " ")
}

func formatHorizonsStep(step time.Duration) string {
	minutes := int(step / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return strconv.Itoa(minutes) + "m"
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
