// core/catalog_loader.go
package core

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/signalsfoundry/heliosheet/model"
)

// CatalogSummary is a small summary of what was loaded from JSON.
// It's mainly useful for logging or debugging from main().
type CatalogSummary struct {
	SpacecraftIDs []string
}

// CatalogStore receives loaded definitions. *kb.Store satisfies it.
type CatalogStore interface {
	AddSpacecraft(def model.SpacecraftDefinition) error
}

// internal JSON shapes - keep them unexported so we're free to evolve them.
type spacecraftCatalogJSON struct {
	Spacecraft []spacecraftJSON `json:"spacecraft"`
}

type spacecraftJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Source   string `json:"source"`   // "horizons" | "cdaweb" | "tle"
	NAIFID   int    `json:"naif_id"`  // Horizons target body
	Dataset  string `json:"dataset"`  // CDAWeb dataset id
	Variable string `json:"variable"` // CDAWeb orbit variable
	TLELine1 string `json:"tle_line1"`
	TLELine2 string `json:"tle_line2"`
	Frame    string `json:"frame"` // "heliocentric" | "gse"
	Unit     string `json:"unit"`  // "au" | "km"
}

// LoadSpacecraftCatalog reads a JSON catalog from r, populates store
// with the spacecraft it describes, and returns a summary of what was
// loaded.
//
// Unlike the rest of this package's tolerance for odd inputs, frame
// and unit tags are load-bearing for reconciliation, so unknown values
// fail the load instead of defaulting.
func LoadSpacecraftCatalog(store CatalogStore, r io.Reader) (*CatalogSummary, error) {
	if store == nil {
		return nil, fmt.Errorf("LoadSpacecraftCatalog: store is nil")
	}

	var payload spacecraftCatalogJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadSpacecraftCatalog: decode failed: %w", err)
	}

	result := &CatalogSummary{
		SpacecraftIDs: make([]string, 0, len(payload.Spacecraft)),
	}

	for _, js := range payload.Spacecraft {
		if js.ID == "" {
			return nil, fmt.Errorf("LoadSpacecraftCatalog: spacecraft with empty id")
		}

		def, err := definitionFromJSON(js)
		if err != nil {
			return nil, fmt.Errorf("LoadSpacecraftCatalog: spacecraft %q: %w", js.ID, err)
		}

		if err := store.AddSpacecraft(def); err != nil {
			return nil, fmt.Errorf("LoadSpacecraftCatalog: spacecraft %q: %w", js.ID, err)
		}
		result.SpacecraftIDs = append(result.SpacecraftIDs, js.ID)
	}

	return result, nil
}

func definitionFromJSON(js spacecraftJSON) (model.SpacecraftDefinition, error) {
	source, err := sourceFromString(js.Source)
	if err != nil {
		return model.SpacecraftDefinition{}, err
	}
	frame, err := frameFromString(js.Frame)
	if err != nil {
		return model.SpacecraftDefinition{}, err
	}
	unit, err := unitFromString(js.Unit)
	if err != nil {
		return model.SpacecraftDefinition{}, err
	}

	switch source {
	case model.EphemerisSourceHorizons:
		if js.NAIFID == 0 {
			return model.SpacecraftDefinition{}, fmt.Errorf("horizons source needs naif_id")
		}
	case model.EphemerisSourceCDAWeb:
		if js.Dataset == "" || js.Variable == "" {
			return model.SpacecraftDefinition{}, fmt.Errorf("cdaweb source needs dataset and variable")
		}
	case model.EphemerisSourceTLE:
		if js.TLELine1 == "" || js.TLELine2 == "" {
			return model.SpacecraftDefinition{}, fmt.Errorf("tle source needs both element lines")
		}
	}

	return model.SpacecraftDefinition{
		ID:       js.ID,
		Name:     js.Name,
		Source:   source,
		NAIFID:   js.NAIFID,
		Dataset:  js.Dataset,
		Variable: js.Variable,
		TLELine1: js.TLELine1,
		TLELine2: js.TLELine2,
		Frame:    frame,
		Unit:     unit,
	}, nil
}

func sourceFromString(s string) (model.EphemerisSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizons":
		return model.EphemerisSourceHorizons, nil
	case "cdaweb":
		return model.EphemerisSourceCDAWeb, nil
	case "tle":
		return model.EphemerisSourceTLE, nil
	default:
		return model.EphemerisSourceUnknown, fmt.Errorf("unknown ephemeris source %q", s)
	}
}

func frameFromString(s string) (model.Frame, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "heliocentric", "helio":
		return model.FrameHeliocentric, nil
	case "gse":
		return model.FrameGSE, nil
	default:
		return model.FrameUnknown, fmt.Errorf("unknown frame %q", s)
	}
}

func unitFromString(s string) (model.Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "au":
		return model.UnitAU, nil
	case "km", "kilometers", "kilometres":
		return model.UnitKilometer, nil
	default:
		return model.UnitUnknown, fmt.Errorf("unknown unit %q", s)
	}
}

// DefaultCatalog returns the built-in spacecraft set: Parker Solar
// Probe resolved through Horizons and MMS-1 through CDAWeb.
func DefaultCatalog() []model.SpacecraftDefinition {
	return []model.SpacecraftDefinition{
		{
			ID:     "psp",
			Name:   "Parker Solar Probe",
			Source: model.EphemerisSourceHorizons,
			NAIFID: -96,
			Frame:  model.FrameHeliocentric,
			Unit:   model.UnitAU,
		},
		{
			ID:       "mms1",
			Name:     "MMS-1",
			Source:   model.EphemerisSourceCDAWeb,
			Dataset:  "MMS1_MEC_SRVY_L2_EPHT89D",
			Variable: "mms1_mec_r_gse",
			Frame:    model.FrameGSE,
			Unit:     model.UnitKilometer,
		},
	}
}
