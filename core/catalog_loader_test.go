package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/signalsfoundry/heliosheet/model"
)

type catalogRecorder struct {
	defs []model.SpacecraftDefinition
	err  error
}

func (c *catalogRecorder) AddSpacecraft(def model.SpacecraftDefinition) error {
	if c.err != nil {
		return c.err
	}
	c.defs = append(c.defs, def)
	return nil
}

const catalogJSON = `{
  "spacecraft": [
    {
      "id": "psp",
      "name": "Parker Solar Probe",
      "source": "horizons",
      "naif_id": -96,
      "frame": "heliocentric",
      "unit": "au"
    },
    {
      "id": "mms1",
      "name": "MMS-1",
      "source": "cdaweb",
      "dataset": "MMS1_MEC_SRVY_L2_EPHT89D",
      "variable": "mms1_mec_r_gse",
      "frame": "gse",
      "unit": "km"
    }
  ]
}`

func TestLoadSpacecraftCatalog(t *testing.T) {
	store := &catalogRecorder{}

	summary, err := LoadSpacecraftCatalog(store, strings.NewReader(catalogJSON))
	if err != nil {
		t.Fatalf("LoadSpacecraftCatalog: %v", err)
	}
	if len(summary.SpacecraftIDs) != 2 {
		t.Fatalf("summary ids = %v, want 2 entries", summary.SpacecraftIDs)
	}

	psp := store.defs[0]
	if psp.Source != model.EphemerisSourceHorizons || psp.NAIFID != -96 {
		t.Errorf("psp source/naif = (%s, %d)", psp.Source, psp.NAIFID)
	}
	if psp.Frame != model.FrameHeliocentric || psp.Unit != model.UnitAU {
		t.Errorf("psp tags = (%s, %s)", psp.Frame, psp.Unit)
	}

	mms := store.defs[1]
	if mms.Source != model.EphemerisSourceCDAWeb || mms.Dataset != "MMS1_MEC_SRVY_L2_EPHT89D" || mms.Variable != "mms1_mec_r_gse" {
		t.Errorf("mms source fields = (%s, %s, %s)", mms.Source, mms.Dataset, mms.Variable)
	}
	if mms.Frame != model.FrameGSE || mms.Unit != model.UnitKilometer {
		t.Errorf("mms tags = (%s, %s)", mms.Frame, mms.Unit)
	}
}

func TestLoadSpacecraftCatalogRejectsBadEntries(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty id", `{"spacecraft":[{"id":"","source":"horizons","naif_id":-96,"frame":"gse","unit":"km"}]}`},
		{"unknown source", `{"spacecraft":[{"id":"x","source":"carrier-pigeon","frame":"gse","unit":"km"}]}`},
		{"unknown frame", `{"spacecraft":[{"id":"x","source":"horizons","naif_id":-96,"frame":"barycentric","unit":"km"}]}`},
		{"unknown unit", `{"spacecraft":[{"id":"x","source":"horizons","naif_id":-96,"frame":"gse","unit":"furlongs"}]}`},
		{"horizons without naif", `{"spacecraft":[{"id":"x","source":"horizons","frame":"gse","unit":"km"}]}`},
		{"cdaweb without dataset", `{"spacecraft":[{"id":"x","source":"cdaweb","variable":"v","frame":"gse","unit":"km"}]}`},
		{"tle without lines", `{"spacecraft":[{"id":"x","source":"tle","frame":"gse","unit":"km"}]}`},
		{"not json", `]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadSpacecraftCatalog(&catalogRecorder{}, strings.NewReader(tc.body)); err == nil {
				t.Fatalf("expected load failure")
			}
		})
	}
}

func TestLoadSpacecraftCatalogPropagatesStoreError(t *testing.T) {
	boom := errors.New("duplicate")
	_, err := LoadSpacecraftCatalog(&catalogRecorder{err: boom}, strings.NewReader(catalogJSON))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}
}

func TestLoadSpacecraftCatalogNilStore(t *testing.T) {
	if _, err := LoadSpacecraftCatalog(nil, strings.NewReader(catalogJSON)); err == nil {
		t.Fatalf("expected error for nil store")
	}
}

func TestDefaultCatalog(t *testing.T) {
	defs := DefaultCatalog()
	if len(defs) != 2 {
		t.Fatalf("default catalog size = %d, want 2", len(defs))
	}
	if defs[0].ID != "psp" || defs[0].NAIFID != -96 {
		t.Errorf("psp entry = %+v", defs[0])
	}
	if defs[1].ID != "mms1" || defs[1].Variable != "mms1_mec_r_gse" {
		t.Errorf("mms1 entry = %+v", defs[1])
	}
}
