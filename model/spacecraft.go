package model

// EphemerisSource indicates which collaborator resolves a spacecraft's
// position.
type EphemerisSource int

const (
	EphemerisSourceUnknown  EphemerisSource = iota
	EphemerisSourceHorizons                 // JPL Horizons vector query
	EphemerisSourceCDAWeb                   // CDAWeb dataset orbit variable
	EphemerisSourceTLE                      // offline SGP4 propagation
)

func (s EphemerisSource) String() string {
	switch s {
	case EphemerisSourceHorizons:
		return "horizons"
	case EphemerisSourceCDAWeb:
		return "cdaweb"
	case EphemerisSourceTLE:
		return "tle"
	default:
		return "unknown"
	}
}

// SpacecraftDefinition describes a spacecraft the scene can place:
// identity plus whatever its ephemeris source needs to resolve it.
type SpacecraftDefinition struct {
	ID   string
	Name string

	Source EphemerisSource

	// NAIFID is the Horizons target body id, e.g. -96 for PSP.
	NAIFID int

	// Dataset and Variable select the CDAWeb orbit product.
	Dataset  string
	Variable string

	// TLELine1 and TLELine2 feed the offline SGP4 source.
	TLELine1 string
	TLELine2 string

	// Frame and Unit tag positions as the source delivers them,
	// before reconciliation into the scene frame.
	Frame Frame
	Unit  Unit
}
