// Package render turns assembled scenes into export artifacts: a JSON
// scene document, CSV tables for the sheet surface and spacecraft
// positions, and a gnuplot script that plots them together.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/signalsfoundry/heliosheet/core"
	"github.com/signalsfoundry/heliosheet/internal/logging"
	"github.com/signalsfoundry/heliosheet/model"
)

// SceneDocument is the canonical JSON representation of a scene. The
// HTTP API and the file exporter both serve this shape.
type SceneDocument struct {
	Epoch      time.Time       `json:"epoch"`
	Model      string          `json:"model,omitempty"`
	Parameters ParametersDoc   `json:"parameters"`
	Sun        PointDoc        `json:"sun"`
	Earth      PointDoc        `json:"earth"`
	Spacecraft []SpacecraftDoc `json:"spacecraft"`
	Surface    *SurfaceDoc     `json:"surface,omitempty"`
}

// ParametersDoc mirrors model.SpiralParameters on the wire.
type ParametersDoc struct {
	TiltDeg            float64 `json:"tilt_deg"`
	AmplitudeDeg       float64 `json:"amplitude_deg"`
	RotationPeriodDays float64 `json:"rotation_period_days"`
	WindSpeedKmS       float64 `json:"wind_speed_km_s"`
	RMinAU             float64 `json:"r_min_au"`
	RMaxAU             float64 `json:"r_max_au"`
	NPhi               int     `json:"n_phi"`
	NR                 int     `json:"n_r"`
}

// PointDoc is a heliocentric position in AU.
type PointDoc struct {
	X float64 `json:"x_au"`
	Y float64 `json:"y_au"`
	Z float64 `json:"z_au"`
}

// SpacecraftDoc is one spacecraft with its reconciled position and
// optional trajectory arc.
type SpacecraftDoc struct {
	ID       string     `json:"id"`
	Name     string     `json:"name,omitempty"`
	Source   string     `json:"source,omitempty"`
	Position PointDoc   `json:"position"`
	Arc      []PointDoc `json:"arc,omitempty"`
}

// SurfaceDoc summarizes the computed sheet surface. The full grids
// travel in the surface CSV, not in the scene document.
type SurfaceDoc struct {
	NPhi     int     `json:"n_phi"`
	NR       int     `json:"n_r"`
	FieldMin float64 `json:"field_min"`
	FieldMax float64 `json:"field_max"`
}

// BuildSceneDocument converts a scene into its wire form.
func BuildSceneDocument(s *core.Scene) SceneDocument {
	doc := SceneDocument{
		Epoch:      s.Epoch,
		Model:      s.ModelName,
		Parameters: NewParametersDoc(s.Parameters),
		Sun:        pointDoc(s.Sun),
		Earth:      pointDoc(s.Earth),
		Spacecraft: make([]SpacecraftDoc, 0, len(s.Spacecraft)),
	}
	for _, sc := range s.Spacecraft {
		scDoc := SpacecraftDoc{
			ID:       sc.ID,
			Name:     sc.Name,
			Source:   sc.Source.String(),
			Position: pointDoc(sc.Position.Vec),
		}
		for _, p := range sc.Arc {
			scDoc.Arc = append(scDoc.Arc, pointDoc(p.Vec))
		}
		doc.Spacecraft = append(doc.Spacecraft, scDoc)
	}
	if s.Surface != nil {
		nPhi, nR := s.Surface.Dims()
		doc.Surface = &SurfaceDoc{
			NPhi:     nPhi,
			NR:       nR,
			FieldMin: s.FieldMin,
			FieldMax: s.FieldMax,
		}
	}
	return doc
}

// NewParametersDoc converts a parameter set into its wire form.
func NewParametersDoc(p model.SpiralParameters) ParametersDoc {
	return ParametersDoc{
		TiltDeg:            p.TiltDeg,
		AmplitudeDeg:       p.AmplitudeDeg,
		RotationPeriodDays: p.RotationPeriodDays,
		WindSpeedKmS:       p.WindSpeedKmS,
		RMinAU:             p.RMinAU,
		RMaxAU:             p.RMaxAU,
		NPhi:               p.NPhi,
		NR:                 p.NR,
	}
}

func pointDoc(v model.Vec3) PointDoc {
	return PointDoc{X: v.X, Y: v.Y, Z: v.Z}
}

// GridRows copies a grid into row slices for JSON encoding.
func GridRows(g *model.Grid) [][]float64 {
	if g == nil {
		return nil
	}
	rows, cols := g.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			row[j] = g.At(i, j)
		}
		out[i] = row
	}
	return out
}

// SceneFiles names the artifacts written for one scene export.
type SceneFiles struct {
	Scene     string
	Surface   string
	Positions string
	Plot      string
}

// Writer exports scenes to a directory.
type Writer struct {
	dir string
	log logging.Logger
}

// NewWriter builds a writer rooted at dir ("." when empty). Logger may
// be nil.
func NewWriter(dir string, log logging.Logger) *Writer {
	if dir == "" {
		dir = "."
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Writer{dir: dir, log: log}
}

// WriteScene writes the scene document, the data tables, and the plot
// script, named after name.
func (w *Writer) WriteScene(ctx context.Context, s *core.Scene, name string) (SceneFiles, error) {
	files := SceneFiles{
		Scene:     filepath.Join(w.dir, fmt.Sprintf("scene-%s.json", name)),
		Positions: filepath.Join(w.dir, fmt.Sprintf("positions-%s.csv", name)),
		Plot:      filepath.Join(w.dir, fmt.Sprintf("plot-%s.gp", name)),
	}
	if s.Surface != nil {
		files.Surface = filepath.Join(w.dir, fmt.Sprintf("surface-%s.csv", name))
	}

	if err := writeFile(files.Scene, func(out io.Writer) error {
		return WriteSceneJSON(out, s)
	}); err != nil {
		return SceneFiles{}, err
	}
	if err := writeFile(files.Positions, func(out io.Writer) error {
		return WritePositionsCSV(out, s)
	}); err != nil {
		return SceneFiles{}, err
	}
	if s.Surface != nil {
		if err := writeFile(files.Surface, func(out io.Writer) error {
			return WriteSurfaceCSV(out, s.Surface)
		}); err != nil {
			return SceneFiles{}, err
		}
	}
	if err := writeFile(files.Plot, func(out io.Writer) error {
		return WriteGnuplotScript(out, s, files)
	}); err != nil {
		return SceneFiles{}, err
	}

	w.log.Info(ctx, "scene exported",
		logging.String("scene", files.Scene),
		logging.Int("spacecraft", len(s.Spacecraft)),
	)
	return files, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// WriteSceneJSON writes the scene document as indented JSON.
func WriteSceneJSON(out io.Writer, s *core.Scene) error {
	doc := BuildSceneDocument(s)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WritePositionsCSV writes one row per body: the Sun, Earth, then each
// spacecraft in scene order. All coordinates are heliocentric AU.
func WritePositionsCSV(out io.Writer, s *core.Scene) error {
	fmt.Fprintf(out, "# Scene epoch (UTC): %s\n", s.Epoch.UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "# name,x_au,y_au,z_au\n")

	writeRow := func(name string, v model.Vec3) {
		fmt.Fprintf(out, "%s,%g,%g,%g\n", name, v.X, v.Y, v.Z)
	}
	writeRow("sun", s.Sun)
	writeRow("earth", s.Earth)
	for _, sc := range s.Spacecraft {
		writeRow(sc.ID, sc.Position.Vec)
	}
	return nil
}

// WriteSurfaceCSV writes the sheet surface grids as one row per node,
// blocked by azimuth row with a blank line between blocks so gnuplot
// reads it as a mesh.
func WriteSurfaceCSV(out io.Writer, surface *model.SpiralSurface) error {
	if surface == nil {
		return fmt.Errorf("WriteSurfaceCSV: nil surface")
	}
	nPhi, nR := surface.Dims()

	fmt.Fprintf(out, "# phi_index,r_index,x_au,y_au,z_au,field\n")
	for i := 0; i < nPhi; i++ {
		for j := 0; j < nR; j++ {
			fmt.Fprintf(out, "%d,%d,%g,%g,%g,%g\n",
				i, j,
				surface.X.At(i, j),
				surface.Y.At(i, j),
				surface.Z.At(i, j),
				surface.Field.At(i, j),
			)
		}
		if i < nPhi-1 {
			fmt.Fprintln(out)
		}
	}
	return nil
}

// WriteGnuplotScript writes a driver script that plots the surface
// mesh colored by field strength with the spacecraft overlaid. Field
// coloring uses a log scale, matching how the sheet has always been
// shaded.
func WriteGnuplotScript(out io.Writer, s *core.Scene, files SceneFiles) error {
	fmt.Fprintf(out, "# heliosheet scene plot, epoch %s\n", s.Epoch.UTC().Format(time.RFC3339))
	fmt.Fprintln(out, "set datafile separator comma")
	fmt.Fprintln(out, "set view equal xyz")
	fmt.Fprintln(out, "set xlabel 'X (AU)'")
	fmt.Fprintln(out, "set ylabel 'Y (AU)'")
	fmt.Fprintln(out, "set zlabel 'Z (AU)'")

	if files.Surface != "" && s.FieldMin > 0 && s.FieldMax > s.FieldMin {
		fmt.Fprintln(out, "set logscale cb")
		fmt.Fprintf(out, "set cbrange [%g:%g]\n", s.FieldMin, s.FieldMax)
		fmt.Fprintln(out, "set cblabel 'relative field strength'")
	}

	if files.Surface != "" {
		fmt.Fprintf(out, "splot '%s' using 3:4:5:6 with pm3d title 'current sheet', \\\n",
			filepath.Base(files.Surface))
		fmt.Fprintf(out, "      '%s' using 2:3:4:(strcol(1)) with labels point pt 7 offset char 1,1 title 'bodies'\n",
			filepath.Base(files.Positions))
	} else {
		fmt.Fprintf(out, "splot '%s' using 2:3:4:(strcol(1)) with labels point pt 7 offset char 1,1 title 'bodies'\n",
			filepath.Base(files.Positions))
	}
	fmt.Fprintln(out, "pause mouse close")
	return nil
}
