package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/storage"
)

type Snapshot struct {
	Run        storage.RunMetadata `json:"run"`
	Masses     []float32           `json:"masses"`
	Positions  []mgl32.Vec3        `json:"positions"`
	Velocities []mgl32.Vec3        `json:"velocities"`
}

func NewSnapshot(meta storage.RunMetadata, st *dynamo.Store) Snapshot {
	return Snapshot{
		Run:        meta,
		Masses:     append([]float32(nil), st.Masses()...),
		Positions:  append([]mgl32.Vec3(nil), st.Positions()...),
		Velocities: append([]mgl32.Vec3(nil), st.Velocities()...),
	}
}

func WriteJSON(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ExportJSON writes snap to path, or to stdout when path is "-".
func ExportJSON(path string, snap Snapshot) error {
	if path == "-" {
		return WriteJSON(os.Stdout, snap)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, snap)
}

// WriteSVG writes an SVG document to path.
func WriteSVG(path, svg string) error {
	return os.WriteFile(path, []byte(svg), 0644)
}
