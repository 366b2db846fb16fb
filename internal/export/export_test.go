package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/gomega"
	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/sim"
	"github.com/san-kum/nbodysim/internal/storage"
	"github.com/san-kum/nbodysim/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	g := NewWithT(t)
	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(7, 7)

	svg := CanvasToSVG(c, 2)

	g.Expect(svg).To(HavePrefix("<?xml"))
	g.Expect(svg).To(HaveSuffix("</svg>"))
	g.Expect(svg).To(ContainSubstring(`width="16" height="16"`))
	g.Expect(strings.Count(svg, "<circle")).To(Equal(2))
	g.Expect(svg).To(ContainSubstring(`cx="1.0" cy="1.0"`))
	g.Expect(svg).To(ContainSubstring(`cx="15.0" cy="15.0"`))

	g.Expect(CanvasToSVG(nil, 1)).To(BeEmpty())
}

func TestPositionsToSVG(t *testing.T) {
	g := NewWithT(t)
	pos := []mgl32.Vec3{{}, {10, 0, 0}, {0, -10, 5}}

	svg := PositionsToSVG(pos, 220, 220)

	g.Expect(strings.Count(svg, "<circle")).To(Equal(3))
	g.Expect(svg).To(ContainSubstring(`cx="110.0" cy="110.0" r="5"`))
	g.Expect(svg).To(ContainSubstring(`cx="210.0" cy="110.0"`))
	g.Expect(svg).To(ContainSubstring(`cx="110.0" cy="210.0"`))
	g.Expect(PositionsToSVG(nil, 10, 10)).To(BeEmpty())
}

func TestTrailsRecordAndDraw(t *testing.T) {
	g := NewWithT(t)
	st := dynamo.NewStore(3)
	tr := NewTrails(2, 1, 2, 7)

	for i := 1; i <= 3; i++ {
		_ = st.SetPosition(1, mgl32.Vec3{float32(i), 0, 0})
		_ = st.SetPosition(2, mgl32.Vec3{0, float32(i), 0})
		tr.OnTick(sim.TickInfo{Tick: uint64(i), Store: st})
	}

	paths := tr.Paths()
	g.Expect(paths).To(HaveLen(3))
	g.Expect(paths[0]).To(Equal([]mgl32.Vec3{{2, 0, 0}, {3, 0, 0}}))
	g.Expect(paths[1]).To(Equal([]mgl32.Vec3{{0, 2, 0}, {0, 3, 0}}))
	g.Expect(paths[2]).To(BeEmpty())

	svg := TrailsToSVG(tr, 200, 200)
	g.Expect(strings.Count(svg, "<path")).To(Equal(2))
	g.Expect(TrailsToSVG(NewTrails(0, 1), 200, 200)).To(BeEmpty())
}

func TestExportJSON(t *testing.T) {
	g := NewWithT(t)
	st := dynamo.NewStore(2)
	_ = st.SetMass(1, 3)
	_ = st.SetPosition(1, mgl32.Vec3{1, 2, 3})

	path := filepath.Join(t.TempDir(), "snap.json")
	g.Expect(ExportJSON(path, NewSnapshot(storage.RunMetadata{ID: "r1", Scene: "nbody2"}, st))).To(Succeed())

	data, err := os.ReadFile(path)
	g.Expect(err).NotTo(HaveOccurred())

	var snap Snapshot
	g.Expect(json.Unmarshal(data, &snap)).To(Succeed())
	g.Expect(snap.Run.ID).To(Equal("r1"))
	g.Expect(snap.Masses).To(Equal([]float32{0, 3}))
	g.Expect(snap.Positions[1]).To(Equal(mgl32.Vec3{1, 2, 3}))
}

func TestSnapshotIsDetached(t *testing.T) {
	st := dynamo.NewStore(2)
	snap := NewSnapshot(storage.RunMetadata{}, st)
	_ = st.SetPosition(1, mgl32.Vec3{9, 9, 9})

	if snap.Positions[1] != (mgl32.Vec3{}) {
		t.Error("snapshot shares memory with the store")
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, snap); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"positions"`) {
		t.Error("missing positions field")
	}
}
