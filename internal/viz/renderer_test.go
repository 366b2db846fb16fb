package viz

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/gomega"
	"github.com/san-kum/nbodysim/internal/config"
	"github.com/san-kum/nbodysim/internal/scene"
	"go.uber.org/zap"
)

func TestCameraProjectsOriginToCenter(t *testing.T) {
	g := NewWithT(t)
	cam := NewCamera()

	x, y, depth, ok := cam.Project(mgl32.Vec3{}, 160, 120)
	g.Expect(ok).To(BeTrue())
	g.Expect(x).To(Equal(80))
	g.Expect(y).To(Equal(60))
	g.Expect(depth).To(BeNumerically(">", -1))
	g.Expect(depth).To(BeNumerically("<", 1))
}

func TestCameraCullsBehind(t *testing.T) {
	cam := NewCamera()
	if _, _, _, ok := cam.Project(mgl32.Vec3{0, 0, 1000}, 160, 120); ok {
		t.Error("point behind the camera should not project")
	}
	if _, _, _, ok := cam.Project(mgl32.Vec3{}, 0, 120); ok {
		t.Error("empty raster should not project")
	}
}

func TestCameraZoomBounds(t *testing.T) {
	cam := NewCamera()
	for i := 0; i < 100; i++ {
		cam.ZoomIn()
	}
	if cam.Zoom != maxZoom {
		t.Errorf("zoom = %v, want %v", cam.Zoom, maxZoom)
	}
	for i := 0; i < 100; i++ {
		cam.ZoomOut()
	}
	if cam.Zoom != minZoom {
		t.Errorf("zoom = %v, want %v", cam.Zoom, minZoom)
	}
}

func TestRendererDrawsScene(t *testing.T) {
	g := NewWithT(t)
	sc, err := scene.Build("nbody2", config.GetPreset("nbody2").InitParams(), zap.NewNop())
	g.Expect(err).NotTo(HaveOccurred())
	defer sc.Close()

	r := NewTermRenderer(80, 30, nil)
	g.Expect(sc.Render(r)).To(Succeed())

	drawn, culled := r.Stats()
	g.Expect(drawn + culled).To(Equal(sc.Len()))
	g.Expect(drawn).To(BeNumerically(">=", 1))

	w, h := r.Canvas().Dots()
	g.Expect(r.Canvas().IsSet(w/2, h/2)).To(BeTrue(), "anchor at the center")
	g.Expect(r.Frame()).To(Equal(r.Canvas().String()))
}

func TestRendererClearsBetweenFrames(t *testing.T) {
	r := NewTermRenderer(20, 10, nil)
	r.BeginFrame()
	r.DrawBody(mgl32.Ident4())
	if err := r.EndFrame(); err != nil {
		t.Fatal(err)
	}
	first := r.Frame()

	r.BeginFrame()
	if err := r.EndFrame(); err != nil {
		t.Fatal(err)
	}
	if r.Frame() == first {
		t.Error("expected empty frame after redraw")
	}
	if drawn, culled := r.Stats(); drawn != 0 || culled != 0 {
		t.Errorf("stats not reset: %d, %d", drawn, culled)
	}
}
