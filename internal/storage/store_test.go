package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/gomega"
	"github.com/san-kum/nbodysim/internal/dynamo"
)

func sampleStore() *dynamo.Store {
	st := dynamo.NewStore(3)
	_ = st.SetMass(0, 1.989e20)
	_ = st.SetMass(1, 5.974e15)
	_ = st.SetMass(2, 5.974e15)
	_ = st.SetPosition(1, mgl32.Vec3{31.25, -4.5, 0.125})
	_ = st.SetVelocity(1, mgl32.Vec3{0.0125, 0.18, -0.001})
	_ = st.SetPosition(2, mgl32.Vec3{-60, 12.75, 3})
	return st
}

func TestSaveLoad(t *testing.T) {
	g := NewWithT(t)
	s := New(t.TempDir())
	g.Expect(s.Init()).To(Succeed())

	st := sampleStore()
	id, err := s.Save(RunMetadata{
		Scene:    "nbody3",
		Seed:     7,
		Bodies:   2,
		Dt:       10,
		Ticks:    100,
		SimTime:  1000,
		Strategy: "sequential",
		Force:    "gravity",
		Metrics:  map[string]float64{"energy_drift": 0.002},
	}, st)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(id).To(HavePrefix("nbody3_"))

	meta, err := s.Load(id)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(meta.ID).To(Equal(id))
	g.Expect(meta.Ticks).To(Equal(uint64(100)))
	g.Expect(meta.Metrics).To(HaveKeyWithValue("energy_drift", 0.002))

	loaded, err := s.LoadBodies(id)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(loaded.Positions()).To(Equal(st.Positions()))
	g.Expect(loaded.Velocities()).To(Equal(st.Velocities()))
	g.Expect(loaded.Masses()).To(Equal(st.Masses()))
}

func TestListNewestFirst(t *testing.T) {
	s := New(t.TempDir())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, scene := range []string{"nbody2", "nbody3", "nbody4"} {
		_, err := s.Save(RunMetadata{Scene: scene, Timestamp: base.Add(time.Duration(i) * time.Hour)}, sampleStore())
		if err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 || runs[0].Scene != "nbody4" || runs[2].Scene != "nbody2" {
		t.Errorf("unexpected order: %+v", runs)
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New("/nonexistent/nbodysim/runs").List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestLoadMissingRun(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := s.LoadBodies("nope"); err == nil {
		t.Error("expected error for missing bodies")
	}
}

func TestLoadBodiesSingleAnchor(t *testing.T) {
	s := New(t.TempDir())
	st := dynamo.NewStore(1)
	id, err := s.Save(RunMetadata{ID: "single"}, st)
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := s.LoadBodies(id)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := loaded.Position(1); !errors.Is(err, dynamo.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}
