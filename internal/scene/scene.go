package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/nbodysim/internal/dynamo"
	"go.uber.org/zap"
)

// Renderer draws one frame from world matrices. It never sees the store.
type Renderer interface {
	BeginFrame()
	DrawBody(world mgl32.Mat4)
	EndFrame() error
}

// Scene owns one body system: the store, the node hierarchy mirroring it,
// and the initializer that populated both. It is created by Build and torn
// down by Close; there is no process-wide current scene.
type Scene struct {
	Name string

	store  *dynamo.Store
	root   *Group
	system *Group
	bodies []*BodyNode
	params InitParams
	closed bool
	log    *zap.Logger
}

// Build validates p, allocates the store and populates it together with the
// hierarchy.
func Build(name string, p InitParams, log *zap.Logger) (*Scene, error) {
	if log == nil {
		log = zap.NewNop()
	}

	in, err := NewInitializer(p)
	if err != nil {
		return nil, err
	}

	root := NewGroup("root")
	system := NewGroup("system")
	root.Add(system)

	st := dynamo.NewStore(p.Orbiters + 1)
	bodies, err := in.Populate(st, system)
	if err != nil {
		return nil, fmt.Errorf("populate %s: %w", name, err)
	}

	log.Info("scene built",
		zap.String("scene", name),
		zap.Int("orbiters", p.Orbiters),
		zap.String("radius_policy", string(p.Policy)),
		zap.Uint64("seed", p.Seed))

	return &Scene{
		Name:   name,
		store:  st,
		root:   root,
		system: system,
		bodies: bodies,
		params: p,
		log:    log,
	}, nil
}

func (s *Scene) Store() *dynamo.Store { return s.store }
func (s *Scene) Root() *Group         { return s.root }
func (s *Scene) System() *Group       { return s.system }
func (s *Scene) Params() InitParams   { return s.params }
func (s *Scene) Len() int             { return len(s.bodies) }
func (s *Scene) Closed() bool         { return s.closed }

func (s *Scene) Body(i int) (*BodyNode, error) {
	if s.closed {
		return nil, dynamo.ErrSceneClosed
	}
	if i < 0 || i >= len(s.bodies) {
		return nil, fmt.Errorf("%w: node %d of %d", dynamo.ErrIndexOutOfRange, i, len(s.bodies))
	}
	return s.bodies[i], nil
}

// SyncTransforms copies every store position into its body node.
func (s *Scene) SyncTransforms() error {
	if s.closed {
		return dynamo.ErrSceneClosed
	}
	pos := s.store.Positions()
	if len(pos) != len(s.bodies) {
		return fmt.Errorf("%w: %d positions for %d nodes", dynamo.ErrPopulationMismatch, len(pos), len(s.bodies))
	}
	for i, b := range s.bodies {
		b.SetPosition(pos[i])
	}
	return nil
}

// Render walks the hierarchy and hands every body's world matrix to r.
func (s *Scene) Render(r Renderer) error {
	if s.closed {
		return dynamo.ErrSceneClosed
	}
	r.BeginFrame()
	Walk(s.root, mgl32.Ident4(), drawVisitor{r})
	return r.EndFrame()
}

// Close releases the scene. Later use returns dynamo.ErrSceneClosed.
func (s *Scene) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.bodies = nil
	s.root = nil
	s.system = nil
	s.log.Debug("scene closed", zap.String("scene", s.Name))
	return nil
}

type drawVisitor struct{ r Renderer }

func (drawVisitor) VisitGroup(*Group, mgl32.Mat4)         {}
func (v drawVisitor) VisitBody(_ *BodyNode, w mgl32.Mat4) { v.r.DrawBody(w) }
