package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a node's placement relative to its parent. Rotation holds
// Euler angles in radians applied X, then Y, then Z.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

func Identity() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix returns the local model matrix T * Rx * Ry * Rz * S.
func (t Transform) Matrix() mgl32.Mat4 {
	m := mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2])
	m = m.Mul4(mgl32.HomogRotate3DX(t.Rotation[0]))
	m = m.Mul4(mgl32.HomogRotate3DY(t.Rotation[1]))
	m = m.Mul4(mgl32.HomogRotate3DZ(t.Rotation[2]))
	return m.Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// ComposeTransform returns the world matrix of a node with the given local
// transform under a parent world matrix. It has no side effects.
func ComposeTransform(parent mgl32.Mat4, local Transform) mgl32.Mat4 {
	return parent.Mul4(local.Matrix())
}

// Visitor receives each node together with its world matrix.
type Visitor interface {
	VisitGroup(g *Group, world mgl32.Mat4)
	VisitBody(b *BodyNode, world mgl32.Mat4)
}

type Node interface {
	Local() Transform
	Children() []Node
	Accept(v Visitor, world mgl32.Mat4)
}

// Group is a non-renderable node that only carries a transform.
type Group struct {
	Name      string
	transform Transform
	children  []Node
}

func NewGroup(name string) *Group {
	return &Group{Name: name, transform: Identity()}
}

func (g *Group) Local() Transform                   { return g.transform }
func (g *Group) SetLocal(t Transform)               { g.transform = t }
func (g *Group) Children() []Node                   { return g.children }
func (g *Group) Add(n Node)                         { g.children = append(g.children, n) }
func (g *Group) Accept(v Visitor, world mgl32.Mat4) { v.VisitGroup(g, world) }
func (g *Group) SetPosition(p mgl32.Vec3)           { g.transform.Position = p }
func (g *Group) SetRotation(r mgl32.Vec3)           { g.transform.Rotation = r }

// BodyNode is the renderable counterpart of one store body.
type BodyNode struct {
	Index     int
	transform Transform
}

func NewBodyNode(index int, scale float32) *BodyNode {
	return &BodyNode{
		Index:     index,
		transform: Transform{Scale: mgl32.Vec3{scale, scale, scale}},
	}
}

func (b *BodyNode) Local() Transform                   { return b.transform }
func (b *BodyNode) Children() []Node                   { return nil }
func (b *BodyNode) Accept(v Visitor, world mgl32.Mat4) { v.VisitBody(b, world) }
func (b *BodyNode) Position() mgl32.Vec3               { return b.transform.Position }
func (b *BodyNode) SetPosition(p mgl32.Vec3)           { b.transform.Position = p }
func (b *BodyNode) Scale() float32                     { return b.transform.Scale[0] }

// Walk visits root and its descendants depth first, computing each world
// matrix from its parent's.
func Walk(root Node, parent mgl32.Mat4, v Visitor) {
	world := ComposeTransform(parent, root.Local())
	root.Accept(v, world)
	for _, child := range root.Children() {
		Walk(child, world, v)
	}
}
