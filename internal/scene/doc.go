// Package scene holds the transform hierarchy paired with a body store and
// the initializer that populates both.
//
// Body nodes and groups are visited through Visitor; world matrices are
// derived top-down with ComposeTransform and never stored on the nodes.
package scene
