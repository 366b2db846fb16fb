// Package gui shows a running scene in a raylib window. It needs the
// opengl build tag; without it Open reports dynamo.ErrBackendUnavailable.
package gui
