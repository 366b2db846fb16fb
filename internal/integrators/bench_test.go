package integrators

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/physics"
)

func ringStore(n int) *dynamo.Store {
	st := dynamo.NewStore(n + 1)
	_ = st.SetMass(0, physics.SunMass)
	for i := 1; i <= n; i++ {
		_ = st.SetMass(i, physics.DefaultBodyMass)
		_ = st.SetPosition(i, mgl32.Vec3{30 + float32(i%24), float32(i % 7), float32(i % 5)})
	}
	return st
}

func BenchmarkSequentialGravity(b *testing.B) {
	for _, n := range []int{10, 200, 1000} {
		b.Run(fmt.Sprintf("Bodies-%d", n), func(b *testing.B) {
			st := ringStore(n)
			integ := NewSequential(physics.NewGravity(physics.GravitationalConstant, physics.DefaultEpsilon), 10)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = integ.Step(context.Background(), st)
			}
		})
	}
}

func BenchmarkSequentialKinematic(b *testing.B) {
	st := ringStore(5000)
	integ := NewSequential(physics.Kinematic{}, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = integ.Step(context.Background(), st)
	}
}
