package physics

// Scaling convention: real SI values divided by 1e10.
const (
	GravitationalConstant float32 = 6.67e-11 / 1e10
	SunMass               float32 = 1.9890e30 / 1e10
	EarthMass             float32 = 5.974e22

	// DefaultBodyMass is the mass an orbiter keeps unless set explicitly.
	DefaultBodyMass float32 = 5.974e15

	DefaultEpsilon float32 = 0.5
)
