// Package analysis estimates orbital properties from a running simulation.
//
//   - [PowerSpectrum]: magnitude spectrum of a sampled signal
//   - [DominantPeriod]: period of the strongest oscillation
//   - [Orbit]: tick observer tracking one body's period and eccentricity
//
// # Orbital Period
//
//	o := analysis.NewOrbit(1, float64(d.Dt()))
//	d.AddObserver(o)
//	_ = d.Run(ctx, 2000)
//	period := o.Value()
package analysis
