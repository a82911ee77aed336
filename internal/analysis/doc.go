// Package analysis characterises recorded creeper runs.
//
//   - [PowerSpectrum] and [DominantFrequency]: periodic content of a sampled
//     series such as body lag or bounce
//   - [Gait]: step cadence, group balance and alternation from step events
//   - [TrackToASCII]: top-down map of the body and end point tracks
//
// A healthy gait alternates every step and keeps the groups balanced:
//
//	g := analysis.Gait(res.Steps, groups, duration)
//	if g.Alternation < 1 {
//	    // some group stepped twice in a row
//	}
package analysis
