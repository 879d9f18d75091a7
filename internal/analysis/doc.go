// Package analysis inspects recorded sessions.
//
//   - [Spectrum]: power spectrum of a sampled signal, used to find the
//     dominant oscillation of a controller (for example a pitch wobble)
//   - [NewPortrait]: 2D phase portrait of two state fields, rendered with
//     [Portrait.ASCII]
//   - [Touchdowns]: the first ground contact of every episode
package analysis
