// Package analysis provides chaos diagnostics for integrated trajectories.
//
//   - [Divergence]: separation history of two runs started a small
//     perturbation apart
//   - [LyapunovExponent]: largest Lyapunov exponent via the renormalized
//     trajectory-separation method
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
// nearby initial conditions separate exponentially rather than linearly.
package analysis
