// Package glicko implements the Glicko-2 single-opponent rating update.
package glicko

// Option applies a configuration option to the Updater.
type Option func(*Updater)

// WithTau sets the volatility change constraint. Smaller values keep
// volatility more stable; 0.3 to 1.2 are reasonable per the paper.
func WithTau(tau float64) Option {
	return func(u *Updater) {
		if tau > 0 {
			u.tau = tau
		}
	}
}

// WithTolerance sets the convergence tolerance of the volatility solve.
func WithTolerance(tolerance float64) Option {
	return func(u *Updater) {
		if tolerance > 0 {
			u.tolerance = tolerance
		}
	}
}

// WithMaxIterations bounds the volatility root-finding loop.
func WithMaxIterations(n int) Option {
	return func(u *Updater) {
		if n > 0 {
			u.maxIterations = n
		}
	}
}
