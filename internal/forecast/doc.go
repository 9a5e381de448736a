// Package forecast fits an additive decomposable time-series model to a
// normalized price series and projects it forward.
//
// The model is
//
//	y(t) = trend(t) + yearly(t) + daily(t) + noise
//
// where trend is piecewise linear with hinge terms at evenly spaced
// changepoints over the first part of the history, and each seasonality is a
// truncated Fourier series (period 365.25 days and 1 day). Time is scaled to
// [0,1] over the training span and values by their maximum magnitude.
//
// Coefficients are estimated by penalized least squares in two passes: the
// first pass uses only a ridge floor and yields the residual variance, the
// second sets each penalty to residual variance over the squared prior scale
// of its group. Non-trend penalties never drop below a floor proportional to
// the row count, which keeps a noiseless fit well conditioned. Seasonal features are centered on their training mean
// so they stay identifiable against the intercept, which matters for daily
// seasonality fitted on once-a-day observations.
//
// Uncertainty intervals come from simulation. Each sample extends the trend
// past the history with new changepoints drawn as a Poisson process at the
// historical changepoint rate, with Laplace-distributed rate changes scaled to
// the mean magnitude of the fitted ones, and adds Gaussian observation noise
// with the residual standard deviation.
package forecast
