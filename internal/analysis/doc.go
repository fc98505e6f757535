// Package analysis provides signal tools for metric series recorded from a
// cloth run.
//
//   - [FFT]: radix-2 transform, input padded to a power of two
//   - [PowerSpectrum]: magnitude of the positive-frequency bins
//   - [DominantFrequency]: strongest oscillation of a series, in Hz
//   - [Summarize]: mean, spread and settling time of a series
//
// # Sway Frequency
//
// The centroid_x series of a windy run oscillates around its mean; its
// dominant frequency is the cloth's sway rate:
//
//	hz, power := analysis.DominantFrequency(series.Values["centroid_x"], sampleDt)
package analysis
