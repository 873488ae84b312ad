// Package analysis provides spectral tools for recorded runs.
//
//   - [PowerSpectrum]: magnitude spectrum of a real series, zero-padded to a
//     power of two
//   - [Frequencies]: the frequency of each spectrum bin
//   - [DominantFrequency]: strongest non-zero frequency of a series
//
// A series can be a metric sampled in time (the breathing of a released
// condensate shows up in its width) or a profile sampled in space, in which
// case the frequencies are spatial and 2π·f is the wavenumber.
package analysis
