// Package analysis inspects rendered audio frames offline.
//
// It backs the preview command:
//
//   - [Mono]: fold interleaved stereo to one channel
//   - [Envelope]: peak amplitude per bucket, for terminal plots
//   - [PowerSpectrum]: Hann-windowed magnitude spectrum
//   - [DominantFrequencies]: strongest spectral peaks in Hz
//   - [Bands]: bass, mid and high energy split
//
// Nothing here runs on the real-time path.
package analysis
