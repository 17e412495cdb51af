// ABOUTME: Application package documentation
// ABOUTME: Describes how the sampler components are wired
// Package app wires the sampler together: device, bank, voices, metrics
// and the terminal UI.
package app
