// ABOUTME: Terminal UI package for the sampler
// ABOUTME: Provides the bubbletea sample pad used by the play command
// Package ui renders loaded samples as keyboard pads.
//
// Keys 1-9 trigger a new voice of the matching pad; actions are delivered on
// the channels of a Control so the caller owns all playback.
package ui
