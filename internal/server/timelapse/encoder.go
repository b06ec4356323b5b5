// Package timelapse compiles an ordered range of a user's progress
// images into an encrypted video artifact.
package timelapse

import "context"

// EncodeJob describes one encoding run: ordered plaintext frame paths,
// uniform per-frame duration, integer output frame rate and optional
// output dimensions.
type EncodeJob struct {
	Frames        []string
	FrameDuration float64
	FPS           int
	Width         int
	Height        int
	OutPath       string
}

// Encoder is the external video encoder. Implementations take local
// image files and produce a muxed video at OutPath, or return a
// structured failure.
type Encoder interface {
	Encode(ctx context.Context, job EncodeJob) error
}
