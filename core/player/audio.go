package player

import "context"

// LoadOptions are applied when a sound is created.
type LoadOptions struct {
	AutoPlay bool
	Muted    bool
}

// Status is a playback status report from the platform decoder.
type Status struct {
	Loaded         bool
	Playing        bool
	PositionMillis int64
	DurationMillis int64
	DidJustFinish  bool
}

// AudioHandle is one loaded sound.
type AudioHandle interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
	Unload(ctx context.Context) error
	SetMuted(ctx context.Context, muted bool) error
	SeekTo(ctx context.Context, positionMillis int64) error
	Status(ctx context.Context) (Status, error)
	// OnStatus registers the callback for position updates. The cadence is
	// up to the decoder.
	OnStatus(fn func(Status))
}

// AudioLoader creates sounds from a URL.
type AudioLoader interface {
	Load(ctx context.Context, url string, opts LoadOptions) (AudioHandle, error)
}
