// Package player coordinates playback so that at most one sound is loaded at
// any time. Every screen observes the same Player through Subscribe.
package player

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"soundwave/core/catalog"
	"soundwave/logger"
	"soundwave/model"
)

// ErrNoAudio is returned for songs without an audio URL. Nothing changes.
var ErrNoAudio = errors.New("song has no audio url")

// Snapshot is a consistent copy of the player state.
type Snapshot struct {
	Song     *model.Song
	Playing  bool
	Muted    bool
	Elapsed  int     // whole seconds
	Progress float64 // percent, 0..100
}

// Player owns the single active AudioHandle.
type Player struct {
	loader AudioLoader

	// op serializes operations that touch the handle. mu guards the fields
	// below and is never held while calling into the handle.
	op sync.Mutex
	mu sync.Mutex

	handle   AudioHandle
	gen      uint64
	song     *model.Song
	playing  bool
	muted    bool
	elapsed  int
	progress float64

	subs    map[int]func(Snapshot)
	nextSub int
}

// New creates a player on the given loader.
func New(loader AudioLoader) *Player {
	return &Player{loader: loader, subs: make(map[int]func(Snapshot))}
}

// Snapshot returns the current state.
func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Player) snapshotLocked() Snapshot {
	return Snapshot{
		Song:     p.song.Clone(),
		Playing:  p.playing,
		Muted:    p.muted,
		Elapsed:  p.elapsed,
		Progress: p.progress,
	}
}

// Subscribe registers fn for every state change. The returned func removes it.
// fn runs on the goroutine that changed the state and must not call back
// into the player's operations.
func (p *Player) Subscribe(fn func(Snapshot)) (cancel func()) {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

// notify sends the current snapshot to every subscriber, outside the lock.
func (p *Player) notify() {
	p.mu.Lock()
	snap := p.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (p *Player) current() (AudioHandle, *model.Song, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle, p.song, p.playing
}

// Toggle plays song. The same song toggles between pause and resume; a
// different song stops and unloads the current sound before loading the new
// one with auto-play and the current mute state.
func (p *Player) Toggle(ctx context.Context, song *model.Song) error {
	if song == nil || song.AudioURL == "" {
		return ErrNoAudio
	}

	p.op.Lock()
	defer p.op.Unlock()

	handle, cur, playing := p.current()
	if handle != nil && catalog.SongID(cur) == catalog.SongID(song) {
		if playing {
			return p.pauseLocked(ctx, handle)
		}
		return p.playLocked(ctx, handle)
	}
	return p.startLocked(ctx, song)
}

func (p *Player) pauseLocked(ctx context.Context, h AudioHandle) error {
	if err := h.Pause(ctx); err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
	p.notify()
	return nil
}

func (p *Player) playLocked(ctx context.Context, h AudioHandle) error {
	if err := h.Play(ctx); err != nil {
		return fmt.Errorf("failed to play: %w", err)
	}
	p.mu.Lock()
	p.playing = true
	p.mu.Unlock()
	p.notify()
	return nil
}

// releaseLocked stops and unloads the current handle and clears the state.
// The handle is dropped even when the decoder reports an error.
func (p *Player) releaseLocked(ctx context.Context) {
	p.mu.Lock()
	h := p.handle
	p.handle = nil
	p.gen++
	p.song = nil
	p.playing = false
	p.elapsed = 0
	p.progress = 0
	p.mu.Unlock()

	if h == nil {
		return
	}
	if err := h.Stop(ctx); err != nil {
		logger.Warn("Failed to stop sound", logger.ErrorField(err))
	}
	if err := h.Unload(ctx); err != nil {
		logger.Warn("Failed to unload sound", logger.ErrorField(err))
	}
}

func (p *Player) startLocked(ctx context.Context, song *model.Song) error {
	p.releaseLocked(ctx)

	p.mu.Lock()
	muted := p.muted
	p.mu.Unlock()

	h, err := p.loader.Load(ctx, song.AudioURL, LoadOptions{AutoPlay: true, Muted: muted})
	if err != nil {
		p.notify()
		return fmt.Errorf("failed to load %s: %w", song.AudioURL, err)
	}

	total := ParseDuration(song.Duration)
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.handle = h
	p.song = song.Clone()
	p.playing = true
	p.mu.Unlock()

	h.OnStatus(p.statusCallback(gen, total))
	logger.Debug("Now playing",
		logger.String("songId", catalog.SongID(song)),
		logger.String("title", song.Title))
	p.notify()
	return nil
}

// statusCallback ignores reports from handles that have since been replaced.
func (p *Player) statusCallback(gen uint64, totalSeconds int) func(Status) {
	return func(st Status) {
		if !st.Loaded {
			return
		}
		secs := float64(st.PositionMillis) / 1000
		p.mu.Lock()
		if gen != p.gen {
			p.mu.Unlock()
			return
		}
		p.elapsed = int(math.Floor(secs))
		p.progress = percent(secs, float64(totalSeconds))
		if st.DidJustFinish {
			p.playing = false
		}
		p.mu.Unlock()
		p.notify()
	}
}

func percent(secs, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Max(0, math.Min(100, secs/total*100))
}

// PlayPause asks the handle whether it is playing and flips it. No-op
// without a loaded sound.
func (p *Player) PlayPause(ctx context.Context) error {
	p.op.Lock()
	defer p.op.Unlock()

	h, _, _ := p.current()
	if h == nil {
		return nil
	}
	st, err := h.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}
	if st.Playing {
		return p.pauseLocked(ctx, h)
	}
	return p.playLocked(ctx, h)
}

// ToggleMute flips the mute flag and applies it to the loaded sound.
func (p *Player) ToggleMute(ctx context.Context) (bool, error) {
	p.op.Lock()
	defer p.op.Unlock()

	p.mu.Lock()
	muted := !p.muted
	h := p.handle
	p.mu.Unlock()

	if h != nil {
		if err := h.SetMuted(ctx, muted); err != nil {
			return !muted, fmt.Errorf("failed to set mute: %w", err)
		}
	}
	p.mu.Lock()
	p.muted = muted
	p.mu.Unlock()
	p.notify()
	return muted, nil
}

// Seek moves to fraction of the song's duration. fraction is clamped to [0,1].
func (p *Player) Seek(ctx context.Context, fraction float64) error {
	p.op.Lock()
	defer p.op.Unlock()
	return p.seekLocked(ctx, fraction)
}

func (p *Player) seekLocked(ctx context.Context, fraction float64) error {
	if math.IsNaN(fraction) {
		fraction = 0
	}
	fraction = math.Max(0, math.Min(1, fraction))

	h, song, _ := p.current()
	if h == nil || song == nil {
		return nil
	}
	total := float64(ParseDuration(song.Duration))
	secs := fraction * total
	if err := h.SeekTo(ctx, int64(secs*1000)); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	p.mu.Lock()
	p.elapsed = int(math.Floor(secs))
	p.progress = percent(secs, total)
	p.mu.Unlock()
	p.notify()
	return nil
}

// Next plays the song after the current one in list, wrapping around.
func (p *Player) Next(ctx context.Context, list []*model.Song) error {
	return p.step(ctx, list, catalog.Next)
}

// Previous plays the song before the current one in list, wrapping around.
func (p *Player) Previous(ctx context.Context, list []*model.Song) error {
	return p.step(ctx, list, catalog.Previous)
}

// step picks and starts the neighbour under one op section so a concurrent
// Toggle cannot change the current song in between.
func (p *Player) step(ctx context.Context, list []*model.Song, pick func([]*model.Song, string) string) error {
	p.op.Lock()
	defer p.op.Unlock()

	h, cur, _ := p.current()
	if cur == nil {
		return nil
	}
	currentID := catalog.SongID(cur)
	id := pick(list, currentID)
	if id == "" {
		return nil
	}
	if id == currentID {
		// single entry list: restart rather than pause
		if err := p.seekLocked(ctx, 0); err != nil {
			return err
		}
		if h != nil {
			return p.playLocked(ctx, h)
		}
		return nil
	}
	next := catalog.Find(list, id)
	if next == nil || next.AudioURL == "" {
		return ErrNoAudio
	}
	return p.startLocked(ctx, next)
}

// Reset stops and unloads the current sound, e.g. on logout.
func (p *Player) Reset(ctx context.Context) {
	p.op.Lock()
	defer p.op.Unlock()
	p.releaseLocked(ctx)
	p.notify()
}
