package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"soundwave/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLoader tracks every handle it creates and how many are loaded at once.
type fakeLoader struct {
	mu        sync.Mutex
	handles   []*fakeHandle
	loaded    int
	maxLoaded int
	log       []string
	failNext  error
}

func (l *fakeLoader) Load(_ context.Context, url string, opts LoadOptions) (AudioHandle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failNext != nil {
		err := l.failNext
		l.failNext = nil
		return nil, err
	}
	h := &fakeHandle{loader: l, url: url, opts: opts, playing: opts.AutoPlay, muted: opts.Muted}
	l.handles = append(l.handles, h)
	l.loaded++
	if l.loaded > l.maxLoaded {
		l.maxLoaded = l.loaded
	}
	l.log = append(l.log, "load "+url)
	return h, nil
}

func (l *fakeLoader) record(entry string) {
	l.mu.Lock()
	l.log = append(l.log, entry)
	l.mu.Unlock()
}

func (l *fakeLoader) events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.log...)
}

func (l *fakeLoader) last() *fakeHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handles[len(l.handles)-1]
}

type fakeHandle struct {
	loader *fakeLoader
	url    string
	opts   LoadOptions

	mu       sync.Mutex
	playing  bool
	muted    bool
	stopped  bool
	unloaded bool
	seekedTo int64
	cb       func(Status)
}

func (h *fakeHandle) Play(context.Context) error {
	h.mu.Lock()
	h.playing = true
	h.mu.Unlock()
	h.loader.record("play " + h.url)
	return nil
}

func (h *fakeHandle) Pause(context.Context) error {
	h.mu.Lock()
	h.playing = false
	h.mu.Unlock()
	h.loader.record("pause " + h.url)
	return nil
}

func (h *fakeHandle) Stop(context.Context) error {
	h.mu.Lock()
	h.stopped = true
	h.playing = false
	h.mu.Unlock()
	h.loader.record("stop " + h.url)
	return nil
}

func (h *fakeHandle) Unload(context.Context) error {
	h.mu.Lock()
	h.unloaded = true
	h.mu.Unlock()
	h.loader.mu.Lock()
	h.loader.loaded--
	h.loader.log = append(h.loader.log, "unload "+h.url)
	h.loader.mu.Unlock()
	return nil
}

func (h *fakeHandle) SetMuted(_ context.Context, muted bool) error {
	h.mu.Lock()
	h.muted = muted
	h.mu.Unlock()
	return nil
}

func (h *fakeHandle) SeekTo(_ context.Context, ms int64) error {
	h.mu.Lock()
	h.seekedTo = ms
	h.mu.Unlock()
	return nil
}

func (h *fakeHandle) Status(context.Context) (Status, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Status{Loaded: !h.unloaded, Playing: h.playing}, nil
}

func (h *fakeHandle) OnStatus(fn func(Status)) {
	h.mu.Lock()
	h.cb = fn
	h.mu.Unlock()
}

func (h *fakeHandle) emit(st Status) {
	h.mu.Lock()
	cb := h.cb
	h.mu.Unlock()
	if cb != nil {
		cb(st)
	}
}

func song(id, duration string) *model.Song {
	return &model.Song{Key: id, Title: "Song " + id, Duration: duration, AudioURL: "https://audio/" + id + ".mp3"}
}

func TestToggle_SameSongPausesAndResumes(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader)
	ctx := context.Background()
	a := song("a", "3:42")

	require.NoError(t, p.Toggle(ctx, a))
	snap := p.Snapshot()
	assert.True(t, snap.Playing)
	assert.Equal(t, "a", snap.Song.Key)
	assert.True(t, loader.last().opts.AutoPlay)

	require.NoError(t, p.Toggle(ctx, a))
	assert.False(t, p.Snapshot().Playing)

	require.NoError(t, p.Toggle(ctx, a))
	assert.True(t, p.Snapshot().Playing)

	assert.Equal(t, []string{"load https://audio/a.mp3", "pause https://audio/a.mp3", "play https://audio/a.mp3"}, loader.events())
}

func TestToggle_NewSongReleasesPreviousFirst(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader)
	ctx := context.Background()

	require.NoError(t, p.Toggle(ctx, song("a", "3:42")))
	first := loader.last()
	require.NoError(t, p.Toggle(ctx, song("b", "4:15")))

	assert.True(t, first.stopped)
	assert.True(t, first.unloaded)
	assert.Equal(t, []string{
		"load https://audio/a.mp3",
		"stop https://audio/a.mp3",
		"unload https://audio/a.mp3",
		"load https://audio/b.mp3",
	}, loader.events())
	assert.Equal(t, 1, loader.maxLoaded)
	assert.Equal(t, "b", p.Snapshot().Song.Key)
}

func TestToggle_NoAudioIsNoop(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader)
	ctx := context.Background()

	require.NoError(t, p.Toggle(ctx, song("a", "3:42")))
	silent := &model.Song{Key: "s", Title: "Silent"}

	assert.ErrorIs(t, p.Toggle(ctx, silent), ErrNoAudio)
	assert.ErrorIs(t, p.Toggle(ctx, nil), ErrNoAudio)
	assert.Equal(t, "a", p.Snapshot().Song.Key)
	assert.True(t, p.Snapshot().Playing)
	assert.Len(t, loader.events(), 1)
}

func TestToggle_LoadFailureLeavesNothingLoaded(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader)
	ctx := context.Background()

	require.NoError(t, p.Toggle(ctx, song("a", "3:42")))
	loader.failNext = errors.New("decoder error")

	assert.Error(t, p.Toggle(ctx, song("b", "4:15")))
	snap := p.Snapshot()
	assert.Nil(t, snap.Song)
	assert.False(t, snap.Playing)
	assert.Equal(t, 0, loader.loaded)
}

func TestConcurrentToggles_NeverTwoLoaded(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = p.Toggle(ctx, song(fmt.Sprintf("s%d", i%5), "3:00"))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, loader.maxLoaded)
	assert.Equal(t, 1, loader.loaded)
}

func TestStatusUpdatesProgress(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader)
	ctx := context.Background()

	require.NoError(t, p.Toggle(ctx, song("a", "4:00")))
	h := loader.last()

	h.emit(Status{Loaded: true, Playing: true, PositionMillis: 60500})
	snap := p.Snapshot()
	assert.Equal(t, 60, snap.Elapsed)
	assert.InDelta(t, 25.208, snap.Progress, 0.01)

	h.emit(Status{Loaded: false, PositionMillis: 1000})
	assert.Equal(t, 60, p.Snapshot().Elapsed, "unloaded reports are ignored")

	h.emit(Status{Loaded: true, PositionMillis: 999999})
	assert.Equal(t, 100.0, p.Snapshot().Progress)

	h.emit(Status{Loaded: true, PositionMillis: 240000, DidJustFinish: true})
	assert.False(t, p.Snapshot().Playing)
}

func TestStatusFromReplacedHandleIsIgnored(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader)
	ctx := context.Background()

	require.NoError(t, p.Toggle(ctx, song("a", "3:00")))
	old := loader.last()
	require.NoError(t, p.Toggle(ctx, song("b", "3:00")))

	old.emit(Status{Loaded: true, PositionMillis: 90000})
	assert.Equal(t, 0, p.Snapshot().Elapsed)
}

func TestZeroDurationHasZeroProgress(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader)

	require.NoError(t, p.Toggle(context.Background(), song("a", "")))
	loader.last().emit(Status{Loaded: true, PositionMillis: 5000})
	assert.Equal(t, 5, p.Snapshot().Elapsed)
	assert.Equal(t, 0.0, p.Snapshot().Progress)
}

func TestPlayPause(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader)
	ctx := context.Background()

	require.NoError(t, p.PlayPause(ctx), "no sound is a no-op")

	require.NoError(t, p.Toggle(ctx, song("a", "3:00")))
	require.NoError(t, p.PlayPause(ctx))
	assert.False(t, p.Snapshot().Playing)
	require.NoError(t, p.PlayPause(ctx))
	assert.True(t, p.Snapshot().Playing)
}

func TestToggleMute_AppliesToCurrentAndNextSound(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader)
	ctx := context.Background()

	muted, err := p.ToggleMute(ctx)
	require.NoError(t, err)
	assert.True(t, muted)

	require.NoError(t, p.Toggle(ctx, song("a", "3:00")))
	assert.True(t, loader.last().opts.Muted)

	muted, err = p.ToggleMute(ctx)
	require.NoError(t, err)
	assert.False(t, muted)
	assert.False(t, loader.last().muted)
	assert.False(t, p.Snapshot().Muted)
}

func TestSeekClamps(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader)
	ctx := context.Background()

	require.NoError(t, p.Seek(ctx, 0.5), "no sound is a no-op")
	require.NoError(t, p.Toggle(ctx, song("a", "4:00")))

	require.NoError(t, p.Seek(ctx, 0.5))
	assert.Equal(t, int64(120000), loader.last().seekedTo)
	assert.Equal(t, 120, p.Snapshot().Elapsed)
	assert.Equal(t, 50.0, p.Snapshot().Progress)

	require.NoError(t, p.Seek(ctx, 1.7))
	assert.Equal(t, int64(240000), loader.last().seekedTo)
	assert.Equal(t, 100.0, p.Snapshot().Progress)

	require.NoError(t, p.Seek(ctx, -3))
	assert.Equal(t, int64(0), loader.last().seekedTo)
	assert.Equal(t, 0, p.Snapshot().Elapsed)
}

func TestNextPrevious(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader)
	ctx := context.Background()
	list := []*model.Song{song("a", "3:00"), song("b", "3:00"), song("c", "3:00")}

	require.NoError(t, p.Next(ctx, list), "nothing playing is a no-op")
	assert.Empty(t, loader.events())

	require.NoError(t, p.Toggle(ctx, list[2]))
	require.NoError(t, p.Next(ctx, list))
	assert.Equal(t, "a", p.Snapshot().Song.Key)

	require.NoError(t, p.Previous(ctx, list))
	assert.Equal(t, "c", p.Snapshot().Song.Key)

	require.NoError(t, p.Next(ctx, list[:1]), "current not in list")
	assert.Equal(t, "c", p.Snapshot().Song.Key)
	assert.Equal(t, 1, loader.maxLoaded)
}

func TestSeekWithUnknownDurationKeepsZeroProgress(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader)
	ctx := context.Background()

	require.NoError(t, p.Toggle(ctx, song("a", "live")))
	require.NoError(t, p.Seek(ctx, 0.5))

	snap := p.Snapshot()
	assert.Equal(t, 0.0, snap.Progress)
	assert.Equal(t, 0, snap.Elapsed)
	assert.Equal(t, int64(0), loader.last().seekedTo)
}

func TestConcurrentNextAdvancesOncePerCall(t *testing.T) {
	ctx := context.Background()
	list := []*model.Song{song("a", "3:00"), song("b", "3:00"), song("c", "3:00")}

	for trial := 0; trial < 20; trial++ {
		loader := &fakeLoader{}
		p := New(loader)
		require.NoError(t, p.Toggle(ctx, list[0]))

		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, p.Next(ctx, list))
			}()
		}
		wg.Wait()

		snap := p.Snapshot()
		require.NotNil(t, snap.Song)
		assert.Equal(t, "c", snap.Song.Key, "trial %d", trial)
		assert.True(t, snap.Playing, "trial %d", trial)
		assert.Equal(t, 1, loader.maxLoaded)
	}
}

func TestNextOnSingleEntryRestarts(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader)
	ctx := context.Background()
	only := []*model.Song{song("a", "3:00")}

	require.NoError(t, p.Toggle(ctx, only[0]))
	require.NoError(t, p.Seek(ctx, 0.5))
	require.NoError(t, p.Next(ctx, only))

	snap := p.Snapshot()
	assert.True(t, snap.Playing)
	assert.Equal(t, 0, snap.Elapsed)
	assert.Equal(t, int64(0), loader.last().seekedTo)
	assert.Len(t, loader.handles, 1)
}

func TestResetReleasesSound(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader)
	ctx := context.Background()

	require.NoError(t, p.Toggle(ctx, song("a", "3:00")))
	p.Reset(ctx)

	assert.True(t, loader.last().unloaded)
	assert.Nil(t, p.Snapshot().Song)
	assert.Equal(t, 0, loader.loaded)
}

func TestSubscribeSharesState(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader)
	ctx := context.Background()

	var mu sync.Mutex
	var seen []Snapshot
	cancel := p.Subscribe(func(s Snapshot) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	require.NoError(t, p.Toggle(ctx, song("a", "3:00")))
	loader.last().emit(Status{Loaded: true, PositionMillis: 30000})

	mu.Lock()
	require.NotEmpty(t, seen)
	last := seen[len(seen)-1]
	count := len(seen)
	mu.Unlock()
	assert.Equal(t, "a", last.Song.Key)
	assert.Equal(t, 30, last.Elapsed)

	cancel()
	cancel()
	require.NoError(t, p.Toggle(ctx, song("a", "3:00")))
	mu.Lock()
	assert.Equal(t, count, len(seen))
	mu.Unlock()
}

func TestSnapshotIsACopy(t *testing.T) {
	p := New(&fakeLoader{})
	require.NoError(t, p.Toggle(context.Background(), song("a", "3:00")))

	snap := p.Snapshot()
	snap.Song.Title = "changed"
	assert.Equal(t, "Song a", p.Snapshot().Song.Title)
}
