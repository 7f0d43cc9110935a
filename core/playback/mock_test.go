package playback

import "sync"

// mockHandle records stop/volume calls from the scheduler.
type mockHandle struct {
	mu      sync.Mutex
	url     string
	loop    bool
	volume  float64
	stopped bool
	onEnded func()
}

func (h *mockHandle) Stop() {
	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()
}

func (h *mockHandle) SetVolume(v float64) {
	h.mu.Lock()
	h.volume = v
	h.mu.Unlock()
}

func (h *mockHandle) isStopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

func (h *mockHandle) currentVolume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

// finish simulates the asset reaching its natural end.
func (h *mockHandle) finish() {
	if h.onEnded != nil {
		h.onEnded()
	}
}

// mockPlayer captures every Play call and can fail selected URLs.
type mockPlayer struct {
	mu       sync.Mutex
	handles  []*mockHandle
	failWith map[string]error
}

func newMockPlayer() *mockPlayer {
	return &mockPlayer{failWith: map[string]error{}}
}

func (p *mockPlayer) Play(assetURL string, opts PlayOptions) (Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.failWith[assetURL]; ok {
		return nil, err
	}
	h := &mockHandle{
		url:     assetURL,
		loop:    opts.Loop,
		volume:  opts.Volume,
		onEnded: opts.OnEnded,
	}
	p.handles = append(p.handles, h)
	return h, nil
}

func (p *mockPlayer) playCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handles)
}

func (p *mockPlayer) handle(i int) *mockHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handles[i]
}

func (p *mockPlayer) urls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.handles))
	for i, h := range p.handles {
		out[i] = h.url
	}
	return out
}

// identityResolver passes catalog asset paths through unchanged.
var identityResolver = ResolverFunc(func(assetPath string) (string, error) {
	return assetPath, nil
})
