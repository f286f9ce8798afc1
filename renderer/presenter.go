package renderer

import (
	"context"
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/glbackend/graphics"
)

// Presenter drives frames on a graphics.Backend: it keeps the context
// current, draws at the framebuffer size and swaps. A Presenter must be used
// from the goroutine that owns the backend's OS thread.
type Presenter struct {
	backend     graphics.Backend
	loader      func(graphics.Backend) error
	draw        func(width, height uint32)
	shouldClose func() bool
	pollEvents  func()
	clearColor  [4]float32
	frame       int
}

type Option func(*Presenter)

// WithLoader replaces the GL function loader run by Init.
func WithLoader(f func(graphics.Backend) error) Option {
	return func(p *Presenter) { p.loader = f }
}

// WithDraw replaces the per-frame draw function.
func WithDraw(f func(width, height uint32)) Option {
	return func(p *Presenter) { p.draw = f }
}

// WithShouldClose sets the host's close signal, checked before each frame.
func WithShouldClose(f func() bool) Option {
	return func(p *Presenter) { p.shouldClose = f }
}

// WithPollEvents sets a function run after each swap.
func WithPollEvents(f func()) Option {
	return func(p *Presenter) { p.pollEvents = f }
}

func WithClearColor(c [4]float32) Option {
	return func(p *Presenter) { p.clearColor = c }
}

func NewPresenter(b graphics.Backend, opts ...Option) *Presenter {
	p := &Presenter{
		backend:     b,
		loader:      loadGL,
		shouldClose: func() bool { return false },
		pollEvents:  func() {},
		clearColor:  [4]float32{0, 0, 0, 1},
	}
	p.draw = p.clear
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func loadGL(b graphics.Backend) error {
	return gl.InitWithProcAddrFunc(graphics.ProcAddrFunc(b))
}

func (p *Presenter) clear(width, height uint32) {
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(p.clearColor[0], p.clearColor[1], p.clearColor[2], p.clearColor[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (p *Presenter) ensureCurrent() {
	if !p.backend.IsCurrent() {
		p.backend.MakeCurrent()
	}
}

// Init makes the context current and loads GL entry points through the
// backend.
func (p *Presenter) Init() error {
	p.ensureCurrent()
	if err := p.loader(p.backend); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	return nil
}

// Frame draws and presents one frame. A lost context is returned wrapped;
// test for it with errors.Is(err, graphics.ErrContextLost).
func (p *Presenter) Frame() error {
	p.ensureCurrent()
	width, height := p.backend.GetFramebufferSize()
	p.draw(width, height)
	if err := p.backend.SwapBuffers(); err != nil {
		return fmt.Errorf("frame %d: %w", p.frame, err)
	}
	p.frame++
	p.pollEvents()
	return nil
}

// Frames returns the number of frames presented so far.
func (p *Presenter) Frames() int {
	return p.frame
}

// Run presents frames until n frames have been shown, the host asks to
// close or ctx is done. n == 0 means no frame limit.
func (p *Presenter) Run(ctx context.Context, n int) error {
	for i := 0; n == 0 || i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.shouldClose() {
			return nil
		}
		if err := p.Frame(); err != nil {
			return err
		}
	}
	return nil
}
