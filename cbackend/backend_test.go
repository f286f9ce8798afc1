package cbackend

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"unsafe"

	"github.com/richinsley/glbackend/graphics"
)

// fakeContext is a host context implemented in Go.
type fakeContext struct {
	current      bool
	swapOK       bool
	width        uint32
	height       uint32
	skipWidth    bool
	skipHeight   bool
	symbols      map[string]uintptr
	handles      []Handle
	swaps        int
	resolved     []string
	makeCurrents int
}

func newFakeContext(width, height uint32) *fakeContext {
	return &fakeContext{
		swapOK:  true,
		width:   width,
		height:  height,
		symbols: map[string]uintptr{},
	}
}

func (f *fakeContext) callbacks() Callbacks {
	return Callbacks{
		SwapBuffers: func(h Handle) bool {
			f.handles = append(f.handles, h)
			f.swaps++
			return f.swapOK
		},
		ResolveSymbol: func(h Handle, name *byte) uintptr {
			f.handles = append(f.handles, h)
			s := goString(name)
			f.resolved = append(f.resolved, s)
			return f.symbols[s]
		},
		GetFramebufferSize: func(h Handle, width, height *uint32) {
			f.handles = append(f.handles, h)
			if !f.skipWidth {
				*width = f.width
			}
			if !f.skipHeight {
				*height = f.height
			}
		},
		IsCurrent: func(h Handle) bool {
			f.handles = append(f.handles, h)
			return f.current
		},
		MakeCurrent: func(h Handle) {
			f.handles = append(f.handles, h)
			f.makeCurrents++
			f.current = true
		},
	}
}

func goString(p *byte) string {
	var b []byte
	for ; *p != 0; p = (*byte)(unsafe.Add(unsafe.Pointer(p), 1)) {
		b = append(b, *p)
	}
	return string(b)
}

func newTestBackend(f *fakeContext) (*Backend, Handle) {
	token := new(int)
	h := Handle(unsafe.Pointer(token))
	return New(h, f.callbacks()), h
}

func TestSwapBuffers(t *testing.T) {
	f := newFakeContext(1, 1)
	b, _ := newTestBackend(f)

	if err := b.SwapBuffers(); err != nil {
		t.Fatalf("SwapBuffers() = %v, want nil", err)
	}

	f.swapOK = false
	for i := 0; i < 2; i++ {
		if err := b.SwapBuffers(); !errors.Is(err, graphics.ErrContextLost) {
			t.Fatalf("SwapBuffers() = %v, want ErrContextLost", err)
		}
	}
	if f.swaps != 3 {
		t.Errorf("swap callback called %d times, want 3", f.swaps)
	}
}

func TestResolveSymbol(t *testing.T) {
	f := newFakeContext(1, 1)
	f.symbols["glClear"] = 0xdead0
	f.symbols["glViewport"] = 0xbeef0
	b, _ := newTestBackend(f)

	tests := []struct {
		name string
		want uintptr
	}{
		{"glClear", 0xdead0},
		{"glViewport", 0xbeef0},
		{"glMissing", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := b.ResolveSymbol(tt.name); got != tt.want {
			t.Errorf("ResolveSymbol(%q) = %#x, want %#x", tt.name, got, tt.want)
		}
	}
	if len(f.resolved) != len(tests) {
		t.Fatalf("resolver called %d times, want %d", len(f.resolved), len(tests))
	}
	for i, tt := range tests {
		if f.resolved[i] != tt.name {
			t.Errorf("resolver call %d got %q, want %q", i, f.resolved[i], tt.name)
		}
	}
}

func TestResolveSymbolEmbeddedNUL(t *testing.T) {
	f := newFakeContext(1, 1)
	f.symbols["glClear"] = 0x10
	b, _ := newTestBackend(f)

	for _, name := range []string{"glClear\x00", "gl\x00Clear", "\x00"} {
		if got := b.ResolveSymbol(name); got != 0 {
			t.Errorf("ResolveSymbol(%q) = %#x, want 0", name, got)
		}
	}
	if len(f.resolved) != 0 {
		t.Errorf("resolver called for unmarshalable names: %q", f.resolved)
	}
}

func TestGetFramebufferSize(t *testing.T) {
	sizes := [][2]uint32{{0, 0}, {1, 1}, {800, 600}, {3840, 2160}, {math32Max - 1, 7}}
	for _, sz := range sizes {
		f := newFakeContext(sz[0], sz[1])
		b, _ := newTestBackend(f)
		w, h := b.GetFramebufferSize()
		if w != sz[0] || h != sz[1] {
			t.Errorf("GetFramebufferSize() = (%d, %d), want (%d, %d)", w, h, sz[0], sz[1])
		}
	}
}

const math32Max = ^uint32(0)

func TestGetFramebufferSizeContractViolation(t *testing.T) {
	tests := []struct {
		name       string
		skipWidth  bool
		skipHeight bool
	}{
		{"width unset", true, false},
		{"height unset", false, true},
		{"both unset", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeContext(640, 480)
			f.skipWidth, f.skipHeight = tt.skipWidth, tt.skipHeight
			b, _ := newTestBackend(f)

			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("GetFramebufferSize did not panic")
				}
				ce, ok := r.(*ContractError)
				if !ok {
					t.Fatalf("panic value %T, want *ContractError", r)
				}
				if ce.Op != "GetFramebufferSize" {
					t.Errorf("ContractError.Op = %q", ce.Op)
				}
			}()
			w, h := b.GetFramebufferSize()
			t.Errorf("GetFramebufferSize() returned (%d, %d)", w, h)
		})
	}
}

func TestGetFramebufferSizeExplicitMax(t *testing.T) {
	// A host reporting MaxUint32 is indistinguishable from one that wrote
	// nothing.
	f := newFakeContext(math32Max, 10)
	b, _ := newTestBackend(f)
	defer func() {
		if recover() == nil {
			t.Fatal("GetFramebufferSize did not panic")
		}
	}()
	b.GetFramebufferSize()
}

func TestIsCurrentNotCached(t *testing.T) {
	f := newFakeContext(1, 1)
	b, _ := newTestBackend(f)

	if b.IsCurrent() {
		t.Fatal("IsCurrent() = true, want false")
	}
	f.current = true
	if !b.IsCurrent() {
		t.Fatal("IsCurrent() = false after host became current")
	}
	f.current = false
	if b.IsCurrent() {
		t.Fatal("IsCurrent() = true after host lost current")
	}
}

func TestMakeCurrentForwardsEveryCall(t *testing.T) {
	f := newFakeContext(1, 1)
	b, _ := newTestBackend(f)

	for i := 1; i <= 3; i++ {
		b.MakeCurrent()
		if f.makeCurrents != i {
			t.Fatalf("after %d calls host saw %d", i, f.makeCurrents)
		}
	}
}

func TestHandlePassedUnchanged(t *testing.T) {
	f := newFakeContext(4, 4)
	b, h := newTestBackend(f)

	b.SwapBuffers()
	b.ResolveSymbol("glFlush")
	b.GetFramebufferSize()
	b.IsCurrent()
	b.MakeCurrent()

	if len(f.handles) != 5 {
		t.Fatalf("got %d callback invocations, want 5", len(f.handles))
	}
	for i, got := range f.handles {
		if got != h {
			t.Errorf("callback %d got handle %p, want %p", i, got, h)
		}
	}
	if b.Handle() != h {
		t.Errorf("Handle() = %p, want %p", b.Handle(), h)
	}
}

func TestEndToEnd(t *testing.T) {
	f := newFakeContext(800, 600)
	var gb graphics.Backend
	gb, _ = newTestBackend(f)

	if gb.IsCurrent() {
		t.Fatal("IsCurrent() = true before MakeCurrent")
	}
	gb.MakeCurrent()
	if !gb.IsCurrent() {
		t.Fatal("IsCurrent() = false after MakeCurrent")
	}
	if w, h := gb.GetFramebufferSize(); w != 800 || h != 600 {
		t.Fatalf("GetFramebufferSize() = (%d, %d), want (800, 600)", w, h)
	}
	for i := 0; i < 3; i++ {
		if err := gb.SwapBuffers(); err != nil {
			t.Fatalf("SwapBuffers() #%d = %v", i, err)
		}
	}
}

func TestSwapBuffersLogsContextLoss(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })

	f := newFakeContext(1, 1)
	f.swapOK = false
	b, _ := newTestBackend(f)
	b.SwapBuffers()

	if !strings.Contains(buf.String(), "swap buffers failed") {
		t.Errorf("log output %q does not mention the failed swap", buf.String())
	}
}

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger is enabled")
	}
}
