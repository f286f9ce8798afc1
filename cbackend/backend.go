// Package cbackend implements graphics.Backend on top of a context owned
// outside of Go: an opaque handle plus five callbacks supplied by the host.
//
// Callbacks use C-compatible values. Symbol names are passed as
// NUL-terminated bytes and the framebuffer size is written through
// out-parameters.
//
// A Backend adds no synchronization. The host must keep the handle and the
// callbacks valid for as long as the Backend is in use, and must drop the
// Backend no later than it destroys the context.
package cbackend

import (
	"fmt"
	"log/slog"
	"math"
	"unsafe"

	"github.com/richinsley/glbackend/graphics"
)

// Handle is an opaque token identifying the host context. It is passed to
// every callback unchanged and never dereferenced.
type Handle unsafe.Pointer

type (
	// SwapBuffersFunc presents the back buffer and reports success.
	SwapBuffersFunc func(h Handle) bool
	// ResolveSymbolFunc returns the address of the NUL-terminated symbol
	// name, or 0 if it is unknown.
	ResolveSymbolFunc func(h Handle, name *byte) uintptr
	// FramebufferSizeFunc must store the framebuffer size through width
	// and height.
	FramebufferSizeFunc func(h Handle, width, height *uint32)
	// IsCurrentFunc reports whether the context is current on the calling
	// thread.
	IsCurrentFunc func(h Handle) bool
	// MakeCurrentFunc makes the context current on the calling thread.
	MakeCurrentFunc func(h Handle)
)

// Callbacks is the set of host functions a Backend forwards to.
type Callbacks struct {
	SwapBuffers        SwapBuffersFunc
	ResolveSymbol      ResolveSymbolFunc
	GetFramebufferSize FramebufferSizeFunc
	IsCurrent          IsCurrentFunc
	MakeCurrent        MakeCurrentFunc
}

// sizeUnset marks a framebuffer dimension the host did not write.
const sizeUnset = math.MaxUint32

// ContractError is the panic value raised when the host breaks the callback
// contract. It is never returned as an error.
type ContractError struct {
	Op     string
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("cbackend: %s: %s", e.Op, e.Reason)
}

// Backend forwards the graphics.Backend operations to host callbacks.
type Backend struct {
	handle Handle
	cb     Callbacks
}

var _ graphics.Backend = (*Backend)(nil)

// New wraps the host context h.
//
// Nothing is validated. By calling New the caller guarantees that h and
// every callback in cb stay valid for the lifetime of the returned Backend
// and that the callbacks behave as documented on their types. Breaking that
// guarantee is undefined behavior.
func New(h Handle, cb Callbacks) *Backend {
	return &Backend{handle: h, cb: cb}
}

// Handle returns the wrapped host token.
func (b *Backend) Handle() Handle {
	return b.handle
}

// SwapBuffers returns graphics.ErrContextLost if the host reports failure.
func (b *Backend) SwapBuffers() error {
	if !b.cb.SwapBuffers(b.handle) {
		Logger().Debug("swap buffers failed", slog.Any("handle", uintptr(b.handle)))
		return graphics.ErrContextLost
	}
	return nil
}

// ResolveSymbol returns whatever the host resolver returns for name. A name
// containing a NUL byte resolves to 0 without reaching the host.
//
// The returned address is not validated in any way.
func (b *Backend) ResolveSymbol(name string) uintptr {
	cname, ok := CString(name)
	if !ok {
		Logger().Debug("symbol name contains NUL", slog.String("name", name))
		return 0
	}
	return b.cb.ResolveSymbol(b.handle, &cname[0])
}

// GetFramebufferSize panics with a *ContractError if the host leaves either
// dimension unset.
func (b *Backend) GetFramebufferSize() (uint32, uint32) {
	width, height := uint32(sizeUnset), uint32(sizeUnset)
	b.cb.GetFramebufferSize(b.handle, &width, &height)
	if width == sizeUnset || height == sizeUnset {
		panic(&ContractError{Op: "GetFramebufferSize", Reason: "host did not set width and height"})
	}
	return width, height
}

func (b *Backend) IsCurrent() bool {
	return b.cb.IsCurrent(b.handle)
}

// MakeCurrent changes the calling thread's current context. The caller must
// be locked to its OS thread and must coordinate with any other GL user on
// that thread.
func (b *Backend) MakeCurrent() {
	b.cb.MakeCurrent(b.handle)
}
