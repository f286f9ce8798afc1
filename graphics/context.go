package graphics

import (
	"errors"
	"unsafe"
)

// ErrContextLost is returned by SwapBuffers when the context could not
// present. It is the only error a Backend reports.
var ErrContextLost = errors.New("graphics: context lost")

// Backend defines the capability set a rendering pipeline needs from an
// OpenGL context. A Backend has a single logical owner and adds no
// synchronization of its own.
type Backend interface {
	// SwapBuffers presents the back buffer. It returns nil or ErrContextLost.
	SwapBuffers() error

	// ResolveSymbol returns the address of the named GL entry point, or 0
	// when it is not available.
	//
	// The result is a raw code address the caller will invoke. Nothing about
	// its validity is checked.
	ResolveSymbol(name string) uintptr

	// GetFramebufferSize returns the framebuffer size in pixels.
	GetFramebufferSize() (width, height uint32)

	// IsCurrent reports whether the context is current on the calling thread.
	IsCurrent() bool

	// MakeCurrent makes the context current on the calling thread. The
	// caller must be locked to its OS thread and must not share the
	// thread's current context with other GL users.
	MakeCurrent()
}

// ProcAddrFunc adapts b to the loader signature used by go-gl's
// InitWithProcAddrFunc.
func ProcAddrFunc(b Backend) func(name string) unsafe.Pointer {
	return func(name string) unsafe.Pointer {
		addr := b.ResolveSymbol(name)
		if addr == 0 {
			return nil
		}
		return *(*unsafe.Pointer)(unsafe.Pointer(&addr))
	}
}
