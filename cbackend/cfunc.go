//go:build cgo

package cbackend

/*
#include <stdbool.h>
#include <stdint.h>

typedef bool (*cb_swap_buffers_fn)(void *data);
typedef const void *(*cb_resolve_symbol_fn)(void *data, const char *name);
typedef void (*cb_framebuffer_size_fn)(void *data, uint32_t *width, uint32_t *height);
typedef bool (*cb_is_current_fn)(void *data);
typedef void (*cb_make_current_fn)(void *data);

static bool cb_swap_buffers(void *fn, void *data) {
	return ((cb_swap_buffers_fn)fn)(data);
}

static const void *cb_resolve_symbol(void *fn, void *data, const char *name) {
	return ((cb_resolve_symbol_fn)fn)(data, name);
}

static void cb_framebuffer_size(void *fn, void *data, uint32_t *width, uint32_t *height) {
	((cb_framebuffer_size_fn)fn)(data, width, height);
}

static bool cb_is_current(void *fn, void *data) {
	return ((cb_is_current_fn)fn)(data);
}

static void cb_make_current(void *fn, void *data) {
	((cb_make_current_fn)fn)(data);
}
*/
import "C"

import "unsafe"

// CCallbacks holds C function pointers with these signatures:
//
//	bool        swap_buffers(void *data);
//	const void *resolve_symbol(void *data, const char *name);
//	void        framebuffer_size(void *data, uint32_t *width, uint32_t *height);
//	bool        is_current(void *data);
//	void        make_current(void *data);
type CCallbacks struct {
	SwapBuffers        unsafe.Pointer
	ResolveSymbol      unsafe.Pointer
	GetFramebufferSize unsafe.Pointer
	IsCurrent          unsafe.Pointer
	MakeCurrent        unsafe.Pointer
}

// NewFromC wraps a context managed by C code. data is handed to every
// function in cb as its first argument.
//
// The same guarantees as New apply: data and every function pointer must
// stay valid for the lifetime of the returned Backend.
func NewFromC(data unsafe.Pointer, cb CCallbacks) *Backend {
	return New(Handle(data), Callbacks{
		SwapBuffers: func(h Handle) bool {
			return bool(C.cb_swap_buffers(cb.SwapBuffers, unsafe.Pointer(h)))
		},
		ResolveSymbol: func(h Handle, name *byte) uintptr {
			return uintptr(C.cb_resolve_symbol(cb.ResolveSymbol, unsafe.Pointer(h), (*C.char)(unsafe.Pointer(name))))
		},
		GetFramebufferSize: func(h Handle, width, height *uint32) {
			C.cb_framebuffer_size(cb.GetFramebufferSize, unsafe.Pointer(h),
				(*C.uint32_t)(unsafe.Pointer(width)), (*C.uint32_t)(unsafe.Pointer(height)))
		},
		IsCurrent: func(h Handle) bool {
			return bool(C.cb_is_current(cb.IsCurrent, unsafe.Pointer(h)))
		},
		MakeCurrent: func(h Handle) {
			C.cb_make_current(cb.MakeCurrent, unsafe.Pointer(h))
		},
	})
}
