//go:build cgo

// Package cfake provides a context implemented in C for exercising the cgo
// bridge of cbackend. Test files cannot use cgo directly.
package cfake

/*
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>
#include <string.h>

typedef struct {
	bool current;
	bool swap_ok;
	bool set_size;
	uint32_t width;
	uint32_t height;
	int swaps;
	int make_current_calls;
	int resolve_calls;
	char last_symbol[64];
} fake_ctx;

static bool fake_swap_buffers(void *data) {
	fake_ctx *c = data;
	c->swaps++;
	return c->swap_ok;
}

static const void *fake_resolve_symbol(void *data, const char *name) {
	fake_ctx *c = data;
	c->resolve_calls++;
	strncpy(c->last_symbol, name, sizeof(c->last_symbol) - 1);
	c->last_symbol[sizeof(c->last_symbol) - 1] = '\0';
	if (strncmp(name, "gl", 2) != 0) {
		return NULL;
	}
	return (const void *)(uintptr_t)(0x1000 + strlen(name));
}

static void fake_framebuffer_size(void *data, uint32_t *width, uint32_t *height) {
	fake_ctx *c = data;
	if (!c->set_size) {
		return;
	}
	*width = c->width;
	*height = c->height;
}

static bool fake_is_current(void *data) {
	fake_ctx *c = data;
	return c->current;
}

static void fake_make_current(void *data) {
	fake_ctx *c = data;
	c->make_current_calls++;
	c->current = true;
}

static fake_ctx *fake_new(uint32_t width, uint32_t height) {
	fake_ctx *c = calloc(1, sizeof(fake_ctx));
	c->swap_ok = true;
	c->set_size = true;
	c->width = width;
	c->height = height;
	return c;
}

static void *fake_swap_buffers_ptr(void) { return (void *)fake_swap_buffers; }
static void *fake_resolve_symbol_ptr(void) { return (void *)fake_resolve_symbol; }
static void *fake_framebuffer_size_ptr(void) { return (void *)fake_framebuffer_size; }
static void *fake_is_current_ptr(void) { return (void *)fake_is_current; }
static void *fake_make_current_ptr(void) { return (void *)fake_make_current; }
*/
import "C"

import (
	"unsafe"

	"github.com/richinsley/glbackend/cbackend"
)

// SymbolBase is added to the length of a resolved "gl" name to form its
// fake address.
const SymbolBase = 0x1000

// Context is a C-allocated fake context. It starts not current, with
// swapping enabled.
type Context struct {
	c *C.fake_ctx
}

func New(width, height uint32) *Context {
	return &Context{c: C.fake_new(C.uint32_t(width), C.uint32_t(height))}
}

// Free releases the C memory. The context must not be used afterwards.
func (f *Context) Free() {
	C.free(unsafe.Pointer(f.c))
	f.c = nil
}

// Data returns the pointer passed as the first argument to every callback.
func (f *Context) Data() unsafe.Pointer {
	return unsafe.Pointer(f.c)
}

func Callbacks() cbackend.CCallbacks {
	return cbackend.CCallbacks{
		SwapBuffers:        C.fake_swap_buffers_ptr(),
		ResolveSymbol:      C.fake_resolve_symbol_ptr(),
		GetFramebufferSize: C.fake_framebuffer_size_ptr(),
		IsCurrent:          C.fake_is_current_ptr(),
		MakeCurrent:        C.fake_make_current_ptr(),
	}
}

func (f *Context) SetSwapOK(ok bool)       { f.c.swap_ok = C.bool(ok) }
func (f *Context) SetCurrent(current bool) { f.c.current = C.bool(current) }

// SetSizeWritten controls whether the size callback writes its outputs.
func (f *Context) SetSizeWritten(set bool) { f.c.set_size = C.bool(set) }

func (f *Context) Swaps() int            { return int(f.c.swaps) }
func (f *Context) MakeCurrentCalls() int { return int(f.c.make_current_calls) }
func (f *Context) ResolveCalls() int     { return int(f.c.resolve_calls) }
func (f *Context) LastSymbol() string    { return C.GoString(&f.c.last_symbol[0]) }
