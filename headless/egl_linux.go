//go:build linux && cgo

package headless

import (
	"fmt"
	"log"
	"unsafe"

	"github.com/richinsley/glbackend/cbackend"
)

/*
#cgo LDFLAGS: -lEGL
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>
#include <EGL/egl.h>
#include <EGL/eglext.h>

// Go doesn't have a great way to call function pointers from C,
// so we'll create simple wrappers for the extension functions.
static PFNEGLQUERYDEVICESEXTPROC eglQueryDevicesEXT_ptr = NULL;
static PFNEGLGETPLATFORMDISPLAYEXTPROC eglGetPlatformDisplayEXT_ptr = NULL;

static void initialize_egl_extension_pointers() {
    eglQueryDevicesEXT_ptr = (PFNEGLQUERYDEVICESEXTPROC) eglGetProcAddress("eglQueryDevicesEXT");
    eglGetPlatformDisplayEXT_ptr = (PFNEGLGETPLATFORMDISPLAYEXTPROC) eglGetProcAddress("eglGetPlatformDisplayEXT");
}

static EGLDisplay get_platform_display(EGLenum platform, void *native_display, const EGLint *attrib_list) {
    if (eglGetPlatformDisplayEXT_ptr) {
        return eglGetPlatformDisplayEXT_ptr(platform, native_display, attrib_list);
    }
    return EGL_NO_DISPLAY;
}

static EGLBoolean query_devices(EGLint max_devices, EGLDeviceEXT *devices, EGLint *num_devices) {
    if (eglQueryDevicesEXT_ptr) {
        return eglQueryDevicesEXT_ptr(max_devices, devices, num_devices);
    }
    return EGL_FALSE;
}

typedef struct {
    EGLDisplay display;
    EGLSurface surface;
    EGLContext context;
} egl_host;

static egl_host *egl_host_new(void) {
    egl_host *h = calloc(1, sizeof(egl_host));
    h->display = EGL_NO_DISPLAY;
    h->surface = EGL_NO_SURFACE;
    h->context = EGL_NO_CONTEXT;
    return h;
}

static bool egl_host_swap_buffers(void *data) {
    egl_host *h = data;
    return eglSwapBuffers(h->display, h->surface) == EGL_TRUE;
}

static const void *egl_host_resolve_symbol(void *data, const char *name) {
    return (const void *)eglGetProcAddress(name);
}

static void egl_host_framebuffer_size(void *data, uint32_t *width, uint32_t *height) {
    egl_host *h = data;
    EGLint v;
    if (eglQuerySurface(h->display, h->surface, EGL_WIDTH, &v) == EGL_TRUE) {
        *width = (uint32_t)v;
    }
    if (eglQuerySurface(h->display, h->surface, EGL_HEIGHT, &v) == EGL_TRUE) {
        *height = (uint32_t)v;
    }
}

static bool egl_host_is_current(void *data) {
    egl_host *h = data;
    return eglGetCurrentContext() == h->context;
}

static void egl_host_make_current(void *data) {
    egl_host *h = data;
    eglMakeCurrent(h->display, h->surface, h->surface, h->context);
}

static void *egl_host_swap_buffers_ptr(void) { return (void *)egl_host_swap_buffers; }
static void *egl_host_resolve_symbol_ptr(void) { return (void *)egl_host_resolve_symbol; }
static void *egl_host_framebuffer_size_ptr(void) { return (void *)egl_host_framebuffer_size; }
static void *egl_host_is_current_ptr(void) { return (void *)egl_host_is_current; }
static void *egl_host_make_current_ptr(void) { return (void *)egl_host_make_current; }
*/
import "C"

// Headless is an EGL pbuffer context. Its state lives in C memory and is
// exposed to the adapter through C callbacks.
type Headless struct {
	host *C.egl_host
}

// getEGLDisplay tries the robust device enumeration method first,
// falling back to the default display.
func getEGLDisplay() (C.EGLDisplay, error) {
	C.initialize_egl_extension_pointers()

	var num_devices C.EGLint
	if C.query_devices(0, nil, &num_devices) == C.EGL_FALSE || num_devices == 0 {
		log.Println("Warning: EGL_EXT_device_query not supported or no devices found. Falling back to EGL_DEFAULT_DISPLAY.")
		display := C.eglGetDisplay(C.EGLNativeDisplayType(C.EGL_DEFAULT_DISPLAY))
		if display == C.EGLDisplay(C.EGL_NO_DISPLAY) {
			return C.EGLDisplay(C.EGL_NO_DISPLAY), fmt.Errorf("fallback to eglGetDisplay(EGL_DEFAULT_DISPLAY) failed")
		}
		return display, nil
	}

	log.Printf("Found %d EGL device(s).", num_devices)
	devices := make([]C.EGLDeviceEXT, num_devices)
	if C.query_devices(num_devices, &devices[0], &num_devices) == C.EGL_FALSE {
		return C.EGLDisplay(C.EGL_NO_DISPLAY), fmt.Errorf("failed to query EGL devices")
	}

	// In an NVIDIA Docker container, the first usable device is the GPU.
	for i := 0; i < int(num_devices); i++ {
		display := C.get_platform_display(C.EGL_PLATFORM_DEVICE_EXT, unsafe.Pointer(devices[i]), nil)
		if display != C.EGLDisplay(C.EGL_NO_DISPLAY) {
			log.Printf("Successfully got EGL display from device %d.", i)
			return display, nil
		}
	}

	return C.EGLDisplay(C.EGL_NO_DISPLAY), fmt.Errorf("could not get a valid EGL display from any available device")
}

// NewHeadless creates a desktop GL core-profile context of the given version
// rendering to a width x height pbuffer. The context is not made current.
func NewHeadless(width, height, glMajor, glMinor int) (*Headless, error) {
	h := &Headless{host: C.egl_host_new()}

	display, err := getEGLDisplay()
	if err != nil {
		h.Shutdown()
		return nil, fmt.Errorf("failed to get EGL display: %w", err)
	}
	h.host.display = display

	var major, minor C.EGLint
	if C.eglInitialize(display, &major, &minor) == C.EGL_FALSE {
		h.Shutdown()
		return nil, fmt.Errorf("failed to initialize EGL")
	}
	log.Printf("EGL Initialized. Version: %d.%d", major, minor)

	if C.eglBindAPI(C.EGL_OPENGL_API) == C.EGL_FALSE {
		h.Shutdown()
		return nil, fmt.Errorf("failed to bind the OpenGL API")
	}

	configAttribs := []C.EGLint{
		C.EGL_SURFACE_TYPE, C.EGL_PBUFFER_BIT,
		C.EGL_RED_SIZE, 8,
		C.EGL_GREEN_SIZE, 8,
		C.EGL_BLUE_SIZE, 8,
		C.EGL_ALPHA_SIZE, 8,
		C.EGL_DEPTH_SIZE, 24,
		C.EGL_RENDERABLE_TYPE, C.EGL_OPENGL_BIT,
		C.EGL_NONE,
	}

	var config C.EGLConfig
	var numConfig C.EGLint
	if C.eglChooseConfig(display, &configAttribs[0], &config, 1, &numConfig) == C.EGL_FALSE || numConfig == 0 {
		h.Shutdown()
		return nil, fmt.Errorf("failed to choose EGL config")
	}

	pbufferAttribs := []C.EGLint{
		C.EGL_WIDTH, C.EGLint(width),
		C.EGL_HEIGHT, C.EGLint(height),
		C.EGL_NONE,
	}
	h.host.surface = C.eglCreatePbufferSurface(display, config, &pbufferAttribs[0])
	if h.host.surface == C.EGLSurface(C.EGL_NO_SURFACE) {
		h.Shutdown()
		return nil, fmt.Errorf("failed to create Pbuffer surface")
	}

	contextAttribs := []C.EGLint{
		C.EGL_CONTEXT_MAJOR_VERSION, C.EGLint(glMajor),
		C.EGL_CONTEXT_MINOR_VERSION, C.EGLint(glMinor),
		C.EGL_CONTEXT_OPENGL_PROFILE_MASK, C.EGL_CONTEXT_OPENGL_CORE_PROFILE_BIT,
		C.EGL_NONE,
	}
	h.host.context = C.eglCreateContext(display, config, C.EGLContext(C.EGL_NO_CONTEXT), &contextAttribs[0])
	if h.host.context == C.EGLContext(C.EGL_NO_CONTEXT) {
		h.Shutdown()
		return nil, fmt.Errorf("failed to create EGL context")
	}

	return h, nil
}

// Backend wraps the pbuffer context. The Backend must not be used after
// Shutdown.
func (h *Headless) Backend() *cbackend.Backend {
	return cbackend.NewFromC(unsafe.Pointer(h.host), cbackend.CCallbacks{
		SwapBuffers:        C.egl_host_swap_buffers_ptr(),
		ResolveSymbol:      C.egl_host_resolve_symbol_ptr(),
		GetFramebufferSize: C.egl_host_framebuffer_size_ptr(),
		IsCurrent:          C.egl_host_is_current_ptr(),
		MakeCurrent:        C.egl_host_make_current_ptr(),
	})
}

// Shutdown destroys the context and surface and releases the host state.
func (h *Headless) Shutdown() {
	if h.host == nil {
		return
	}
	if h.host.display != C.EGLDisplay(C.EGL_NO_DISPLAY) {
		C.eglMakeCurrent(h.host.display, C.EGLSurface(C.EGL_NO_SURFACE), C.EGLSurface(C.EGL_NO_SURFACE), C.EGLContext(C.EGL_NO_CONTEXT))
		if h.host.context != C.EGLContext(C.EGL_NO_CONTEXT) {
			C.eglDestroyContext(h.host.display, h.host.context)
		}
		if h.host.surface != C.EGLSurface(C.EGL_NO_SURFACE) {
			C.eglDestroySurface(h.host.display, h.host.surface)
		}
		C.eglTerminate(h.host.display)
	}
	C.free(unsafe.Pointer(h.host))
	h.host = nil
}
