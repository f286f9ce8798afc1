package glfwcontext

import (
	"fmt"
	"log"
	"runtime"
	"unsafe"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/glbackend/cbackend"
	"github.com/richinsley/glbackend/options"
)

// Context owns a GLFW window and exposes its GL context as a backend.
type Context struct {
	window *glfw.Window
	// keyCallbacks are run when the key is pressed.
	keyCallbacks map[glfw.Key]func()
}

// New creates a GLFW window. InitGraphics must have been called on the main
// thread first.
func New(opts *options.Options, visible bool) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, opts.GLMajor)
	glfw.WindowHint(glfw.ContextVersionMinor, opts.GLMinor)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create glfw window: %w", err)
	}

	c := &Context{
		window:       win,
		keyCallbacks: make(map[glfw.Key]func()),
	}
	win.SetKeyCallback(c.glfwKeyCallback)

	return c, nil
}

// RegisterKeyCallback registers f to be called when key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
	if action == glfw.Press {
		if callback, ok := c.keyCallbacks[key]; ok {
			callback()
		}
	}
}

// Backend wraps the window's GL context. The Backend must not be used after
// Shutdown.
func (c *Context) Backend() *cbackend.Backend {
	return cbackend.New(cbackend.Handle(unsafe.Pointer(c.window)), Callbacks())
}

// Callbacks returns the GLFW implementation of the backend callbacks. The
// handle passed to each one must be a *glfw.Window.
func Callbacks() cbackend.Callbacks {
	return cbackend.Callbacks{
		SwapBuffers: func(h cbackend.Handle) bool {
			// glfwSwapBuffers has no failure result; errors surface through
			// the GLFW error callback instead.
			window(h).SwapBuffers()
			return true
		},
		ResolveSymbol: func(_ cbackend.Handle, name *byte) uintptr {
			return uintptr(glfw.GetProcAddress(goString(name)))
		},
		GetFramebufferSize: func(h cbackend.Handle, width, height *uint32) {
			w, ht := window(h).GetFramebufferSize()
			*width, *height = uint32(w), uint32(ht)
		},
		IsCurrent: func(h cbackend.Handle) bool {
			return glfw.GetCurrentContext() == window(h)
		},
		MakeCurrent: func(h cbackend.Handle) {
			window(h).MakeContextCurrent()
		},
	}
}

func window(h cbackend.Handle) *glfw.Window {
	return (*glfw.Window)(unsafe.Pointer(h))
}

// goString copies a NUL-terminated name.
func goString(p *byte) string {
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

// DetachCurrent makes no context current on the calling thread.
func (c *Context) DetachCurrent() {
	glfw.DetachCurrentContext()
}

// Window returns the underlying *glfw.Window.
func (c *Context) Window() *glfw.Window {
	return c.window
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) PollEvents() {
	glfw.PollEvents()
}

// Shutdown destroys the window. Any Backend obtained from c must already be
// dropped.
func (c *Context) Shutdown() {
	c.window.Destroy()
}

// InitGraphics initializes GLFW. Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts GLFW down. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}
