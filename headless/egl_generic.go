//go:build !linux || !cgo

package headless

import (
	"fmt"

	"github.com/richinsley/glbackend/cbackend"
)

// Headless is unavailable on this platform.
type Headless struct{}

func NewHeadless(width, height, glMajor, glMinor int) (*Headless, error) {
	return nil, fmt.Errorf("egl headless rendering is not supported on this platform")
}

func (h *Headless) Backend() *cbackend.Backend { return nil }

func (h *Headless) Shutdown() {}
