//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu"

	// Register all available backends (Vulkan, Metal, DX12, GLES, software).
	_ "github.com/gogpu/wgpu/hal/allbackends"
)

// ErrNoSurface is returned by surface operations on a headless Context.
var ErrNoSurface = errors.New("gpu: context has no surface")

// Options configures Open.
type Options struct {
	// Display and Window are the native handles of the target window. Both
	// zero opens a headless context.
	Display uintptr
	Window  uintptr

	// PowerPreference selects the adapter. The zero value lets the
	// implementation decide.
	PowerPreference wgpu.PowerPreference

	// ForceFallback requests the software adapter.
	ForceFallback bool
}

// Context owns the instance, adapter, device and optional surface of one
// session.
type Context struct {
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
}

// Open creates an instance, an optional window surface, a compatible
// adapter and a device.
func Open(opts Options) (*Context, error) {
	c := &Context{}
	ok := false
	defer func() {
		if !ok {
			c.Release()
		}
	}()

	var err error
	c.instance, err = wgpu.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}

	if opts.Window != 0 {
		c.surface, err = c.instance.CreateSurface(opts.Display, opts.Window)
		if err != nil {
			return nil, fmt.Errorf("gpu: create surface: %w", err)
		}
	}

	c.adapter, err = c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference:      opts.PowerPreference,
		ForceFallbackAdapter: opts.ForceFallback,
		CompatibleSurface:    c.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: request adapter: %w", err)
	}

	// Zero limits request the adapter's own limits.
	c.device, err = c.adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "cellgrid"})
	if err != nil {
		return nil, fmt.Errorf("gpu: request device: %w", err)
	}
	c.queue = c.device.Queue()

	slogger().Info("gpu: device ready",
		"adapter", c.adapter.Info().Name,
		"surface", c.surface != nil)
	ok = true
	return c, nil
}

// Device returns the logical device.
func (c *Context) Device() *wgpu.Device { return c.device }

// Queue returns the device queue.
func (c *Context) Queue() *wgpu.Queue { return c.queue }

// Limits returns the device limits.
func (c *Context) Limits() wgpu.Limits { return c.device.Limits() }

// AdapterName returns the human-readable adapter name.
func (c *Context) AdapterName() string { return c.adapter.Info().Name }

// HasSurface reports whether the context was opened with a window.
func (c *Context) HasSurface() bool { return c.surface != nil }

// SurfaceCapabilities returns the formats, present modes and alpha modes the
// adapter supports for the window surface.
func (c *Context) SurfaceCapabilities() (*wgpu.SurfaceCapabilities, error) {
	if c.surface == nil {
		return nil, ErrNoSurface
	}
	caps := c.adapter.GetSurfaceCapabilities(c.surface)
	if caps == nil {
		return nil, fmt.Errorf("gpu: adapter %q reports no surface capabilities", c.AdapterName())
	}
	return caps, nil
}

// WaitIdle blocks until all submitted work has completed.
func (c *Context) WaitIdle() error {
	if c.device == nil {
		return nil
	}
	if err := c.device.WaitIdle(); err != nil {
		return fmt.Errorf("gpu: wait idle: %w", err)
	}
	return nil
}

// Release waits for the device to go idle and releases everything in
// reverse creation order. It is safe to call on a partly opened Context.
func (c *Context) Release() {
	if c.device != nil {
		if err := c.device.WaitIdle(); err != nil {
			slogger().Warn("gpu: wait idle", "err", err)
		}
		c.device.Release()
		c.device = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.surface != nil {
		c.surface.Release()
		c.surface = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
	c.queue = nil
}
