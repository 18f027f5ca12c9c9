package cellgrid

import "errors"

// Configuration errors. All of them are fatal at startup: they are reported
// before any window is shown or any frame is rendered.
var (
	// ErrZeroCells is returned when the requested cell count is zero.
	ErrZeroCells = errors.New("cellgrid: requested cell count must be positive")

	// ErrEmptyCanvas is returned when a canvas side is zero.
	ErrEmptyCanvas = errors.New("cellgrid: canvas width and height must be positive")

	// ErrGridInvariant is returned when the realized grid holds more cells
	// than requested.
	ErrGridInvariant = errors.New("cellgrid: realized cell count exceeds request")

	// ErrEmptyGrid is returned when a grid has no cells to simulate.
	ErrEmptyGrid = errors.New("cellgrid: grid has no cells")

	// ErrDeviceLimit is returned when the grid or work-group size does not
	// fit the device limits.
	ErrDeviceLimit = errors.New("cellgrid: device limit exceeded")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("cellgrid: invalid configuration")
)
