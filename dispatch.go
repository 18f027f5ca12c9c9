package cellgrid

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

// DefaultCellsPerGroup is the default compute work-group size. It only
// affects dispatch overhead and load balance, never the simulation result.
const DefaultCellsPerGroup = 50

var errZeroGroupSize = errors.New("cellgrid: cells per group must be positive")

// WorkgroupCount returns ceil(total/perGroup), the number of work-groups
// needed so that every cell gets one invocation.
func WorkgroupCount(total, perGroup uint32) (uint32, error) {
	if perGroup == 0 {
		return 0, errZeroGroupSize
	}
	return uint32((uint64(total) + uint64(perGroup) - 1) / uint64(perGroup)), nil
}

// CheckLimits verifies that a grid can be simulated on a device with the
// given limits using perGroup invocations per work-group. It is run once
// before the first frame so that oversized grids fail with a configuration
// error instead of a device error mid-session.
func CheckLimits(g GridSpec, perGroup uint32, limits gputypes.Limits) error {
	if g.TotalCells == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyGrid, g)
	}
	groups, err := WorkgroupCount(g.TotalCells, perGroup)
	if err != nil {
		return err
	}
	if perGroup > limits.MaxComputeInvocationsPerWorkgroup {
		return fmt.Errorf("%w: %d cells per group, device allows %d invocations per work-group",
			ErrDeviceLimit, perGroup, limits.MaxComputeInvocationsPerWorkgroup)
	}
	if perGroup > limits.MaxComputeWorkgroupSizeX {
		return fmt.Errorf("%w: %d cells per group, device allows work-group size x of %d",
			ErrDeviceLimit, perGroup, limits.MaxComputeWorkgroupSizeX)
	}
	if groups > limits.MaxComputeWorkgroupsPerDimension {
		return fmt.Errorf("%w: %d work-groups for %d cells, device allows %d",
			ErrDeviceLimit, groups, g.TotalCells, limits.MaxComputeWorkgroupsPerDimension)
	}
	size := g.StateBytes()
	if size > limits.MaxStorageBufferBindingSize {
		return fmt.Errorf("%w: state buffer of %d bytes, device allows storage bindings of %d",
			ErrDeviceLimit, size, limits.MaxStorageBufferBindingSize)
	}
	if limits.MaxBufferSize != 0 && size > limits.MaxBufferSize {
		return fmt.Errorf("%w: state buffer of %d bytes, device allows buffers of %d",
			ErrDeviceLimit, size, limits.MaxBufferSize)
	}
	return nil
}
