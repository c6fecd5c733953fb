package isolation

import (
	"fmt"
	"strconv"
	"strings"
)

// DeviceDecorator restricts a spawned process to a set of accelerator devices
// by prefixing the CUDA_VISIBLE_DEVICES value onto the command. The value is
// scoped to that process only; it does not leak into the launcher environment.
type DeviceDecorator struct {
	devices []int
}

// NewDeviceDecorator is a constructor for DeviceDecorator object.
func NewDeviceDecorator(devices ...int) DeviceDecorator {
	return DeviceDecorator{
		devices: devices,
	}
}

// Decorate implements Decorator interface.
// An empty device list renders an empty value, which hides all devices from
// the process (CUDA semantics).
func (d DeviceDecorator) Decorate(command string) string {
	var devicesStr []string
	for _, value := range d.devices {
		if value >= 0 {
			devicesStr = append(devicesStr, strconv.Itoa(value))
		}
	}

	return fmt.Sprintf("CUDA_VISIBLE_DEVICES=%s %s", strings.Join(devicesStr, ","), command)
}
