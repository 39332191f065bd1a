// Command mcu-firmware is the RP2040/RP2350 entry point: it brings up the
// real peripherals via mcufw and hands them to mcucore.Core, which owns the
// cooperative task loop for the remainder of the program's life.
//
//go:build rp2040 || rp2350

package main

import (
	"time"

	"github.com/Ymit24/too-hot-to-prandtl-control-system/mcucore"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/mcufw"
)

func main() {
	time.Sleep(100 * time.Millisecond) // let USB-CDC enumerate before first write

	dev := mcufw.New()
	core := mcucore.New(dev, nil)

	done := make(chan struct{})
	core.Run(done)
}
