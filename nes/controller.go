package nes

import (
	"github.com/faiface/pixel/pixelgl"
)

// Controller implements the real NES input protocol: writing a 1 to $4016
// latches the current button state, and each subsequent read while strobe
// is low shifts the next button bit out of bit 0, starting with A.
type Controller struct {
	buttonState []bool // Key press state: on/off

	shiftReg byte
	strobe   bool
}

func NewController() *Controller {
	return &Controller{
		buttonState: make([]bool, len(controllerKeys)),
	}
}

func (c *Controller) latch() byte {
	var b byte
	for i := len(controllerKeys) - 1; i >= 0; i-- {
		b <<= 1
		if c.buttonState[i] {
			b |= 1
		}
	}
	return b
}

// writeStrobe handles a write to $4016: while strobe stays high the
// register continuously re-latches button A; on the high-to-low transition
// the snapshot is frozen for the read sequence that follows.
func (c *Controller) writeStrobe(data byte) {
	c.strobe = data&0x01 != 0
	if c.strobe {
		c.shiftReg = c.latch()
	}
}

// readPort1 shifts one bit out of the latched register per call, with the
// upper bits set per the real hardware's open-bus convention.
func (c *Controller) readPort1() byte {
	if c.strobe {
		c.shiftReg = c.latch()
	}

	bit := c.shiftReg & 0x01
	c.shiftReg >>= 1
	c.shiftReg |= 0x80

	return 0x40 | bit
}

// readPort2 stands in for a second controller that is never attached; the
// shift register always reads back zero bits on an open bus.
func (c *Controller) readPort2() byte {
	return 0x40
}

// Available NES controller buttons and their keyboard binds
// Keyboard binds:
/*
	0: A      ---> J
	1: B      ---> K
	2: Select ---> Right Shift
	3: Start  ---> Enter
	4: Up     ---> W
	5: Down   ---> S
	6: Left   ---> A
	7: Right  ---> D
*/
const (
	keyA int = iota
	keyB
	keySelect
	keyStart
	keyUp
	keyDown
	keyLeft
	keyRight
)

var controllerKeys = map[int]pixelgl.Button{
	keyA:      pixelgl.KeyJ,
	keyB:      pixelgl.KeyK,
	keySelect: pixelgl.KeyRightShift,
	keyStart:  pixelgl.KeyEnter,
	keyUp:     pixelgl.KeyW,
	keyDown:   pixelgl.KeyS,
	keyLeft:   pixelgl.KeyA,
	keyRight:  pixelgl.KeyD,
}

func (c *Controller) updateControllerInput(win *pixelgl.Window) {
	// Key down
	for idx, key := range controllerKeys {
		if win.JustPressed(key) {
			c.buttonState[idx] = true
		}
	}
	// Key up
	for idx, key := range controllerKeys {
		if win.JustReleased(key) {
			c.buttonState[idx] = false
		}

	}
}
