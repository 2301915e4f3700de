/*
Package gripper provides the methods of the XML-RPC gripper sample backend. The
gripper is controlled through the registers of the tool interface.
*/
package gripper

import (
	"fmt"
	"math"

	"github.com/mdzio/go-logging"

	"github.com/mdzio/go-urcap/xmlrpc"
)

var log = logging.Get("gripper")

// Register addresses
const (
	ActionAddress = 1
	StatusAddress = 2
	WidthAddress  = 3
	ForceAddress  = 4
)

// Values of the action register
const (
	GripAction    = 5
	ReleaseAction = 6
)

// Bits of the status register
const (
	BusyBit         = 1
	GripDetectedBit = 2
)

// Registers provides access to the holding registers of the tool.
type Registers interface {
	ReadRegister(address uint16) (uint16, error)
	WriteRegister(address, value uint16) error
}

// Gripper controls a gripper. Failed register accesses are logged and
// reported as false.
type Gripper struct {
	Registers Registers
}

// Grip closes the gripper with the specified width and force.
func (g *Gripper) Grip(width, force float64) bool {
	err := g.write(
		WidthAddress, width,
		ForceAddress, force,
		ActionAddress, GripAction,
	)
	if err != nil {
		log.Errorf("Grip failed: %v", err)
		return false
	}
	return true
}

// Release opens the gripper to the specified width.
func (g *Gripper) Release(width float64) bool {
	err := g.write(
		WidthAddress, width,
		ActionAddress, ReleaseAction,
	)
	if err != nil {
		log.Errorf("Release failed: %v", err)
		return false
	}
	return true
}

// IsBusy returns true, while the gripper is moving.
func (g *Gripper) IsBusy() bool {
	return g.status(BusyBit)
}

// IsGripDetected returns true, if an object is held.
func (g *Gripper) IsGripDetected() bool {
	return g.status(GripDetectedBit)
}

func (g *Gripper) status(bit uint16) bool {
	s, err := g.Registers.ReadRegister(StatusAddress)
	if err != nil {
		log.Errorf("Reading of status register failed: %v", err)
		return false
	}
	return s&bit == bit
}

// write writes pairs of address and value. Values are truncated to integers.
func (g *Gripper) write(pairs ...float64) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		addr, v := uint16(pairs[i]), math.Trunc(pairs[i+1])
		if v < 0 || v > math.MaxUint16 || math.IsNaN(v) {
			return fmt.Errorf("Value out of range for register %d: %v", addr, pairs[i+1])
		}
		log.Debugf("Writing %d to register %d", uint16(v), addr)
		if err := g.Registers.WriteRegister(addr, uint16(v)); err != nil {
			return err
		}
	}
	return nil
}

// Register adds the gripper methods grip, release, is_busy and
// is_grip_detected to the dispatcher.
func Register(d xmlrpc.Dispatcher, g *Gripper) {
	d.HandleFunc("grip", func(args xmlrpc.Array) (xmlrpc.Value, error) {
		q := xmlrpc.Q(args)
		width := q.Idx(0).Float64()
		force := q.Idx(1).Float64()
		if q.Err() != nil {
			return nil, fmt.Errorf("Invalid arguments for grip: %v", q.Err())
		}
		return xmlrpc.Bool(g.Grip(width, force)), nil
	})
	d.SetHelp("grip", "Closes the gripper. Arguments: width, force.")

	d.HandleFunc("release", func(args xmlrpc.Array) (xmlrpc.Value, error) {
		q := xmlrpc.Q(args)
		width := q.Idx(0).Float64()
		if q.Err() != nil {
			return nil, fmt.Errorf("Invalid arguments for release: %v", q.Err())
		}
		return xmlrpc.Bool(g.Release(width)), nil
	})
	d.SetHelp("release", "Opens the gripper. Arguments: width.")

	d.HandleFunc("is_busy", func(xmlrpc.Array) (xmlrpc.Value, error) {
		return xmlrpc.Bool(g.IsBusy()), nil
	})
	d.SetHelp("is_busy", "Returns true, while the gripper is moving.")

	d.HandleFunc("is_grip_detected", func(xmlrpc.Array) (xmlrpc.Value, error) {
		return xmlrpc.Bool(g.IsGripDetected()), nil
	})
	d.SetHelp("is_grip_detected", "Returns true, if an object is held.")
}
