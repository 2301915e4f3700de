package gripper

import (
	"sync"
)

// SimRegisters simulates the registers of a gripper. After an action the busy
// bit is reported for BusyReads reads of the status register. A grip always
// detects an object.
type SimRegisters struct {
	BusyReads int

	mutex sync.Mutex
	regs  map[uint16]uint16
	busy  int
}

// ReadRegister implements Registers.
func (s *SimRegisters) ReadRegister(address uint16) (uint16, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	v := s.regs[address]
	if address == StatusAddress && s.busy > 0 {
		s.busy--
		v |= BusyBit
	}
	log.Tracef("SIMULATOR: Reading %d from register %d", v, address)
	return v, nil
}

// WriteRegister implements Registers.
func (s *SimRegisters) WriteRegister(address, value uint16) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	log.Tracef("SIMULATOR: Writing %d to register %d", value, address)
	if s.regs == nil {
		s.regs = make(map[uint16]uint16)
	}
	s.regs[address] = value
	if address == ActionAddress {
		switch value {
		case GripAction:
			s.regs[StatusAddress] = GripDetectedBit
		case ReleaseAction:
			s.regs[StatusAddress] = 0
		}
		s.busy = s.BusyReads
	}
	return nil
}
