package gripper

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdzio/go-urcap/xmlrpc"
)

type failingRegisters struct{}

func (failingRegisters) ReadRegister(uint16) (uint16, error) {
	return 0, errors.New("modbus failed reading")
}

func (failingRegisters) WriteRegister(uint16, uint16) error {
	return errors.New("modbus failed writing")
}

func TestGripper(t *testing.T) {
	regs := &SimRegisters{BusyReads: 2}
	g := &Gripper{Registers: regs}

	assert.False(t, g.IsGripDetected())
	assert.True(t, g.Grip(50, 10.9))
	v, _ := regs.ReadRegister(WidthAddress)
	assert.Equal(t, uint16(50), v)
	v, _ = regs.ReadRegister(ForceAddress)
	assert.Equal(t, uint16(10), v)
	v, _ = regs.ReadRegister(ActionAddress)
	assert.Equal(t, uint16(GripAction), v)

	assert.True(t, g.IsBusy())
	assert.True(t, g.IsBusy())
	assert.False(t, g.IsBusy())
	assert.True(t, g.IsGripDetected())

	assert.True(t, g.Release(80))
	v, _ = regs.ReadRegister(ActionAddress)
	assert.Equal(t, uint16(ReleaseAction), v)
	assert.False(t, g.IsGripDetected())

	assert.False(t, g.Grip(-1, 10))
	assert.False(t, g.Release(70000))
}

func TestGripperFailingRegisters(t *testing.T) {
	g := &Gripper{Registers: failingRegisters{}}
	assert.False(t, g.Grip(50, 10))
	assert.False(t, g.Release(50))
	assert.False(t, g.IsBusy())
	assert.False(t, g.IsGripDetected())
}

func TestRegister(t *testing.T) {
	h := &xmlrpc.Handler{Dispatcher: &xmlrpc.BasicDispatcher{}}
	Register(h, &Gripper{Registers: &SimRegisters{BusyReads: 1}})
	srv := httptest.NewServer(h)
	defer srv.Close()
	cln := &xmlrpc.Client{Addr: srv.URL}

	res, err := cln.Call("grip", xmlrpc.Number(50), xmlrpc.Number(10))
	require.NoError(t, err)
	assert.Equal(t, xmlrpc.Bool(true), res)

	res, err = cln.Call("is_busy")
	require.NoError(t, err)
	assert.Equal(t, xmlrpc.Bool(true), res)
	res, err = cln.Call("is_busy")
	require.NoError(t, err)
	assert.Equal(t, xmlrpc.Bool(false), res)

	res, err = cln.Call("is_grip_detected")
	require.NoError(t, err)
	assert.Equal(t, xmlrpc.Bool(true), res)

	res, err = cln.Call("release", xmlrpc.Number(50))
	require.NoError(t, err)
	assert.Equal(t, xmlrpc.Bool(true), res)

	_, err = cln.Call("grip", xmlrpc.Number(50))
	var fault *xmlrpc.MethodError
	assert.True(t, errors.As(err, &fault), "unexpected error: %v", err)
}
