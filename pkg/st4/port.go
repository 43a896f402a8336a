package st4

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// BaudRate is the fixed line speed of the ST4 USB serial link.
const BaudRate = 57600

// Port is the serial transport the client writes commands to.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// OpenPort opens name at 57600 8N1. A timeout <= 0 blocks reads forever.
func OpenPort(name string, timeout time.Duration) (Port, error) {
	mode := &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}

	if timeout <= 0 {
		timeout = serial.NoTimeout
	}
	if err := p.SetReadTimeout(timeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	return p, nil
}

// ListPorts returns the serial ports present on the system.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
