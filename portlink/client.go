// Package portlink reads live battery-container telemetry from a port's
// shore-side controller over Modbus-TCP: the port's actual ready/total
// container counts and background charging power. The scheduler polls and
// logs these readings; they are not written into the solver's route inputs.
package portlink

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/goburrow/modbus"
)

// Register layout of the shore-side container controller (input registers,
// function code 0x04). All power and energy values are scaled by 1000 and
// transmitted as signed 32-bit words, matching the scaling convention the
// teacher's Sigenergy register map uses.
const (
	regReadyContainers      = 0
	regTotalContainers      = 2
	regBackgroundPowerKW    = 4 // scaled x1000
	regBufferEnergyKWh      = 6 // scaled x1000
	regLastSwapEpochSeconds = 8
)

// controllerAddress is the fixed Modbus unit id the shore controllers are
// provisioned with; individual ports are distinguished by TCP endpoint, not
// by unit id.
const controllerAddress = 1

// Client talks to one port's shore-side container controller.
type Client struct {
	client  modbus.Client
	handler *modbus.TCPClientHandler
}

// Dial opens a Modbus-TCP connection to a port controller at address
// (host:port).
func Dial(address string, timeout time.Duration) (*Client, error) {
	handler := modbus.NewTCPClientHandler(address)
	handler.SlaveId = controllerAddress
	handler.Timeout = timeout

	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to port controller at %s: %w", address, err)
	}

	return &Client{
		client:  modbus.NewClient(handler),
		handler: handler,
	}, nil
}

// Close releases the underlying TCP connection.
func (c *Client) Close() error {
	return c.handler.Close()
}

// Telemetry is one snapshot of a port's container-swap readiness.
type Telemetry struct {
	ReadyContainers   int
	TotalContainers   int
	BackgroundPowerKW float64
	BufferEnergyKWh   float64
	LastSwapAt        time.Time
}

// Read fetches the controller's current telemetry snapshot.
func (c *Client) Read() (*Telemetry, error) {
	data, err := c.client.ReadInputRegisters(0, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to read port controller registers: %w", err)
	}

	// Each register is two bytes wide in the response payload.
	lastSwap := bytesToU32(data[2*regLastSwapEpochSeconds : 2*regLastSwapEpochSeconds+4])

	t := &Telemetry{
		ReadyContainers:   int(bytesToU16(data[2*regReadyContainers : 2*regReadyContainers+2])),
		TotalContainers:   int(bytesToU16(data[2*regTotalContainers : 2*regTotalContainers+2])),
		BackgroundPowerKW: float64(bytesToS32(data[2*regBackgroundPowerKW:2*regBackgroundPowerKW+4])) / 1000.0,
		BufferEnergyKWh:   float64(bytesToS32(data[2*regBufferEnergyKWh:2*regBufferEnergyKWh+4])) / 1000.0,
	}
	if lastSwap > 0 {
		t.LastSwapAt = time.Unix(int64(lastSwap), 0).UTC()
	}
	return t, nil
}

// ConfirmSwap writes back the containers-swapped count so the shore
// controller can reconcile its own inventory bookkeeping against the
// vessel's executed trajectory. Holding registers live at the same offsets
// as their input-register counterparts, function code 0x06.
func (c *Client) ConfirmSwap(containersSwapped int) error {
	_, err := c.client.WriteSingleRegister(regReadyContainers, uint16(containersSwapped))
	if err != nil {
		return fmt.Errorf("failed to confirm swap with port controller: %w", err)
	}
	return nil
}

func bytesToU16(data []byte) uint16 {
	return binary.BigEndian.Uint16(data)
}

func bytesToS32(data []byte) int32 {
	return int32(binary.BigEndian.Uint32(data))
}

func bytesToU32(data []byte) uint32 {
	return binary.BigEndian.Uint32(data)
}
