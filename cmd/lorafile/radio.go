package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/loratools/lorafile/radio"
	"github.com/loratools/lorafile/radio/gpio"
	"github.com/loratools/lorafile/serialport"
)

// radioFlags carries the connection parameters shared by send and receive.
type radioFlags struct {
	device     string
	baud       int
	channel    uint8
	addressHex string
	m0Pin      string
	m1Pin      string
	lbt        bool
}

func addRadioFlags(cmd *cobra.Command, flags *radioFlags) {
	cmd.Flags().StringVar(&flags.device, "device", "", "serial device path (required)")
	cmd.Flags().IntVar(&flags.baud, "baud", 9600, "serial baud rate")
	cmd.Flags().Uint8Var(&flags.channel, "channel", 42, "LoRa channel")
	cmd.Flags().StringVar(&flags.addressHex, "address", "0000", "16-bit station address, hex")
	cmd.Flags().StringVar(&flags.m0Pin, "m0-pin", "GPIO17", "GPIO line wired to the module's M0 pin")
	cmd.Flags().StringVar(&flags.m1Pin, "m1-pin", "GPIO27", "GPIO line wired to the module's M1 pin")
	cmd.Flags().BoolVar(&flags.lbt, "listen-before-talk", false, "sense the channel before every transmit")
	cmd.MarkFlagRequired("device")
}

func (f *radioFlags) address() (uint16, error) {
	v, err := strconv.ParseUint(f.addressHex, 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// openDriver constructs a radio.Driver bound to the flags' device, GPIO
// pins, address, and channel. The PortOpener it hands the driver reopens
// the same serial device on every mode transition.
func openDriver(f *radioFlags) (*radio.Driver, error) {
	addr, err := f.address()
	if err != nil {
		return nil, err
	}

	pins, err := gpio.Open(f.m0Pin, f.m1Pin)
	if err != nil {
		return nil, err
	}

	open := func() (serialport.Port, error) {
		return serialport.Open(f.device, f.baud)
	}

	return radio.NewWithOptions(open, pins, addr, f.channel, f.lbt), nil
}
