package radio

import (
	"time"

	"github.com/loratools/lorafile/serialport"
)

// image is the 9-byte configuration register image described in the data
// model. It lives for the lifetime of the driver.
type image [ConfigImageSize]byte

func defaultImage(address uint16, channel uint8, lbt bool) image {
	var img image
	img[RegAddrHigh] = byte(address >> 8)
	img[RegAddrLow] = byte(address)
	img[RegNetworkID] = 0
	img[RegUARTAir] = 0x62 // 9600 baud, 8N1, 62.5 kbps air rate
	img[RegPowerOpts] = 0  // 240-byte packets, ambient-noise enabled, 22 dBm
	img[RegChannel] = channel
	img[RegOptions] = OptRSSIOnReceive
	if lbt {
		img[RegOptions] |= OptLBTEnable
	}
	img[RegKeyHigh] = 0
	img[RegKeyLow] = 0
	return img
}

// writeRegisters writes K bytes at offset O and verifies the module's echo,
// per the C2/C1 configuration protocol.
func writeRegisters(port serialport.Port, offset byte, data []byte) error {
	cmd := make([]byte, 3+len(data))
	cmd[0] = cmdWriteHeader
	cmd[1] = offset
	cmd[2] = byte(len(data))
	copy(cmd[3:], data)

	if err := serialport.WriteFull(port, cmd); err != nil {
		return err
	}

	echo, err := readExactly(port, len(cmd), configTimeout)
	if err != nil {
		return err
	}

	if echo[0] != cmdWriteEcho || echo[1] != offset || echo[2] != byte(len(data)) {
		return ErrConfigEcho
	}
	for i, b := range data {
		if echo[3+i] != b {
			return ErrConfigMismatch
		}
	}
	return nil
}

// readRSSI issues the fixed 6-byte read-RSSI command and returns the raw
// fourth response byte (dBm magnitude x2).
func readRSSI(port serialport.Port) (byte, error) {
	if err := serialport.WriteFull(port, rssiQueryCommand[:]); err != nil {
		return 0, err
	}
	resp, err := readExactly(port, 4, configTimeout)
	if err != nil {
		return 0, err
	}
	return resp[3], nil
}

// readExactly blocks, polling BytesAvailable/ReadUpTo, until n bytes have
// arrived or deadline elapses.
func readExactly(port serialport.Port, n int, timeout time.Duration) ([]byte, error) {
	out := make([]byte, 0, n)
	deadline := time.Now().Add(timeout)

	for len(out) < n {
		avail, err := port.BytesAvailable()
		if err != nil {
			return nil, err
		}
		if avail > 0 {
			want := n - len(out)
			if avail < want {
				want = avail
			}
			buf := make([]byte, want)
			got, err := port.ReadUpTo(buf)
			if err != nil {
				return nil, err
			}
			out = append(out, buf[:got]...)
			continue
		}

		if time.Now().After(deadline) {
			return out, errConfigTimeout
		}
		time.Sleep(2 * time.Millisecond)
	}
	return out, nil
}
