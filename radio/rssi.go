package radio

// AmbientScan holds the result of probing every channel in the fixed
// probe set for ambient noise.
type AmbientScan struct {
	Channels []uint8
	Raw      []byte
	DBm      []float64
}

// scanAmbient probes each channel in ambientProbeChannels with the
// "ambient RSSI" option bit enabled, retaining the maximum raw sample
// seen over up to maxAmbientSamples queries, then restores the operating
// channel without the ambient bit set.
func (d *Driver) scanAmbient() (AmbientScan, error) {
	result := AmbientScan{
		Channels: ambientProbeChannels[:],
		Raw:      make([]byte, len(ambientProbeChannels)),
		DBm:      make([]float64, len(ambientProbeChannels)),
	}

	for i, ch := range ambientProbeChannels {
		if err := d.setChannelOption(ch, d.img[RegOptions]|OptRSSIOnReceive); err != nil {
			return AmbientScan{}, ErrRSSIScan
		}

		var max byte
		for n := 0; n < maxAmbientSamples; n++ {
			raw, err := readRSSI(d.port)
			if err != nil {
				return AmbientScan{}, ErrRSSIScan
			}
			if raw > max {
				max = raw
			}
		}
		result.Raw[i] = max
		result.DBm[i] = float64(max) * 0.5
	}

	if err := d.setChannelOption(d.channel, d.img[RegOptions]&^OptRSSIOnReceive); err != nil {
		return AmbientScan{}, ErrRSSIScan
	}

	d.lastScan = result
	return result, nil
}

// setChannelOption writes the channel and option-byte registers together
// and updates the in-memory image on success.
func (d *Driver) setChannelOption(channel uint8, options byte) error {
	if err := writeRegisters(d.port, RegChannel, []byte{channel, options}); err != nil {
		return err
	}
	d.img[RegChannel] = channel
	d.img[RegOptions] = options
	return nil
}
