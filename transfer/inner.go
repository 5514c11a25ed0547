package transfer

import "hash/crc32"

// BuildInnerPayload constructs the pre-compression inner layout: one byte
// name length, the name, a NUL byte, then the raw file bytes.
func BuildInnerPayload(name string, data []byte) []byte {
	nameBytes := []byte(name)
	out := make([]byte, 1+len(nameBytes)+1+len(data))
	out[0] = byte(len(nameBytes))
	copy(out[1:], nameBytes)
	out[1+len(nameBytes)] = 0
	copy(out[2+len(nameBytes):], data)
	return out
}

// IntegrityHash is computed over the inner layout, before compression.
func IntegrityHash(inner []byte) uint32 {
	return crc32.ChecksumIEEE(inner)
}

// ParseInnerPayload reads the name length, forces a NUL terminator at the
// byte that follows the name (matching a C-string reader even if the
// sender's byte there was something else), and returns the name and the
// remaining file bytes. It mutates buf in place at the NUL position.
func ParseInnerPayload(buf []byte) (name string, data []byte, ok bool) {
	if len(buf) < 2 {
		return "", nil, false
	}
	n := int(buf[0])
	if 1+n+1 > len(buf) {
		return "", nil, false
	}
	buf[1+n] = 0
	name = string(buf[1 : 1+n])
	data = buf[2+n:]
	return name, data, true
}
