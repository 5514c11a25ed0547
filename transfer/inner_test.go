package transfer

import (
	"bytes"
	"testing"
)

func TestBuildInnerPayloadLayout(t *testing.T) {
	got := BuildInnerPayload("hello", []byte("HI"))
	want := []byte{0x05, 'h', 'e', 'l', 'l', 'o', 0x00, 'H', 'I'}
	if !bytes.Equal(got, want) {
		t.Errorf("BuildInnerPayload() = %x, want %x", got, want)
	}
}

func TestParseInnerPayloadRoundTrip(t *testing.T) {
	inner := BuildInnerPayload("report.txt", []byte("contents"))
	name, data, ok := ParseInnerPayload(inner)
	if !ok {
		t.Fatal("ParseInnerPayload returned ok=false")
	}
	if name != "report.txt" {
		t.Errorf("name = %q, want %q", name, "report.txt")
	}
	if !bytes.Equal(data, []byte("contents")) {
		t.Errorf("data = %q, want %q", data, "contents")
	}
}

func TestParseInnerPayloadForcesNULTerminator(t *testing.T) {
	inner := BuildInnerPayload("x", []byte("y"))
	inner[2] = 'Z'
	name, _, ok := ParseInnerPayload(inner)
	if !ok {
		t.Fatal("ParseInnerPayload returned ok=false")
	}
	if name != "x" {
		t.Errorf("name = %q, want %q", name, "x")
	}
}

func TestParseInnerPayloadRejectsTruncated(t *testing.T) {
	if _, _, ok := ParseInnerPayload([]byte{0x05, 'h', 'i'}); ok {
		t.Error("ParseInnerPayload accepted a buffer shorter than its declared name length")
	}
}

func TestIntegrityHashDeterministic(t *testing.T) {
	inner := BuildInnerPayload("a", []byte("b"))
	if IntegrityHash(inner) != IntegrityHash(inner) {
		t.Error("IntegrityHash is not deterministic")
	}
	other := BuildInnerPayload("a", []byte("c"))
	if IntegrityHash(inner) == IntegrityHash(other) {
		t.Error("IntegrityHash collided on different inputs (unexpected for this test fixture)")
	}
}
