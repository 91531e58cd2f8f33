package virtuallink

import (
	"bytes"
	"testing"
)

func TestEncodeDecodePPDURoundTripSkipSHRPHR(t *testing.T) {
	var fb FrameBuilder
	mpdu := []byte("randompayload")

	ppdu, err := fb.EncodePPDU(20, mpdu, true)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(ppdu) != 1+len(mpdu) {
		t.Fatalf("ppdu length = %d, want %d", len(ppdu), 1+len(mpdu))
	}
	if ppdu[0] != 20 {
		t.Fatalf("channel byte = %d, want 20", ppdu[0])
	}

	channel, decoded, err := fb.DecodePPDU(ppdu, true)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if channel != 20 {
		t.Fatalf("decoded channel = %d, want 20", channel)
	}
	if !bytes.Equal(decoded, mpdu) {
		t.Fatalf("decoded mpdu = %q, want %q", decoded, mpdu)
	}
}

func TestEncodeDecodePPDURoundTripWithSHRPHR(t *testing.T) {
	var fb FrameBuilder
	mpdu := []byte("hello world, this is a data frame")

	ppdu, err := fb.EncodePPDU(11, mpdu, false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if ppdu[1] != 0 || ppdu[2] != 0 || ppdu[3] != 0 || ppdu[4] != 0 {
		t.Fatalf("preamble bytes should be zero, got %v", ppdu[1:5])
	}
	if ppdu[5] != sfdValue {
		t.Fatalf("sfd = %#x, want %#x", ppdu[5], sfdValue)
	}
	if ppdu[6]&0x80 != 0 {
		t.Fatalf("PHR reserved bit should be zero, got %#x", ppdu[6])
	}

	channel, decoded, err := fb.DecodePPDU(ppdu, false)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if channel != 11 {
		t.Fatalf("decoded channel = %d, want 11", channel)
	}
	if !bytes.Equal(decoded, mpdu) {
		t.Fatalf("decoded mpdu = %q, want %q", decoded, mpdu)
	}
}

func TestEncodePPDURejectsReservedLength(t *testing.T) {
	var fb FrameBuilder
	for _, n := range []int{0, 1, 2, 3, 4, 6, 7} {
		mpdu := make([]byte, n)
		if _, err := fb.EncodePPDU(11, mpdu, false); err == nil {
			t.Fatalf("expected reserved-length error for frame_length=%d", n)
		}
	}
}

func TestEncodePPDUAllowsReservedLengthWhenSkippingHeaders(t *testing.T) {
	var fb FrameBuilder
	mpdu := make([]byte, 2)
	if _, err := fb.EncodePPDU(11, mpdu, true); err != nil {
		t.Fatalf("unexpected error with skipSHRPHR: %v", err)
	}
}

func TestEncodePPDURejectsOversizedMPDU(t *testing.T) {
	var fb FrameBuilder
	mpdu := make([]byte, MaxPHYPacketSize+1)
	if _, err := fb.EncodePPDU(11, mpdu, true); err == nil {
		t.Fatalf("expected error for oversized mpdu")
	}
}

func TestMaxPPDUSizeFitsLargestEncodedFrame(t *testing.T) {
	var fb FrameBuilder
	mpdu := make([]byte, MaxPHYPacketSize)

	ppdu, err := fb.EncodePPDU(11, mpdu, false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(ppdu) > MaxPPDUSize {
		t.Fatalf("largest PPDU is %d bytes, exceeds MaxPPDUSize %d", len(ppdu), MaxPPDUSize)
	}
}

func TestDecodePPDURejectsBadSFD(t *testing.T) {
	var fb FrameBuilder
	ppdu := []byte{11, 0, 0, 0, 0, 0xFF, 5, 1, 2, 3, 4, 5}
	if _, _, err := fb.DecodePPDU(ppdu, false); err == nil {
		t.Fatalf("expected bad-sfd error")
	}
}
