package codec_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Jatsekku/virtualLink"
	"github.com/Jatsekku/virtualLink/codec"
)

func TestBuildDataFrameRoundTrip(t *testing.T) {
	c := codec.Simple{}

	mpdu, err := codec.BuildDataFrame(codec.DataFrameOptions{
		SequenceNumber:   55,
		AckRequest:       true,
		DestinationPANID: 0x2137,
		DestinationMode:  virtuallink.AddressModeShort,
		DestinationShort: 0x0420,
		Payload:          []byte("payload"),
	})
	if err != nil {
		t.Fatalf("BuildDataFrame: %v", err)
	}

	ft, err := c.FrameType(mpdu)
	if err != nil {
		t.Fatalf("FrameType: %v", err)
	}
	if ft != virtuallink.FrameTypeData {
		t.Fatalf("frame type = %v, want DATA", ft)
	}

	seq, err := c.SequenceNumber(mpdu)
	if err != nil {
		t.Fatalf("SequenceNumber: %v", err)
	}
	if seq != 55 {
		t.Fatalf("sequence number = %d, want 55", seq)
	}

	ackReq, err := c.AckRequested(mpdu)
	if err != nil {
		t.Fatalf("AckRequested: %v", err)
	}
	if !ackReq {
		t.Fatalf("expected ack-request flag set")
	}

	panID, present, err := c.DestinationPANID(mpdu)
	if err != nil || !present {
		t.Fatalf("DestinationPANID: present=%v err=%v", present, err)
	}
	if panID != 0x2137 {
		t.Fatalf("pan id = %#x, want 0x2137", panID)
	}

	mode, short, _, err := c.DestinationAddress(mpdu)
	if err != nil {
		t.Fatalf("DestinationAddress: %v", err)
	}
	if mode != virtuallink.AddressModeShort || short != 0x0420 {
		t.Fatalf("destination address = (%v, %#x), want (short, 0x0420)", mode, short)
	}
}

func TestBuildAck(t *testing.T) {
	c := codec.Simple{}
	ack, err := c.BuildAck(99)
	if err != nil {
		t.Fatalf("BuildAck: %v", err)
	}
	if len(ack) != 5 {
		t.Fatalf("ack length = %d, want 5", len(ack))
	}

	ft, err := c.FrameType(ack)
	if err != nil {
		t.Fatalf("FrameType: %v", err)
	}
	if ft != virtuallink.FrameTypeAck {
		t.Fatalf("frame type = %v, want ACK", ft)
	}
	seq, err := c.SequenceNumber(ack)
	if err != nil {
		t.Fatalf("SequenceNumber: %v", err)
	}
	if seq != 99 {
		t.Fatalf("sequence number = %d, want 99", seq)
	}
	if !bytes.Equal(ack[3:5], []byte{0, 0}) {
		t.Fatalf("fcs placeholder should be zero, got %v", ack[3:5])
	}
}

func TestBuildDataFrameRejectsOversizePayload(t *testing.T) {
	_, err := codec.BuildDataFrame(codec.DataFrameOptions{
		SequenceNumber: 1,
		Payload:        make([]byte, virtuallink.MaxPHYPacketSize),
	})
	if !errors.Is(err, virtuallink.ErrPayloadTooLarge) {
		t.Fatalf("BuildDataFrame error = %v, want ErrPayloadTooLarge", err)
	}
}

func TestDestinationAddressNoneWhenAbsent(t *testing.T) {
	c := codec.Simple{}
	mpdu, err := codec.BuildDataFrame(codec.DataFrameOptions{SequenceNumber: 1})
	if err != nil {
		t.Fatalf("BuildDataFrame: %v", err)
	}
	mode, _, _, err := c.DestinationAddress(mpdu)
	if err != nil {
		t.Fatalf("DestinationAddress: %v", err)
	}
	if mode != virtuallink.AddressModeNone {
		t.Fatalf("expected AddressModeNone, got %v", mode)
	}
	_, present, err := c.DestinationPANID(mpdu)
	if err != nil {
		t.Fatalf("DestinationPANID: %v", err)
	}
	if present {
		t.Fatalf("expected no destination pan-id present")
	}
}
