// Package codec provides a minimal concrete implementation of
// virtuallink.FrameCodec — the 802.15.4 frame-encoding/decoding
// collaborator the core radio emulator treats as external. It is
// intentionally small: just enough field layout to drive the filter,
// ACK, and state-machine tests and the example programs.
package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/Jatsekku/virtualLink"
)

// header byte 0 bit layout.
const (
	bitSecurity   = 1 << 3
	bitPending    = 1 << 4
	bitAckRequest = 1 << 5
	bitIntraPAN   = 1 << 6
)

// header byte 1 bit layout (destination addressing mode, bits 2-3).
const destAddrModeShift = 2

const (
	headerMinSize = 3 // control(2) + sequence(1)
	ackFrameSize  = 5 // control(2) + sequence(1) + FCS(2, zero placeholder)
)

// Simple is a minimal FrameCodec: a 2-byte frame control field, a 1-byte
// sequence number, and an optional 2-byte destination PAN-ID plus a 2- or
// 8-byte destination address, followed by the payload.
type Simple struct{}

var _ virtuallink.FrameCodec = Simple{}

func frameType(b0 byte) virtuallink.FrameType {
	return virtuallink.FrameType(b0 & 0x03)
}

func destAddrMode(b1 byte) virtuallink.AddressMode {
	return virtuallink.AddressMode((b1 >> destAddrModeShift) & 0x03)
}

func (Simple) FrameType(mpdu []byte) (virtuallink.FrameType, error) {
	if len(mpdu) < headerMinSize {
		return 0, fmt.Errorf("codec: mpdu too short for frame type")
	}
	return frameType(mpdu[0]), nil
}

func (Simple) SequenceNumber(mpdu []byte) (uint8, error) {
	if len(mpdu) < headerMinSize {
		return 0, fmt.Errorf("codec: mpdu too short for sequence number")
	}
	return mpdu[2], nil
}

func (Simple) AckRequested(mpdu []byte) (bool, error) {
	if len(mpdu) < headerMinSize {
		return false, fmt.Errorf("codec: mpdu too short for ack request flag")
	}
	return mpdu[0]&bitAckRequest != 0, nil
}

func (Simple) DestinationPANID(mpdu []byte) (panID uint16, present bool, err error) {
	if len(mpdu) < headerMinSize {
		return 0, false, fmt.Errorf("codec: mpdu too short")
	}
	if destAddrMode(mpdu[1]) == virtuallink.AddressModeNone {
		return 0, false, nil
	}
	if len(mpdu) < headerMinSize+2 {
		return 0, false, fmt.Errorf("codec: mpdu too short for destination PAN-ID")
	}
	return binary.LittleEndian.Uint16(mpdu[headerMinSize:]), true, nil
}

func (Simple) DestinationAddress(mpdu []byte) (mode virtuallink.AddressMode, short uint16, extended [8]byte, err error) {
	if len(mpdu) < headerMinSize {
		return virtuallink.AddressModeNone, 0, extended, fmt.Errorf("codec: mpdu too short")
	}
	mode = destAddrMode(mpdu[1])
	if mode == virtuallink.AddressModeNone {
		return mode, 0, extended, nil
	}

	addrStart := headerMinSize + 2 // past the destination PAN-ID
	switch mode {
	case virtuallink.AddressModeShort:
		if len(mpdu) < addrStart+2 {
			return mode, 0, extended, fmt.Errorf("codec: mpdu too short for short address")
		}
		short = binary.LittleEndian.Uint16(mpdu[addrStart:])
	case virtuallink.AddressModeExtended:
		if len(mpdu) < addrStart+8 {
			return mode, 0, extended, fmt.Errorf("codec: mpdu too short for extended address")
		}
		copy(extended[:], mpdu[addrStart:addrStart+8])
	default:
		return virtuallink.AddressModeNone, 0, extended, fmt.Errorf("codec: unknown address mode %d", mode)
	}
	return mode, short, extended, nil
}

// BuildAck constructs a 5-byte ACK MPDU matching sequenceNumber: type=ACK,
// pending=false, no addressing fields, and a zero FCS placeholder — real
// 802.15.4 requires a computed FCS; this is a clearly-marked extension
// point, not a protocol implementation.
func (Simple) BuildAck(sequenceNumber uint8) ([]byte, error) {
	mpdu := make([]byte, ackFrameSize)
	mpdu[0] = byte(virtuallink.FrameTypeAck)
	mpdu[1] = byte(virtuallink.AddressModeNone) << destAddrModeShift
	mpdu[2] = sequenceNumber
	// mpdu[3:5] left zero: FCS placeholder.
	return mpdu, nil
}

// DataFrameOptions configures BuildDataFrame.
type DataFrameOptions struct {
	SequenceNumber   uint8
	AckRequest       bool
	IntraPAN         bool
	DestinationPANID uint16
	DestinationMode  virtuallink.AddressMode
	DestinationShort uint16
	DestinationExt   [8]byte
	Payload          []byte
}

// BuildDataFrame assembles a DATA MPDU with the given header fields and
// payload, for use by example programs and tests that need a codec to
// drive through the radio core.
func BuildDataFrame(opts DataFrameOptions) ([]byte, error) {
	b0 := byte(virtuallink.FrameTypeData)
	if opts.AckRequest {
		b0 |= bitAckRequest
	}
	if opts.IntraPAN {
		b0 |= bitIntraPAN
	}
	b1 := byte(opts.DestinationMode) << destAddrModeShift

	mpdu := []byte{b0, b1, opts.SequenceNumber}

	if opts.DestinationMode != virtuallink.AddressModeNone {
		panBuf := make([]byte, 2)
		binary.LittleEndian.PutUint16(panBuf, opts.DestinationPANID)
		mpdu = append(mpdu, panBuf...)

		switch opts.DestinationMode {
		case virtuallink.AddressModeShort:
			addrBuf := make([]byte, 2)
			binary.LittleEndian.PutUint16(addrBuf, opts.DestinationShort)
			mpdu = append(mpdu, addrBuf...)
		case virtuallink.AddressModeExtended:
			mpdu = append(mpdu, opts.DestinationExt[:]...)
		default:
			return nil, fmt.Errorf("codec: unsupported destination address mode %d", opts.DestinationMode)
		}
	}

	if len(mpdu)+len(opts.Payload) > virtuallink.MaxPHYPacketSize {
		return nil, fmt.Errorf("%w: header is %d bytes, payload is %d bytes", virtuallink.ErrPayloadTooLarge, len(mpdu), len(opts.Payload))
	}

	mpdu = append(mpdu, opts.Payload...)
	return mpdu, nil
}
