package virtuallink

import "fmt"

// MaxPHYPacketSize is the largest MPDU this implementation will encode or
// accept, matching the 802.15.4 PHY's 127-octet PSDU limit padded out to a
// round buffer size for the SHR/PHR framing this package adds on top.
const MaxPHYPacketSize = 256

const (
	sfdValue     byte = 0xA7
	preambleSize      = 4
)

// MaxPPDUSize is the largest datagram EncodePPDU can produce or DecodePPDU
// can accept: the leading channel byte, the full synchronization header
// (preamble, SFD, PHR) when it isn't elided, and a MaxPHYPacketSize MPDU.
// Every raw-datagram receive buffer in this package is sized from this
// constant, not from MaxPHYPacketSize, since a PPDU is always larger than
// its enclosed MPDU.
const MaxPPDUSize = 1 + preambleSize + 2 + MaxPHYPacketSize

// FrameBuilder assembles and parses the on-wire PPDU envelope:
//
//	[ channel:u8 ] [ optional preamble:u32=0, SFD:u8=0xA7, PHR:u8 ] [ PSDU ]
//
// The PHR's low 7 bits carry the PSDU length; bit 7 is reserved and always
// zero. Both halves are written with explicit byte operations rather than
// struct packing, since the layout is defined by wire position, not by any
// particular language's struct representation.
type FrameBuilder struct{}

// isReservedLength reports whether length is one of the frame_length values
// the PHY header reserves: 0..4 and 6..7.
func isReservedLength(length int) bool {
	return length <= 4 || length == 6 || length == 7
}

// EncodePPDU assembles a full PPDU datagram for mpdu on channel, optionally
// eliding the synchronization header and PHY header when skipSHRPHR is set.
func (FrameBuilder) EncodePPDU(channel byte, mpdu []byte, skipSHRPHR bool) ([]byte, error) {
	if len(mpdu) > MaxPHYPacketSize {
		return nil, fmt.Errorf("%w: mpdu is %d bytes", ErrFrameTooLong, len(mpdu))
	}
	if !skipSHRPHR && isReservedLength(len(mpdu)) {
		return nil, fmt.Errorf("%w: frame_length=%d", ErrReservedLength, len(mpdu))
	}

	if skipSHRPHR {
		out := make([]byte, 0, 1+len(mpdu))
		out = append(out, channel)
		out = append(out, mpdu...)
		return out, nil
	}

	out := make([]byte, 0, 1+preambleSize+1+1+len(mpdu))
	out = append(out, channel)
	out = append(out, 0, 0, 0, 0) // preamble, always zero
	out = append(out, sfdValue)
	out = append(out, byte(len(mpdu))&0x7F) // PHR, bit 7 reserved
	out = append(out, mpdu...)
	return out, nil
}

// DecodePPDU parses a PPDU datagram received from the medium, returning the
// channel it was sent on and the enclosed MPDU.
func (FrameBuilder) DecodePPDU(datagram []byte, skipSHRPHR bool) (channel byte, mpdu []byte, err error) {
	if len(datagram) < 1 {
		return 0, nil, ErrFrameTooShort
	}
	channel = datagram[0]
	rest := datagram[1:]

	if skipSHRPHR {
		return channel, rest, nil
	}

	if len(rest) < preambleSize+1+1 {
		return 0, nil, ErrFrameTooShort
	}
	sfd := rest[preambleSize]
	if sfd != sfdValue {
		return 0, nil, ErrBadSFD
	}
	phr := rest[preambleSize+1]
	length := int(phr & 0x7F)
	if isReservedLength(length) {
		return 0, nil, fmt.Errorf("%w: frame_length=%d", ErrReservedLength, length)
	}
	psdu := rest[preambleSize+2:]
	if len(psdu) < length {
		return 0, nil, ErrFrameTooShort
	}
	return channel, psdu[:length], nil
}
