package virtuallink

// FrameType enumerates the 802.15.4 MAC frame types this emulator
// recognizes. BEACON and CMD are recognized but never processed; only DATA
// and ACK drive the RX pipeline.
type FrameType uint8

const (
	FrameTypeBeacon FrameType = iota
	FrameTypeData
	FrameTypeAck
	FrameTypeCmd
)

// AddressMode enumerates the destination-address encodings a FrameCodec
// may report.
type AddressMode uint8

const (
	AddressModeNone AddressMode = iota
	AddressModeShort
	AddressModeExtended
)

const (
	// BroadcastPANID is the 16-bit broadcast PAN identifier.
	BroadcastPANID uint16 = 0xFFFF
	// BroadcastShortAddr is the 16-bit broadcast short address.
	BroadcastShortAddr uint16 = 0xFFFF
)

// FrameCodec is the external 802.15.4 frame-encoding/decoding collaborator:
// it knows how to get and set the fields of an MPDU. virtuallink treats it
// as a capability, not a concrete type, so any conforming codec can drive
// the filter, ACK, and state-machine logic.
type FrameCodec interface {
	// FrameType returns the frame type field of mpdu.
	FrameType(mpdu []byte) (FrameType, error)
	// SequenceNumber returns the MAC sequence number field of mpdu.
	SequenceNumber(mpdu []byte) (uint8, error)
	// AckRequested reports whether mpdu has its ACK-request flag set.
	AckRequested(mpdu []byte) (bool, error)
	// DestinationPANID returns the destination PAN-ID field, if present.
	DestinationPANID(mpdu []byte) (panID uint16, present bool, err error)
	// DestinationAddress returns the destination address field and its
	// addressing mode, if present.
	DestinationAddress(mpdu []byte) (mode AddressMode, short uint16, extended [8]byte, err error)
	// BuildAck constructs a minimal ACK MPDU matching sequenceNumber.
	BuildAck(sequenceNumber uint8) ([]byte, error)
}
