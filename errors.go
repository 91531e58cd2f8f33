package virtuallink

import "errors"

// Transport errors.
var (
	ErrSocketInit    = errors.New("virtuallink: failed to initialize socket")
	ErrMulticastJoin = errors.New("virtuallink: failed to join multicast group")
	ErrShortWrite    = errors.New("virtuallink: short write on medium endpoint")
	ErrClosed        = errors.New("virtuallink: medium endpoint is closed")
)

// Frame encoding/decoding errors.
var (
	ErrFrameTooShort   = errors.New("virtuallink: frame too short to contain PHY headers")
	ErrFrameTooLong    = errors.New("virtuallink: frame length exceeds maximum PHY packet size")
	ErrBadSFD          = errors.New("virtuallink: start-of-frame delimiter mismatch")
	ErrReservedLength  = errors.New("virtuallink: frame length is a reserved value")
	ErrPayloadTooLarge = errors.New("virtuallink: payload does not fit in remaining PSDU capacity")
)

// Radio core errors.
var (
	ErrChannelOutOfRange = errors.New("virtuallink: channel number out of supported range")
	ErrNoCodecConfigured = errors.New("virtuallink: no frame codec configured")
)
