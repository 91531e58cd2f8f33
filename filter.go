package virtuallink

// Filter holds the stateless channel/PAN/address predicates applied to an
// incoming MPDU before RX delivery. Channel is always checked; PAN-ID and
// address are skipped when the radio is promiscuous — see
// RadioCore.processData.
type Filter struct {
	Codec FrameCodec
}

// ChannelMatches reports whether frameChannel equals the radio's own
// channel.
func (Filter) ChannelMatches(frameChannel, radioChannel byte) bool {
	return frameChannel == radioChannel
}

// PANIDMatches decodes the destination PAN-ID from mpdu and accepts it if
// it equals radioPANID or the broadcast PAN-ID. A frame with no
// destination PAN-ID field is rejected.
func (f Filter) PANIDMatches(mpdu []byte, radioPANID uint16) bool {
	panID, present, err := f.Codec.DestinationPANID(mpdu)
	if err != nil || !present {
		return false
	}
	return panID == radioPANID || panID == BroadcastPANID
}

// AddressMatches decodes the destination address from mpdu. A short
// (16-bit) address is accepted if it equals radioShortAddr or the
// broadcast short address; an extended (64-bit) address is accepted iff it
// equals radioExtAddr exactly (no broadcast). A frame with no destination
// address is rejected.
func (f Filter) AddressMatches(mpdu []byte, radioShortAddr uint16, radioExtAddr [8]byte) bool {
	mode, short, extended, err := f.Codec.DestinationAddress(mpdu)
	if err != nil {
		return false
	}
	switch mode {
	case AddressModeShort:
		return short == radioShortAddr || short == BroadcastShortAddr
	case AddressModeExtended:
		return extended == radioExtAddr
	default:
		return false
	}
}
