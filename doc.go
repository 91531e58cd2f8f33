// Package virtuallink emulates an IEEE 802.15.4 LR-WPAN radio PHY and
// partial MAC as a software component, using a UDP multicast group as the
// simulated RF medium. Every emulated radio joins the group; transmissions
// are multicast into it; receivers apply channel, PAN-ID, and address
// filtering the way a real 802.15.4 chip would.
//
// The package is split into the virtual-medium transport (MediumEndpoint,
// FrameBuilder) and the radio state machine (RadioCore, Filter, AckTracker,
// Driver). Frame encoding/decoding above the PHY is delegated to the
// FrameCodec interface; a minimal concrete implementation lives in the
// codec subpackage.
package virtuallink
