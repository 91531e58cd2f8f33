package virtuallink

import (
	"fmt"
	"sync"
	"time"
)

// TxStatus is the outcome delivered to a TxDoneFunc.
type TxStatus int

const (
	TxStatusOK           TxStatus = 0
	TxStatusCSMAFailed   TxStatus = -1
	TxStatusTxAborted    TxStatus = -2
	TxStatusGenericError TxStatus = -3
)

// RxStatus is the outcome delivered to a RxDoneFunc.
type RxStatus int

const (
	RxStatusOK       RxStatus = 0
	RxStatusNoMemory RxStatus = -1
)

// TxDoneFunc is invoked once per SendData call, after the PPDU has been
// written to the medium.
type TxDoneFunc func(status TxStatus)

// RxDoneFunc is invoked once per accepted DATA frame.
type RxDoneFunc func(status RxStatus, mpdu []byte)

// RadioState is the radio's lifecycle state.
type RadioState int8

const (
	StateInvalid  RadioState = -1
	StateDisabled RadioState = 0
	StateSleep    RadioState = 1
	StateRX       RadioState = 2
	StateTX       RadioState = 3
)

func (s RadioState) String() string {
	switch s {
	case StateDisabled:
		return "DISABLED"
	case StateSleep:
		return "SLEEP"
	case StateRX:
		return "RX"
	case StateTX:
		return "TX"
	default:
		return "INVALID"
	}
}

const (
	minChannel = 11
	maxChannel = 26

	defaultPANID   uint16 = 0x4321
	defaultCCAED   int8   = -71
	defaultLNAGain int8   = 0
	defaultChannel byte   = 11
)

var defaultExtAddr = [8]byte{0xAC, 0xDE, 0x48, 0x00, 0x00, 0x00, 0x00, 0x02}

// RadioMetaConfig is the fixed, rarely-changed configuration a RadioCore is
// constructed with: the receiver sensitivity, the device's EUI-64, the
// medium it sends/receives through, and whether the synchronization header
// and PHY header are elided from the on-wire envelope.
type RadioMetaConfig struct {
	RxSensitivityDBm int8
	EUI64            [8]byte
	Medium           *MediumEndpoint
	SkipSHRPHR       bool
}

// RadioCore is the 802.15.4 radio state machine: configuration, the TX
// path, RX dispatch, and the ACK-response generator. It orchestrates
// FrameBuilder, Filter, and AckTracker, and sends/receives through the
// MediumEndpoint named in its RadioMetaConfig.
type RadioCore struct {
	meta  RadioMetaConfig
	codec FrameCodec

	builder FrameBuilder
	filter  Filter

	mu    sync.Mutex
	state RadioState
	ack   AckTracker

	PANID             uint16
	ShortAddr         uint16
	ExtAddr           [8]byte
	TxPowerDBm        int8
	CCAEDThresholdDBm int8
	LNAGainDBm        int8
	Promiscuous       bool
	channel           byte

	txDone  TxDoneFunc
	rxDone  RxDoneFunc
	ackDone AckDoneFunc
}

// NewRadioCore constructs a RadioCore in state DISABLED with the register
// defaults: PAN ID 0x4321, short address 0x0000, extended address
// AC:DE:48:00:00:00:00:02, CCA/ED threshold -71 dBm, LNA gain 0 dBm,
// promiscuous off, channel 11, no outstanding ACK expectation, and a
// 100-microsecond default ACK timeout.
func NewRadioCore(meta RadioMetaConfig, codec FrameCodec) *RadioCore {
	if codec == nil {
		panic(fmt.Errorf("%w: NewRadioCore requires a non-nil FrameCodec", ErrNoCodecConfigured))
	}
	r := &RadioCore{
		meta:              meta,
		codec:             codec,
		filter:            Filter{Codec: codec},
		state:             StateDisabled,
		PANID:             defaultPANID,
		ShortAddr:         0x0000,
		ExtAddr:           defaultExtAddr,
		CCAEDThresholdDBm: defaultCCAED,
		LNAGainDBm:        defaultLNAGain,
		Promiscuous:       false,
		channel:           defaultChannel,
	}
	r.ack.timeout = DefaultAckTimeout
	return r
}

// State returns the radio's current lifecycle state. Read-only accessor,
// not present in the distilled configuration surface but harmless to
// expose since it never changes behavior.
func (r *RadioCore) State() RadioState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Channel returns the radio's currently configured channel.
func (r *RadioCore) Channel() byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.channel
}

// SetChannel sets the radio's channel. Values outside 11..26 are a
// programming fault.
func (r *RadioCore) SetChannel(channel byte) {
	if channel < minChannel || channel > maxChannel {
		panic(fmt.Errorf("%w: channel %d out of range %d..%d", ErrChannelOutOfRange, channel, minChannel, maxChannel))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channel = channel
}

// RegisterTxDone installs the TX completion callback.
func (r *RadioCore) RegisterTxDone(fn TxDoneFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txDone = fn
}

// RegisterRxDone installs the RX delivery callback.
func (r *RadioCore) RegisterRxDone(fn RxDoneFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rxDone = fn
}

// RegisterAckDone installs the ACK-resolution callback.
func (r *RadioCore) RegisterAckDone(fn AckDoneFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ackDone = fn
}

// SetAckTimeout overrides the default ACK-wait window.
func (r *RadioCore) SetAckTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ack.timeout = d
}

// Enable transitions DISABLED -> SLEEP. A no-op from any other state.
func (r *RadioCore) Enable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateDisabled {
		r.state = StateSleep
	}
}

// Disable unconditionally transitions to DISABLED.
//
// The original source checked the function pointer of its own isEnabled
// helper (always truthy) instead of calling it and checking the result,
// and on top of that set SLEEP instead of DISABLED. The state-machine
// diagram is unambiguous: disable always disables.
func (r *RadioCore) Disable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateDisabled
}

// Sleep transitions SLEEP or RX -> SLEEP, reporting success. From any
// other state it is a no-op and reports failure.
func (r *RadioCore) Sleep() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateSleep || r.state == StateRX {
		r.state = StateSleep
		return true
	}
	return false
}

// Receive transitions any state other than DISABLED to RX, reporting
// success. From DISABLED it is a no-op and reports failure.
func (r *RadioCore) Receive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateDisabled {
		return false
	}
	r.state = StateRX
	return true
}

// SendData transmits mpdu. Valid only from RX; returns false and leaves
// the state unchanged otherwise. If mpdu has its ACK-request flag set, the
// ACK tracker is armed before the frame is put on the wire, so an ACK that
// arrives before this call returns is still matched correctly.
func (r *RadioCore) SendData(mpdu []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRX {
		return false
	}

	seq, err := r.codec.SequenceNumber(mpdu)
	if err != nil {
		panic(fmt.Sprintf("virtuallink: malformed mpdu passed to SendData: %v", err))
	}
	ackRequested, err := r.codec.AckRequested(mpdu)
	if err != nil {
		panic(fmt.Sprintf("virtuallink: malformed mpdu passed to SendData: %v", err))
	}
	if ackRequested {
		r.ack.Arm(seq, time.Now(), r.ack.timeout)
	}

	r.state = StateTX
	if err := r.transmit(mpdu); err != nil {
		panic(fmt.Errorf("virtuallink: send failed: %w", err))
	}

	if r.txDone != nil {
		r.txDone(TxStatusOK)
	}

	r.state = StateRX
	return true
}

// transmit assembles and writes mpdu to the medium. Callers must hold mu.
func (r *RadioCore) transmit(mpdu []byte) error {
	ppdu, err := r.builder.EncodePPDU(r.channel, mpdu, r.meta.SkipSHRPHR)
	if err != nil {
		return err
	}
	_, err = r.meta.Medium.SendBlocking(ppdu)
	return err
}

// ProcessRFFrame decodes a raw datagram read from the medium and dispatches
// it by frame type. Malformed datagrams, frames on the wrong channel, and
// unrecognized frame types are discarded.
func (r *RadioCore) ProcessRFFrame(buf []byte) {
	if len(buf) == 0 {
		return
	}

	channel, mpdu, err := r.builder.DecodePPDU(buf, r.meta.SkipSHRPHR)
	if err != nil {
		globalLogger.Warn(fmt.Sprintf("discarding malformed ppdu: %v", err))
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.filter.ChannelMatches(channel, r.channel) {
		return
	}

	ft, err := r.codec.FrameType(mpdu)
	if err != nil {
		globalLogger.Warn(fmt.Sprintf("discarding frame with unreadable type: %v", err))
		return
	}

	switch ft {
	case FrameTypeData:
		r.processData(mpdu)
	case FrameTypeAck:
		if !r.ack.IsExpected() {
			globalLogger.Warn("discarding unexpected ack frame")
			return
		}
		seq, err := r.codec.SequenceNumber(mpdu)
		if err != nil {
			globalLogger.Warn(fmt.Sprintf("discarding ack frame with unreadable sequence number: %v", err))
			return
		}
		r.ack.OnFrame(seq, mpdu, r.ackDone)
	case FrameTypeBeacon, FrameTypeCmd:
		globalLogger.Debug(fmt.Sprintf("discarding recognized but unprocessed frame type %d", ft))
	default:
		globalLogger.Debug(fmt.Sprintf("discarding unknown frame type %d", ft))
	}
}

// processData applies the non-promiscuous PAN/address filters, responds
// with an ACK if requested, and delivers the frame to the RX callback.
// Callers must hold mu.
func (r *RadioCore) processData(mpdu []byte) {
	if !r.Promiscuous {
		if !r.filter.PANIDMatches(mpdu, r.PANID) {
			return
		}
		if !r.filter.AddressMatches(mpdu, r.ShortAddr, r.ExtAddr) {
			return
		}
	}

	ackRequested, err := r.codec.AckRequested(mpdu)
	if err != nil {
		globalLogger.Warn(fmt.Sprintf("discarding data frame with unreadable ack-request flag: %v", err))
		return
	}
	if ackRequested {
		seq, err := r.codec.SequenceNumber(mpdu)
		if err != nil {
			globalLogger.Warn(fmt.Sprintf("cannot ack data frame with unreadable sequence number: %v", err))
		} else {
			ackMpdu, err := r.codec.BuildAck(seq)
			if err != nil {
				globalLogger.Warn(fmt.Sprintf("failed to build ack frame: %v", err))
			} else if err := r.transmit(ackMpdu); err != nil {
				globalLogger.Warn(fmt.Sprintf("failed to send ack frame: %v", err))
			}
		}
	}

	if r.rxDone != nil {
		r.rxDone(RxStatusOK, mpdu)
	}
}

// Tick runs one cooperative driver step: check the ACK timeout, and if the
// radio is receiving, perform one non-blocking medium read and process it.
// Call this repeatedly from the host's own main loop.
func (r *RadioCore) Tick() {
	r.tick(0)
}

// TickBlocking runs one worker-thread driver step: check the ACK timeout,
// then, if the radio is receiving, wait up to timeout for a frame to arrive
// on the medium before processing it. Unlike Tick, the calling goroutine
// sleeps in the kernel for the wait instead of spinning, so this is the
// variant RunProcessingThread drives.
func (r *RadioCore) TickBlocking(timeout time.Duration) {
	r.tick(timeout)
}

func (r *RadioCore) tick(timeout time.Duration) {
	r.mu.Lock()
	r.ack.OnTick(time.Now(), r.ackDone)
	state := r.state
	r.mu.Unlock()

	if state != StateRX {
		return
	}

	buf := make([]byte, r.meta.Medium.BufferCapacity())
	n, _, err := r.meta.Medium.ReceiveBlocking(buf, timeout)
	if err != nil {
		globalLogger.Warn(fmt.Sprintf("radio tick: %v", err))
		return
	}
	if n > 0 {
		r.ProcessRFFrame(buf[:n])
	}
}
