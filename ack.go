package virtuallink

import "time"

// DefaultAckTimeout is the default ACK-wait window, carried as an
// explicitly typed time.Duration so the unit is never ambiguous at the
// call site, even though the underlying default (100 time units) traces
// back to a spec that only ever said "100" without settling whether it
// meant microseconds or milliseconds.
const DefaultAckTimeout = 100 * time.Microsecond

// AckStatus is the outcome delivered to an AckDoneFunc.
type AckStatus int

const (
	AckStatusOK AckStatus = iota
	AckStatusTimeout
)

// AckDoneFunc is invoked when an armed ACK expectation is resolved, either
// by a matching ACK frame or by timeout.
type AckDoneFunc func(status AckStatus, mpdu []byte)

// AckTracker tracks at most one outstanding expected ACK: a sequence
// number, an arm time, and a timeout. Arming while one is already in
// flight overwrites it — the upper layer is expected not to initiate a new
// TX while the previous ACK is unresolved.
type AckTracker struct {
	isExpected     bool
	sequenceNumber uint8
	start          time.Time
	timeout        time.Duration
}

// Arm records a new expected ACK for sequenceNumber, starting its timeout
// clock at now.
func (a *AckTracker) Arm(sequenceNumber uint8, now time.Time, timeout time.Duration) {
	a.isExpected = true
	a.sequenceNumber = sequenceNumber
	a.start = now
	a.timeout = timeout
}

// IsExpected reports whether an ACK is currently outstanding.
func (a *AckTracker) IsExpected() bool {
	return a.isExpected
}

// OnFrame matches an incoming ACK's sequence number against the armed
// expectation. If it matches, it fires done with AckStatusOK and clears
// the expectation, reporting true.
func (a *AckTracker) OnFrame(receivedSeq uint8, mpdu []byte, done AckDoneFunc) bool {
	if !a.isExpected || receivedSeq != a.sequenceNumber {
		return false
	}
	a.isExpected = false
	if done != nil {
		done(AckStatusOK, mpdu)
	}
	return true
}

// OnTick checks the armed expectation against now and fires done with
// AckStatusTimeout, clearing the expectation, if the timeout has elapsed.
func (a *AckTracker) OnTick(now time.Time, done AckDoneFunc) {
	if !a.isExpected {
		return
	}
	if now.Sub(a.start) <= a.timeout {
		return
	}
	a.isExpected = false
	if done != nil {
		done(AckStatusTimeout, nil)
	}
}
