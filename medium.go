package virtuallink

import (
	"context"
	"fmt"
	"net"
	"sync"
	"syscall"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

// RXDoneFunc is invoked by the interrupt-mode delivery path whenever a
// non-self-originated datagram arrives.
type RXDoneFunc func(buf []byte, origin SocketAddress)

// MediumEndpoint is the virtual RF medium: a multicast UDP group that
// delivers framed octet blobs between peers, with self-echo suppression
// and blocking, non-blocking, and callback-driven receive modes.
type MediumEndpoint struct {
	cfg MediumConfig

	txConn *net.UDPConn
	rxConn *net.UDPConn

	mu                 sync.Mutex
	rxCallback         RXDoneFunc
	rxInterruptEnabled bool
	closed             bool
}

// NewMediumEndpoint creates the TX socket (bound to cfg.TxAddr, multicast
// interface and loopback enabled) and the RX socket (address/port reuse,
// bound to cfg.RxAddr, joined to the cfg.RxAddr multicast group on
// cfg.InterfaceIPv4). Socket-level failures are returned as a wrapped
// error: library code never calls log.Fatal itself, only the example
// programs do.
func NewMediumEndpoint(cfg MediumConfig) (*MediumEndpoint, error) {
	iface, err := interfaceForIPv4(cfg.InterfaceIPv4)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSocketInit, err)
	}

	txConn, err := newTxSocket(cfg.TxAddr, iface)
	if err != nil {
		return nil, fmt.Errorf("%w: tx socket: %v", ErrSocketInit, err)
	}

	rxConn, err := newRxSocket(cfg.RxAddr, iface)
	if err != nil {
		txConn.Close()
		return nil, fmt.Errorf("%w: rx socket: %v", ErrSocketInit, err)
	}

	return &MediumEndpoint{
		cfg:    cfg,
		txConn: txConn,
		rxConn: rxConn,
	}, nil
}

// BufferCapacity returns the size every raw-datagram receive buffer for
// this endpoint should be allocated with. It honors cfg.RxBufferCapacity
// when set, falling back to MaxPPDUSize — large enough for any PPDU this
// package can itself produce — for endpoints constructed without going
// through ConfigureFromStrings.
func (m *MediumEndpoint) BufferCapacity() int {
	if m.cfg.RxBufferCapacity > 0 {
		return m.cfg.RxBufferCapacity
	}
	return MaxPPDUSize
}

// Close releases both sockets. Subsequent SendBlocking/ReceiveBlocking
// calls report ErrClosed instead of operating on the closed sockets.
func (m *MediumEndpoint) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	err1 := m.txConn.Close()
	err2 := m.rxConn.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func interfaceForIPv4(addr uint32) (*net.Interface, error) {
	want := net.IPv4(byte(addr>>24), byte(addr>>16), byte(addr>>8), byte(addr))
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for i := range ifaces {
		addrs, err := ifaces[i].Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			if ipNet.IP.Equal(want) {
				return &ifaces[i], nil
			}
		}
	}
	return nil, fmt.Errorf("no local interface holds address %s", want)
}

// newTxSocket binds the outgoing socket and enables the outbound multicast
// interface and multicast loopback, matching the socket-option sequence
// madpsy-ka9q_ubersdr's setupControlSocket uses for its own control plane.
func newTxSocket(txAddr SocketAddress, iface *net.Interface) (*net.UDPConn, error) {
	conn, err := net.ListenUDP("udp4", txAddr.udpAddr())
	if err != nil {
		return nil, err
	}

	rawConn, err := conn.SyscallConn()
	if err != nil {
		conn.Close()
		return nil, err
	}

	var sockErr error
	err = rawConn.Control(func(fd uintptr) {
		if err := unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_MULTICAST_LOOP, 1); err != nil {
			sockErr = fmt.Errorf("IP_MULTICAST_LOOP: %w", err)
			return
		}
		mreqn := &unix.IPMreqn{Ifindex: int32(iface.Index)}
		if err := unix.SetsockoptIPMreqn(int(fd), unix.IPPROTO_IP, unix.IP_MULTICAST_IF, mreqn); err != nil {
			sockErr = fmt.Errorf("IP_MULTICAST_IF: %w", err)
			return
		}
	})
	if err != nil {
		conn.Close()
		return nil, err
	}
	if sockErr != nil {
		conn.Close()
		return nil, sockErr
	}

	return conn, nil
}

// newRxSocket binds the multicast-group socket with address and port reuse
// enabled and joins the group on iface, matching madpsy-ka9q_ubersdr's
// setupDataSocket.
func newRxSocket(rxAddr SocketAddress, iface *net.Interface) (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
					sockErr = fmt.Errorf("SO_REUSEADDR: %w", err)
					return
				}
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
					sockErr = fmt.Errorf("SO_REUSEPORT: %w", err)
					return
				}
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	pc, err := lc.ListenPacket(context.Background(), "udp4", rxAddr.String())
	if err != nil {
		return nil, err
	}
	udpConn := pc.(*net.UDPConn)

	p := ipv4.NewPacketConn(udpConn)
	mcastAddr := rxAddr.udpAddr()
	if err := p.JoinGroup(iface, mcastAddr); err != nil {
		udpConn.Close()
		return nil, fmt.Errorf("%w: %v", ErrMulticastJoin, err)
	}

	return udpConn, nil
}

// SendBlocking sends a single datagram to cfg.RxAddr, the shared multicast
// group every peer listens on.
func (m *MediumEndpoint) SendBlocking(buf []byte) (int, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return 0, ErrClosed
	}

	n, err := m.txConn.WriteToUDP(buf, m.cfg.RxAddr.udpAddr())
	if err != nil {
		return n, err
	}
	if n != len(buf) {
		return n, fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(buf))
	}
	return n, nil
}

// ReceiveBlocking waits up to timeout for a datagram. timeout < 0 blocks
// forever, timeout == 0 polls without waiting, and timeout > 0 bounds the
// wait. Datagrams that originated from this endpoint's own TxAddr are
// self-echo and are reported as n == 0 without populating origin.
func (m *MediumEndpoint) ReceiveBlocking(buf []byte, timeout time.Duration) (n int, origin SocketAddress, err error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return 0, SocketAddress{}, ErrClosed
	}

	switch {
	case timeout < 0:
		err = m.rxConn.SetReadDeadline(time.Time{})
	case timeout == 0:
		err = m.rxConn.SetReadDeadline(time.Now())
	default:
		err = m.rxConn.SetReadDeadline(time.Now().Add(timeout))
	}
	if err != nil {
		return 0, SocketAddress{}, err
	}

	n, addr, err := m.rxConn.ReadFromUDP(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return 0, SocketAddress{}, nil
		}
		return 0, SocketAddress{}, err
	}

	from := socketAddressFromUDPAddr(addr)
	if from == m.cfg.TxAddr {
		return 0, SocketAddress{}, nil
	}
	return n, from, nil
}

func socketAddressFromUDPAddr(addr *net.UDPAddr) SocketAddress {
	ip4 := addr.IP.To4()
	v := uint32(ip4[0])<<24 | uint32(ip4[1])<<16 | uint32(ip4[2])<<8 | uint32(ip4[3])
	return SocketAddress{IPv4: v, Port: uint16(addr.Port)}
}

// EnableRXInterrupt arms or disarms the interrupt-mode delivery path used
// by ProcessingLoop.
func (m *MediumEndpoint) EnableRXInterrupt(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rxInterruptEnabled = enabled
}

// RegisterRXDone installs the interrupt-mode callback.
func (m *MediumEndpoint) RegisterRXDone(fn RXDoneFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rxCallback = fn
}

// ProcessingLoop, when RX interrupt delivery is armed and a callback is
// registered, performs one zero-timeout receive and invokes the callback if
// a datagram arrived; otherwise it returns without reading. Call this
// repeatedly from a cooperative driver tick.
func (m *MediumEndpoint) ProcessingLoop() {
	m.mu.Lock()
	enabled := m.rxInterruptEnabled
	cb := m.rxCallback
	m.mu.Unlock()

	if !enabled || cb == nil {
		return
	}

	buf := make([]byte, m.BufferCapacity())
	n, origin, err := m.ReceiveBlocking(buf, 0)
	if err != nil {
		globalLogger.Warn(fmt.Sprintf("medium processing loop: %v", err))
		return
	}
	if n > 0 {
		cb(buf[:n], origin)
	}
}

// RunProcessingThread spawns one worker goroutine, via errgroup, that
// loops on receive and invokes the registered callback on every non-self
// datagram, until ctx is cancelled. This improves on a
// never-joined worker thread with a clean cancellation path: the
// goroutine observes ctx via a bounded receive deadline instead of an
// unbounded one.
func (m *MediumEndpoint) RunProcessingThread(ctx context.Context) *errgroup.Group {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		buf := make([]byte, m.BufferCapacity())
		for {
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			n, origin, err := m.ReceiveBlocking(buf, 200*time.Millisecond)
			if err != nil {
				globalLogger.Warn(fmt.Sprintf("medium worker: %v", err))
				continue
			}
			if n == 0 {
				continue
			}

			m.mu.Lock()
			cb := m.rxCallback
			m.mu.Unlock()
			if cb != nil {
				cb(buf[:n], origin)
			}
		}
	})
	return g
}
