package diag

import (
	"fmt"
	"net"
)

type udpConn interface {
	Write(p []byte) (int, error)
	Close() error
}

type resolveUDPFunc func(network, address string) (*net.UDPAddr, error)
type dialUDPFunc func(network string, laddr, raddr *net.UDPAddr) (udpConn, error)

// UDP sends every line as one datagram.
type UDP struct {
	dest string
	conn udpConn
}

func NewUDP(dest string) (*UDP, error) {
	return newUDP(dest, net.ResolveUDPAddr, func(network string, laddr, raddr *net.UDPAddr) (udpConn, error) {
		return net.DialUDP(network, laddr, raddr)
	})
}

func newUDP(dest string, resolve resolveUDPFunc, dial dialUDPFunc) (*UDP, error) {
	addr, err := resolve("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("diag: resolve %s: %w", dest, err)
	}
	// DialUDP picks the local address.
	conn, err := dial("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("diag: dial udp: %w", err)
	}
	return &UDP{dest: dest, conn: conn}, nil
}

func (u *UDP) Printf(format string, args ...any) {
	_, _ = u.conn.Write([]byte(fmt.Sprintf(format, args...) + "\n"))
}

func (u *UDP) Close() error {
	if u.conn == nil {
		return nil
	}
	return u.conn.Close()
}
