// Package network provides listener helpers for serving the web UI over TLS.
package network

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"net/http"
	"sync"
)

// httpsRedirectConn sniffs the first bytes of a connection on a TLS port.
// When they parse as a plain HTTP request it answers with a temporary
// redirect to the https URL and closes; otherwise the bytes are replayed
// to the TLS server untouched.
type httpsRedirectConn struct {
	net.Conn

	sniffed   []byte
	sniffPos  int
	sniffOnce sync.Once
}

type httpsRedirectListener struct {
	net.Listener
}

// NewHttpsRedirectListener wraps listener so plain HTTP requests hitting a
// TLS port get redirected instead of failing the handshake.
func NewHttpsRedirectListener(listener net.Listener) net.Listener {
	return &httpsRedirectListener{
		Listener: listener,
	}
}

func (l *httpsRedirectListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return &httpsRedirectConn{Conn: conn}, nil
}

func (c *httpsRedirectConn) sniff() {
	buf := make([]byte, 2048)
	n, err := c.Conn.Read(buf)
	c.sniffed = buf[:n]
	if err != nil {
		return
	}

	request, err := http.ReadRequest(bufio.NewReader(bytes.NewReader(c.sniffed)))
	if err != nil {
		// Not plain HTTP, likely a TLS ClientHello; replay the bytes.
		return
	}

	resp := http.Response{
		StatusCode: http.StatusTemporaryRedirect,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{},
	}
	resp.Header.Set("Location", fmt.Sprintf("https://%v%v", request.Host, request.RequestURI))
	_ = resp.Write(c.Conn)
	_ = c.Close()
	c.sniffed = nil
}

func (c *httpsRedirectConn) Read(buf []byte) (int, error) {
	c.sniffOnce.Do(c.sniff)

	if len(c.sniffed) > c.sniffPos {
		n := copy(buf, c.sniffed[c.sniffPos:])
		c.sniffPos += n
		if c.sniffPos >= len(c.sniffed) {
			c.sniffed = nil
			c.sniffPos = 0
		}
		return n, nil
	}

	return c.Conn.Read(buf)
}
