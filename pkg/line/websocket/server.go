// Package websocket serves the simulated line over websocket. Each message
// carries raw line bytes. One client is attached at a time.
package websocket

import (
	"errors"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

// ErrBusy is reported to a second client.
var ErrBusy = errors.New("line busy")

// Server is an io.ReadWriteCloser over the attached client.
// Writes without a client are discarded like bytes on an unplugged cable.
type Server struct {
	listener net.Listener
	rxCh     chan []byte
	closeCh  chan struct{}
	pending  []byte

	conn      *websocket.Conn
	connLock  sync.Mutex
	closeOnce sync.Once
}

// Listen starts serving the line at ws://addr/path.
func Listen(addr, path string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		listener: ln,
		rxCh:     make(chan []byte),
		closeCh:  make(chan struct{}),
	}
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.Handle(path, websocket.Handler(s.serve))
	go http.Serve(ln, mux)
	glog.Infof("line served at ws://%s%s", ln.Addr(), path)
	return s, nil
}

// Addr is the listening address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Attached indicates a client is connected.
func (s *Server) Attached() bool {
	s.connLock.Lock()
	defer s.connLock.Unlock()
	return s.conn != nil
}

// Read implements io.Reader.
func (s *Server) Read(b []byte) (int, error) {
	if len(s.pending) == 0 {
		select {
		case <-s.closeCh:
			return 0, io.EOF
		case s.pending = <-s.rxCh:
		}
	}
	n := copy(b, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// Write implements io.Writer.
func (s *Server) Write(b []byte) (int, error) {
	s.connLock.Lock()
	conn := s.conn
	s.connLock.Unlock()
	if conn == nil {
		return len(b), nil
	}
	if err := websocket.Message.Send(conn, b); err != nil {
		glog.Warningf("line client %s: %v", conn.Request().RemoteAddr, err)
		s.detach(conn)
		conn.Close()
	}
	return len(b), nil
}

// Close implements io.Closer.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closeCh)
		err = s.listener.Close()
		s.connLock.Lock()
		if s.conn != nil {
			s.conn.Close()
		}
		s.connLock.Unlock()
	})
	return err
}

func (s *Server) serve(conn *websocket.Conn) {
	remote := conn.Request().RemoteAddr
	s.connLock.Lock()
	if s.conn != nil {
		s.connLock.Unlock()
		glog.Warningf("line client %s rejected: %v", remote, ErrBusy)
		return
	}
	s.conn = conn
	s.connLock.Unlock()
	defer s.detach(conn)

	glog.Infof("line client %s attached", remote)
	for {
		var data []byte
		if err := websocket.Message.Receive(conn, &data); err != nil {
			if err != io.EOF {
				glog.Warningf("line client %s: %v", remote, err)
			}
			break
		}
		select {
		case s.rxCh <- data:
		case <-s.closeCh:
			return
		}
	}
	glog.Infof("line client %s detached", remote)
}

func (s *Server) detach(conn *websocket.Conn) {
	s.connLock.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.connLock.Unlock()
}
