package websocket

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func dial(t *testing.T, s *Server) *websocket.Conn {
	conn, err := websocket.Dial("ws://"+s.Addr().String()+"/line", "", "http://localhost/")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServerRoundTrip(t *testing.T) {
	s, err := Listen("127.0.0.1:0", "/line")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	n, err := s.Write([]byte("lost"))
	require.NoError(t, err)
	require.Equal(t, 4, n)

	conn := dial(t, s)
	require.NoError(t, websocket.Message.Send(conn, []byte("abc")))

	buf := make([]byte, 2)
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	require.Equal(t, "ab", string(buf))
	_, err = io.ReadFull(s, buf[:1])
	require.NoError(t, err)
	require.Equal(t, "c", string(buf[:1]))
	require.True(t, s.Attached())

	_, err = s.Write([]byte("ABC"))
	require.NoError(t, err)
	var data []byte
	require.NoError(t, websocket.Message.Receive(conn, &data))
	require.Equal(t, "ABC", string(data))
}

func TestServerOneClient(t *testing.T) {
	s, err := Listen("127.0.0.1:0", "/line")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	first := dial(t, s)
	require.NoError(t, websocket.Message.Send(first, []byte("x")))
	buf := make([]byte, 1)
	_, err = s.Read(buf)
	require.NoError(t, err)

	second := dial(t, s)
	var data []byte
	require.Error(t, websocket.Message.Receive(second, &data))

	first.Close()
	require.Eventually(t, func() bool { return !s.Attached() }, time.Second, 10*time.Millisecond)
}

func TestServerClose(t *testing.T) {
	s, err := Listen("127.0.0.1:0", "")
	require.NoError(t, err)
	errCh := make(chan error, 1)
	go func() {
		_, err := s.Read(make([]byte, 1))
		errCh <- err
	}()
	require.NoError(t, s.Close())
	require.Equal(t, io.EOF, <-errCh)
}
