package serial

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/upshift/pkg/irq"
	"github.com/robotalks/upshift/pkg/sim"
)

func openPair(t *testing.T) (master io.ReadWriteCloser, p *Port) {
	m, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { m.Close(); slave.Close() })

	p, err = Open(slave.Name(), 9600)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	require.Equal(t, slave.Name(), p.Name)
	return m, p
}

func TestOpenPtySlave(t *testing.T) {
	master, p := openPair(t)
	_, err := p.Write([]byte("up"))
	require.NoError(t, err)
	buf := make([]byte, 2)
	_, err = io.ReadFull(master, buf)
	require.NoError(t, err)
	require.Equal(t, "up", string(buf))
}

func TestReadAfterIdle(t *testing.T) {
	master, p := openPair(t)
	readCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		buf := make([]byte, 8)
		n, err := p.Read(buf)
		if err != nil {
			errCh <- err
			return
		}
		readCh <- string(buf[:n])
	}()

	time.Sleep(3 * DefaultReadTimeout)
	_, err := master.Write([]byte("abc"))
	require.NoError(t, err)
	select {
	case s := <-readCh:
		require.Equal(t, "abc", s)
	case err := <-errCh:
		t.Fatalf("read error after idle: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("nothing read")
	}
}

func TestReadAfterClose(t *testing.T) {
	_, p := openPair(t)
	errCh := make(chan error, 1)
	go func() {
		_, err := p.Read(make([]byte, 1))
		errCh <- err
	}()
	require.NoError(t, p.Close())
	select {
	case err := <-errCh:
		require.Equal(t, io.EOF, err)
	case <-time.After(2 * time.Second):
		t.Fatal("read not unblocked by close")
	}
	require.NoError(t, p.Close())
}

func TestLineInputAfterIdle(t *testing.T) {
	master, p := openPair(t)
	line := sim.NewLine(sim.NewUSART(irq.USART1, nil), 9600).Attach(p, io.Discard)
	// no stepping: everything read stays in the backlog
	line.UnitTime = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lineErr := make(chan error, 1)
	go func() { lineErr <- line.Run(ctx) }()

	time.Sleep(3 * DefaultReadTimeout)
	_, err := master.Write([]byte("abc"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return line.Backlog() == 3
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.Equal(t, context.Canceled, <-lineErr)
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open("", 9600)
	require.Error(t, err)
	_, err = Open("/dev/does-not-exist-upshift", 9600)
	require.Error(t, err)
}
