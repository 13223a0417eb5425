package line

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiscard(t *testing.T) {
	d := Discard()
	n, err := d.Write([]byte("gone"))
	require.NoError(t, err)
	require.Equal(t, 4, n)

	errCh := make(chan error, 1)
	go func() {
		_, err := d.Read(make([]byte, 1))
		errCh <- err
	}()
	require.NoError(t, d.Close())
	require.Equal(t, io.EOF, <-errCh)
}

func TestStdioClose(t *testing.T) {
	require.NoError(t, Stdio().Close())
}
