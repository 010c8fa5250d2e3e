package ds9

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func TestSendFITSStreamsImage(t *testing.T) {
	conn := &testConn{getBuf: "SAOImage DS9\nSAOImageDS9 8.4.1\n"}
	c := newTestCommander(conn)

	image := "SIMPLE  =                    T"
	require.NoError(t, c.SendFITS(strings.NewReader(image), 1, false, false))

	require.Equal(t, "fits", conn.fdParams)
	require.Equal(t, image, string(conn.fileData))
	require.Equal(t, []string{"frame 1"}, conn.sets)
}

func TestSendFITSMaskUsesMaskPath(t *testing.T) {
	conn := &testConn{}
	c := newTestCommander(conn)

	require.NoError(t, c.SendFITS(strings.NewReader("mask data"), 2, true, false))
	require.Equal(t, "fits mask", conn.fdParams)
}

func TestSendFITSCompresses(t *testing.T) {
	conn := &testConn{}
	c := newTestCommander(conn)

	image := strings.Repeat("pixel row\n", 100)
	require.NoError(t, c.SendFITS(strings.NewReader(image), 1, false, true))

	zr, err := gzip.NewReader(bytes.NewReader(conn.fileData))
	require.NoError(t, err)
	decoded, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.Equal(t, image, string(decoded))
}
