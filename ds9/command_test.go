package ds9

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lsst/display-ds9/xpa"
)

// testConn records requests and serves scripted responses.
type testConn struct {
	getBuf    string
	getErrMsg string
	setErrMsg string

	gets     []string
	sets     []string
	fileData []byte
	fdParams string
}

func (c *testConn) Get(template, params, mode string) (int, []byte, string, error) {
	c.gets = append(c.gets, params)
	if c.getErrMsg != "" {
		return 1, nil, c.getErrMsg, nil
	}
	return 1, []byte(c.getBuf), "", nil
}

func (c *testConn) Set(template, params, mode string, data []byte) (int, string, error) {
	c.sets = append(c.sets, params)
	if c.setErrMsg != "" {
		return 1, c.setErrMsg, nil
	}
	return 1, "", nil
}

func (c *testConn) SetFd(template, params, mode string, f *os.File) (int, string, error) {
	c.fdParams = params
	data, err := io.ReadAll(f)
	if err != nil {
		return 0, "", err
	}
	c.fileData = data
	return 1, "", nil
}

func (c *testConn) Close() error { return nil }

func newTestCommander(conn *testConn, opts ...CommanderOption) *Commander {
	manager := xpa.NewManager(func(string) (xpa.Conn, error) {
		return conn, nil
	})
	opts = append([]CommanderOption{WithTarget("testds9")}, opts...)
	return NewCommander(manager, opts...)
}

func TestCmdFlushesImmediatelyByDefault(t *testing.T) {
	conn := &testConn{}
	c := newTestCommander(conn)

	require.NoError(t, c.Cmd("frame 1"))
	require.Equal(t, []string{"frame 1"}, conn.sets)

	require.NoError(t, c.Cmd("zoom to 2"))
	require.Equal(t, []string{"frame 1", "zoom to 2"}, conn.sets)
}

func TestCmdBuffersUntilFlush(t *testing.T) {
	conn := &testConn{}
	c := newTestCommander(conn)

	require.NoError(t, c.PushSize(-1))
	require.NoError(t, c.Cmd("frame 1"))
	require.NoError(t, c.Cmd("zoom to 2"))
	require.Empty(t, conn.sets)

	require.NoError(t, c.Flush())
	require.Equal(t, []string{"frame 1;zoom to 2"}, conn.sets)

	// Flushing an empty buffer sends nothing.
	require.NoError(t, c.Flush())
	require.Equal(t, []string{"frame 1;zoom to 2"}, conn.sets)
}

func TestCmdFlushesBeforeOverflowingLine(t *testing.T) {
	conn := &testConn{}
	c := newTestCommander(conn)

	require.NoError(t, c.PushSize(-1))
	chunk := strings.Repeat("x", 1500)
	require.NoError(t, c.Cmd(chunk))
	require.NoError(t, c.Cmd(chunk))
	require.Empty(t, conn.sets)

	// A third chunk would cross xpa's line limit, so pending commands
	// go out first.
	require.NoError(t, c.Cmd(chunk))
	require.Len(t, conn.sets, 1)
	require.Equal(t, chunk+";"+chunk, conn.sets[0])

	require.NoError(t, c.Flush())
	require.Equal(t, chunk, conn.sets[1])
}

func TestPopSizeRestoresImmediateFlush(t *testing.T) {
	conn := &testConn{}
	c := newTestCommander(conn)

	require.NoError(t, c.PushSize(-1))
	require.NoError(t, c.Cmd("frame 1"))
	require.Empty(t, conn.sets)

	require.NoError(t, c.PopSize())
	require.Equal(t, []string{"frame 1"}, conn.sets)

	require.NoError(t, c.Cmd("zoom to 2"))
	require.Equal(t, []string{"frame 1", "zoom to 2"}, conn.sets)
}

func TestCmdReturnsCommandError(t *testing.T) {
	conn := &testConn{setErrMsg: "XPA$ERROR unknown command"}
	c := newTestCommander(conn)

	err := c.Cmd("bogus")
	require.Error(t, err)
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, "bogus", cmdErr.Cmd)
	require.Contains(t, cmdErr.Message, "XPA$ERROR")
}

func TestCmdFrameSelectsFrame(t *testing.T) {
	conn := &testConn{}
	c := newTestCommander(conn)

	require.NoError(t, c.CmdFrame(3, "zoom to 2"))
	require.Equal(t, []string{"frame 3; zoom to 2"}, conn.sets)
}

func TestQueryTrimsResponse(t *testing.T) {
	conn := &testConn{getBuf: "  5.8.1 \n"}
	c := newTestCommander(conn)

	out, err := c.Query("version")
	require.NoError(t, err)
	require.Equal(t, "5.8.1", out)
	require.Equal(t, []string{"version"}, conn.gets)
}

func TestEmptyCmdIsIgnored(t *testing.T) {
	conn := &testConn{}
	c := newTestCommander(conn)

	require.NoError(t, c.Cmd(""))
	require.NoError(t, c.Cmd("   "))
	require.Empty(t, conn.sets)
}
