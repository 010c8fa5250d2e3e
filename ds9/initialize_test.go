package ds9

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitializePreparesDisplay(t *testing.T) {
	conn := &testConn{getBuf: "SAOImage DS9\nSAOImageDS9 8.4.1\n"}
	c := newTestCommander(conn)

	require.NoError(t, c.Initialize(context.Background()))
	require.Equal(t, []string{"iconify no; raise", "wcs wcsa"}, conn.sets)
	require.False(t, c.NeedShow())
}

func TestInitializeDetectsOldDisplay(t *testing.T) {
	conn := &testConn{getBuf: "SAOImage DS9\nSAOImageDS9 5.4\n"}
	c := newTestCommander(conn)

	require.NoError(t, c.Initialize(context.Background()))
	require.True(t, c.NeedShow())
}

func TestInitializeFailsWithoutLaunch(t *testing.T) {
	conn := &testConn{setErrMsg: "XPA$ERROR no response"}
	c := newTestCommander(conn)

	err := c.Initialize(context.Background())
	require.Error(t, err)
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
}
