package ds9

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// SendFITS streams a FITS image into the given display frame. When
// compress is true the stream is gzip-compressed on the way, which ds9
// accepts and which keeps large images off the wire. Mask planes go
// through the display's dedicated mask path.
func (c *Commander) SendFITS(r io.Reader, frame int, mask, compress bool) error {
	if err := c.Cmd(SelectFrame(frame)); err != nil {
		return err
	}
	if err := c.Flush(); err != nil {
		return err
	}

	params := "fits"
	if mask {
		params = "fits mask"
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("create image pipe: %w", err)
	}
	writeErr := make(chan error, 1)
	go func() {
		defer pw.Close()
		writeErr <- pipeImage(pw, r, compress)
	}()

	ret, sendErr := c.client.SetFd(nil, c.target, params, "", pr)
	pr.Close()
	werr := <-writeErr

	if sendErr != nil {
		return fmt.Errorf("send fits: %w", sendErr)
	}
	if ret != "" {
		return &CommandError{Cmd: "fits", Message: ret}
	}
	if werr != nil {
		return fmt.Errorf("stream fits: %w", werr)
	}

	if c.NeedShow() {
		return c.CmdFrame(frame, "raise")
	}
	return nil
}

func pipeImage(w io.Writer, r io.Reader, compress bool) error {
	if !compress {
		_, err := io.Copy(w, r)
		return err
	}
	zw := gzip.NewWriter(w)
	if _, err := io.Copy(zw, r); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
