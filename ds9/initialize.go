package ds9

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Initialize prepares the display for use: the connection is reset,
// the window is deiconified and raised, and the pixel-coordinate WCS is
// enabled. When the display is unreachable and launching is enabled, a
// local ds9 is started and polled until it answers.
func (c *Commander) Initialize(ctx context.Context) error {
	c.client.Reset()

	if err := c.prepare(); err == nil {
		return nil
	} else if !c.launch.Enabled {
		return err
	}

	if err := c.launchDisplay(ctx); err != nil {
		return err
	}
	return c.prepare()
}

func (c *Commander) prepare() error {
	if err := c.Cmd("iconify no; raise"); err != nil {
		return err
	}
	// include the pixel coordinates WCS (WCSA)
	if err := c.Cmd("wcs wcsa"); err != nil {
		return err
	}
	c.updateNeedShow()
	return nil
}

// NeedShow reports whether every image load must be followed by an
// explicit raise, working around a bug in ds9 5.4 and earlier.
func (c *Commander) NeedShow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.needShow
}

func (c *Commander) updateNeedShow() {
	major, minor, ok := splitVersion(c.Version())
	c.mu.Lock()
	c.needShow = ok && major == 5 && minor <= 4
	c.mu.Unlock()
}

func splitVersion(version string) (major, minor int, ok bool) {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

// launchDisplay starts a local ds9 and waits for it to answer commands.
func (c *Commander) launchDisplay(ctx context.Context) error {
	binary := c.launch.Binary
	if binary == "" {
		binary = "ds9"
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return fmt.Errorf("ds9 does not appear to be on your path: %w", err)
	}
	if os.Getenv("DISPLAY") == "" {
		return fmt.Errorf("DISPLAY is not set, cannot start ds9")
	}

	cmd := exec.Command(path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ds9: %w", err)
	}
	// The display outlives this process.
	if err := cmd.Process.Release(); err != nil {
		c.logger.Warn().Err(err).Msg("release ds9 process")
	}
	c.logger.Info().Str("binary", path).Msg("started ds9, waiting for it to answer")

	attempts := c.launch.Attempts
	if attempts <= 0 {
		attempts = 10
	}
	interval := c.launch.Interval.Duration
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	for i := 0; i < attempts; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		if err := c.Cmd(SelectFrame(1)); err == nil {
			return nil
		}
		c.client.Reset()
	}
	return fmt.Errorf("ds9 did not become reachable after %d attempts", attempts)
}
