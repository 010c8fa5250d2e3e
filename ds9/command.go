// Package ds9 provides a buffered command channel to the DS9 image
// display on top of the xpa binding.
package ds9

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lsst/display-ds9/internal/config"
	"github.com/lsst/display-ds9/telemetry"
	"github.com/lsst/display-ds9/xpa"
)

// lineLimit is xpa's internal line buffer less slop for separators and
// newlines. xpa silently truncates anything longer, so the commander
// flushes before crossing it.
const lineLimit = 4096 - 100

// CommandError reports error text the display returned for a command.
type CommandError struct {
	Cmd     string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("ds9 %q: %s", e.Cmd, e.Message)
}

// Commander issues commands to a single ds9 instance, batching them up
// to a configurable buffer size to keep round trips down. The zero
// buffer size (the default) flushes after every command.
type Commander struct {
	client    *xpa.Manager
	target    string
	launch    config.LaunchConfig
	logger    zerolog.Logger
	collector telemetry.Collector

	mu         sync.Mutex
	pending    []string
	pendingLen int
	sizes      []int
	needShow   bool
}

// CommanderOption customises a Commander.
type CommanderOption func(*Commander)

// WithTarget overrides the addressing template for the display.
func WithTarget(target string) CommanderOption {
	return func(c *Commander) {
		if target != "" {
			c.target = target
		}
	}
}

// WithLaunch configures starting a local ds9 during Initialize.
func WithLaunch(cfg config.LaunchConfig) CommanderOption {
	return func(c *Commander) {
		c.launch = cfg
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) CommanderOption {
	return func(c *Commander) {
		c.logger = logger
	}
}

// WithCollector attaches a telemetry collector.
func WithCollector(collector telemetry.Collector) CommanderOption {
	return func(c *Commander) {
		if collector != nil {
			c.collector = collector
		}
	}
}

// NewCommander creates a commander over the given connection manager.
// A nil manager uses the package-wide default. The target defaults to
// the access point resolved from the environment.
func NewCommander(client *xpa.Manager, opts ...CommanderOption) *Commander {
	if client == nil {
		client = xpa.Default()
	}
	xpaPort := os.Getenv("XPA_PORT")
	point, ok := ParseAccessPoint(xpaPort)
	c := &Commander{
		client:    client,
		target:    point,
		logger:    zerolog.Nop(),
		collector: telemetry.Noop(),
		sizes:     []int{0},
	}
	for _, opt := range opts {
		opt(c)
	}
	if !ok {
		c.logger.Warn().Str("xpa_port", xpaPort).Msg("failed to parse XPA_PORT, using name server lookup")
	}
	return c
}

// Target returns the addressing template in use.
func (c *Commander) Target() string {
	return c.target
}

// Cmd appends a command to the buffer, flushing when the buffer is full
// or buffering is disabled.
func (c *Commander) Cmd(cmd string) error {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// 5 bytes of headroom for the separator and trailing newline.
	if c.pendingLen+len(cmd) > lineLimit-5 {
		if err := c.flushLocked(); err != nil {
			return err
		}
	}
	c.pending = append(c.pending, cmd)
	c.pendingLen += 1 + len(cmd)
	c.collector.SetBufferOccupancy(c.pendingLen)

	if c.pendingLen >= c.sizeLocked() {
		return c.flushLocked()
	}
	return nil
}

// CmdFrame issues a command against a specific display frame.
func (c *Commander) CmdFrame(frame int, cmd string) error {
	return c.Cmd(SelectFrame(frame) + "; " + cmd)
}

// Query issues a get request and returns the trimmed response. Error
// text reported by the display comes back as the response value, the
// same way the underlying binding reports it.
func (c *Commander) Query(cmd string) (string, error) {
	out, err := c.client.Get(nil, c.target, cmd, "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// QueryFrame issues a get request against a specific frame.
func (c *Commander) QueryFrame(frame int, cmd string) (string, error) {
	return c.Query(SelectFrame(frame) + "; " + cmd)
}

// Flush sends any pending commands.
func (c *Commander) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked()
}

func (c *Commander) flushLocked() error {
	if len(c.pending) == 0 {
		return nil
	}
	cmd := strings.Join(c.pending, ";")
	c.pending = nil
	c.pendingLen = 0
	c.collector.SetBufferOccupancy(0)
	c.collector.IncBufferFlush()

	ret, err := c.client.Set(nil, c.target, cmd, "", nil, 0)
	if err != nil {
		return fmt.Errorf("send ds9 command: %w", err)
	}
	if ret != "" {
		return &CommandError{Cmd: cmd, Message: ret}
	}
	c.logger.Trace().Str("cmd", cmd).Msg("flushed ds9 commands")
	return nil
}

// SetSize sets the current buffer size. Negative values select the
// largest size xpa can carry; larger values are clamped to it.
func (c *Commander) SetSize(size int) error {
	c.mu.Lock()
	if size < 0 || size > lineLimit {
		if size > lineLimit {
			c.logger.Warn().Int("requested", size).Int("limit", lineLimit).Msg("xpa hardcodes a line limit, clamping buffer size")
		}
		size = lineLimit - 5
	}
	c.sizes[len(c.sizes)-1] = size
	err := c.flushLocked()
	c.mu.Unlock()
	return err
}

// PushSize flushes and switches to a new buffer size, remembering the
// previous one. Use a negative size for the maximum.
func (c *Commander) PushSize(size int) error {
	c.mu.Lock()
	if err := c.flushLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.sizes = append(c.sizes, 0)
	c.mu.Unlock()
	return c.SetSize(size)
}

// PopSize flushes and restores the previous buffer size.
func (c *Commander) PopSize() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.flushLocked(); err != nil {
		return err
	}
	if len(c.sizes) > 1 {
		c.sizes = c.sizes[:len(c.sizes)-1]
	}
	return nil
}

func (c *Commander) sizeLocked() int {
	return c.sizes[len(c.sizes)-1]
}

// Reset drops the underlying connection; the next command reopens it.
func (c *Commander) Reset() {
	c.client.Reset()
}
