package xpa

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// errorPrefix marks error lines emitted by the XPA client programs.
const errorPrefix = "XPA$ERROR"

// Settings configure the command driver.
type Settings struct {
	// GetPath is the xpaget binary, resolved from PATH when empty.
	GetPath string
	// SetPath is the xpaset binary, resolved from PATH when empty.
	SetPath string
	// Timeout bounds a single request. Zero means no limit beyond what
	// the tools themselves enforce.
	Timeout time.Duration
}

// NewCommandOpener returns a factory that opens connections backed by
// the external xpaget and xpaset programs. Opening fails when either
// program cannot be located, so a missing XPA installation surfaces at
// connection time rather than on the first request.
func NewCommandOpener(settings Settings) OpenFunc {
	return func(mode string) (Conn, error) {
		resolved := settings
		if resolved.GetPath == "" {
			path, err := exec.LookPath("xpaget")
			if err != nil {
				return nil, fmt.Errorf("locate xpaget: %w", err)
			}
			resolved.GetPath = path
		}
		if resolved.SetPath == "" {
			path, err := exec.LookPath("xpaset")
			if err != nil {
				return nil, fmt.Errorf("locate xpaset: %w", err)
			}
			resolved.SetPath = path
		}
		return &commandConn{settings: resolved, mode: mode}, nil
	}
}

// commandConn shells out to the XPA client programs for each request.
// The programs speak the XPA wire protocol themselves; this driver only
// maps their process-level results onto the Conn contract.
type commandConn struct {
	settings Settings
	mode     string
}

func (c *commandConn) Get(template, params, mode string) (int, []byte, string, error) {
	ctx, cancel := c.requestContext()
	defer cancel()

	cmd := exec.CommandContext(ctx, c.settings.GetPath, requestArgs(template, params)...)
	cmd.Env = requestEnv(mode)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	if errMsg := parseError(stderr.String()); errMsg != "" {
		if isZeroMatch(errMsg) {
			return 0, nil, "", nil
		}
		return 1, nil, errMsg, nil
	}
	if runErr != nil {
		return 0, nil, "", fmt.Errorf("run xpaget: %w", runErr)
	}
	return 1, stdout.Bytes(), "", nil
}

func (c *commandConn) Set(template, params, mode string, data []byte) (int, string, error) {
	return c.send(template, params, mode, bytes.NewReader(data))
}

func (c *commandConn) SetFd(template, params, mode string, f *os.File) (int, string, error) {
	return c.send(template, params, mode, f)
}

func (c *commandConn) send(template, params, mode string, stdin io.Reader) (int, string, error) {
	ctx, cancel := c.requestContext()
	defer cancel()

	cmd := exec.CommandContext(ctx, c.settings.SetPath, requestArgs(template, params)...)
	cmd.Env = requestEnv(mode)
	cmd.Stdin = stdin
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	if errMsg := parseError(stderr.String()); errMsg != "" {
		if isZeroMatch(errMsg) {
			return 0, "", nil
		}
		return 1, errMsg, nil
	}
	if runErr != nil {
		return 0, "", fmt.Errorf("run xpaset: %w", runErr)
	}
	return 1, "", nil
}

// Close releases the session. The command driver holds no persistent
// transport, so only the handle state goes away.
func (c *commandConn) Close() error {
	return nil
}

func (c *commandConn) requestContext() (context.Context, context.CancelFunc) {
	if c.settings.Timeout > 0 {
		return context.WithTimeout(context.Background(), c.settings.Timeout)
	}
	return context.WithCancel(context.Background())
}

func requestArgs(template, params string) []string {
	return append([]string{template}, strings.Fields(params)...)
}

// requestEnv forwards mode entries ("key=value,key=value") to the tools
// through their XPA_* environment knobs.
func requestEnv(mode string) []string {
	env := os.Environ()
	for _, entry := range strings.Split(mode, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		key, value, found := strings.Cut(entry, "=")
		if !found {
			continue
		}
		env = append(env, "XPA_"+strings.ToUpper(strings.TrimSpace(key))+"="+strings.TrimSpace(value))
	}
	return env
}

// parseError extracts XPA$ERROR lines from the tools' stderr.
func parseError(stderr string) string {
	var msgs []string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, errorPrefix) {
			msgs = append(msgs, line)
		}
	}
	return strings.Join(msgs, "; ")
}

// isZeroMatch reports whether the error text describes a template that
// matched no registered access points, which the client library reports
// as zero completed transfers rather than a per-server error.
func isZeroMatch(errMsg string) bool {
	return strings.Contains(errMsg, "access points match")
}
