package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/google/uuid"
	"go.trai.ch/thingsgate/internal/adapters/transport"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
	"go.trai.ch/zerr"
)

// Client implements ports.Remote over a line stream. Calls may be issued
// concurrently and are matched to responses by id.
type Client struct {
	out    *lineWriter
	closer io.Closer
	wait   func() error

	mu        sync.Mutex
	pending   map[string]chan Response
	done      chan struct{}
	readErr   error
	closeOnce sync.Once
}

var _ ports.Remote = (*Client)(nil)

// NewClient creates a client reading responses from r and writing requests to w.
// Closing the client closes w.
func NewClient(r io.Reader, w io.WriteCloser) *Client {
	c := &Client{
		out:     newLineWriter(w),
		closer:  w,
		pending: make(map[string]chan Response),
		done:    make(chan struct{}),
	}
	go c.readLoop(r)
	return c
}

// Spawn starts exe with args as a child process speaking the line protocol on
// its stdin and stdout. The child's stderr is forwarded.
func Spawn(ctx context.Context, exe string, args ...string) (*Client, error) {
	//nolint:gosec // G204: exe is this binary, args are fixed by the caller
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open server stdin")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open server stdout")
	}
	if err := cmd.Start(); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrServerUnreachable, err.Error()), "exe", exe)
	}
	c := NewClient(stdout, stdin)
	c.wait = cmd.Wait
	return c, nil
}

func (c *Client) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	for scanner.Scan() {
		var resp Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
	}

	c.mu.Lock()
	c.readErr = scanner.Err()
	c.mu.Unlock()
	close(c.done)
}

func (c *Client) roundTrip(ctx context.Context, method, name string, params, out any) error {
	label := name
	if label == "" {
		label = method
	}

	req := Request{ID: uuid.NewString(), Method: method, Name: name}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrParamsEncoding, err.Error()), "operation", label)
		}
		req.Params = raw
	}

	ch := make(chan Response, 1)
	c.mu.Lock()
	c.pending[req.ID] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
	}()

	if err := c.out.write(req); err != nil {
		return zerr.Wrap(domain.ErrServerUnreachable, err.Error())
	}

	var resp Response
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return c.closedErr()
	case resp = <-ch:
	}

	if resp.Error != "" {
		return transport.RemoteError(label, resp.Status, resp.Error)
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return zerr.With(zerr.Wrap(err, "invalid response from tool server"), "operation", label)
	}
	return nil
}

func (c *Client) closedErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return zerr.Wrap(domain.ErrServerUnreachable, c.readErr.Error())
	}
	return zerr.Wrap(domain.ErrServerUnreachable, "server closed the stream")
}

// Dispatch implements ports.Dispatcher by calling the remote tool service.
func (c *Client) Dispatch(ctx context.Context, op string, params domain.Params) (any, error) {
	if params == nil {
		params = domain.Params{}
	}
	var result any
	if err := c.roundTrip(ctx, MethodCall, op, params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Tools implements ports.Remote.
func (c *Client) Tools(ctx context.Context) ([]domain.Operation, error) {
	var tools []domain.Operation
	err := c.roundTrip(ctx, MethodTools, "", nil, &tools)
	return tools, err
}

// CacheStats implements ports.Remote.
func (c *Client) CacheStats(ctx context.Context) (domain.CacheStats, error) {
	var stats domain.CacheStats
	err := c.roundTrip(ctx, MethodStats, "", nil, &stats)
	return stats, err
}

// ClearCache implements ports.Remote.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.roundTrip(ctx, MethodClear, "", nil, nil)
}

// ConfigureCache implements ports.Remote.
func (c *Client) ConfigureCache(ctx context.Context, update domain.CacheUpdate) (domain.CacheStats, error) {
	var stats domain.CacheStats
	err := c.roundTrip(ctx, MethodConfigure, "", update, &stats)
	return stats, err
}

// Close closes the request stream and, for a spawned server, waits for it to exit.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.closer.Close()
		if c.wait != nil {
			<-c.done
			if werr := c.wait(); werr != nil && err == nil {
				err = zerr.Wrap(werr, "tool server exited with error")
			}
		}
	})
	return err
}
