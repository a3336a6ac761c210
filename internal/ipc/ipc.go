// Package ipc carries commands from the CLI to the daemon over a Unix
// socket: one JSON request and one JSON response per connection.
package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrDaemonUnavailable is returned when no daemon listens on the socket.
	ErrDaemonUnavailable = errors.New("clipman daemon is not running")
	// ErrNotFound is returned when the daemon reports an unknown entry.
	ErrNotFound = errors.New("entry not found")
)

const defaultTimeout = 5 * time.Second

// Accept failures back off from minAcceptDelay, doubling up to maxAcceptDelay.
const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// Handler serves one request.
type Handler interface {
	Handle(ctx context.Context, req *Request) *Response
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req *Request) *Response

func (f HandlerFunc) Handle(ctx context.Context, req *Request) *Response { return f(ctx, req) }

// Server accepts requests on a Unix socket.
type Server struct {
	socketPath string
	handler    Handler
	logger     *zap.Logger
	wg         sync.WaitGroup
}

// NewServer returns a server for socketPath.
func NewServer(socketPath string, handler Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{socketPath: socketPath, handler: handler, logger: logger}
}

// Serve listens until ctx is cancelled. A stale socket file is removed
// first; callers must ensure no other daemon owns it.
func (s *Server) Serve(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o700); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}
	os.Remove(s.socketPath)
	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}
	defer os.Remove(s.socketPath)
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		ln.Close()
		return fmt.Errorf("failed to restrict socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", zap.String("socket", s.socketPath))
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer s.wg.Wait()

	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("IPC listener closed: %w", err)
			}
			delay = nextAcceptDelay(delay)
			s.logger.Debug("Accept failed", zap.Error(err), zap.Duration("retry_in", delay))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			continue
		}
		delay = 0
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

func nextAcceptDelay(d time.Duration) time.Duration {
	if d == 0 {
		return minAcceptDelay
	}
	return min(2*d, maxAcceptDelay)
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(defaultTimeout))
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	var req Request
	if err := dec.Decode(&req); err != nil {
		enc.Encode(&Response{Status: StatusError, Message: "invalid request: " + err.Error()})
		return
	}
	resp := s.handler.Handle(ctx, &req)
	if resp == nil {
		resp = &Response{Status: StatusError, Message: "no response"}
	}
	if err := enc.Encode(resp); err != nil {
		s.logger.Debug("Failed to write IPC response", zap.String("command", req.Command), zap.Error(err))
	}
}

// Client sends requests to the daemon.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient returns a client for socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath, timeout: defaultTimeout}
}

// SendRequest connects to the daemon, sends a request, and returns the
// response. Non-ok statuses are returned as errors.
func (c *Client) SendRequest(ctx context.Context, req *Request) (*Response, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	switch resp.Status {
	case StatusOK:
		return &resp, nil
	case StatusNotFound:
		return &resp, fmt.Errorf("%w: %s", ErrNotFound, resp.Message)
	default:
		return &resp, fmt.Errorf("daemon error: %s", resp.Message)
	}
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(c.timeout))
	}
	return conn, nil
}

// Call sends command with args and decodes the response data into out
// when out is non-nil.
func (c *Client) Call(ctx context.Context, command string, args, out any) error {
	req, err := NewRequest(command, args)
	if err != nil {
		return fmt.Errorf("failed to encode %s arguments: %w", command, err)
	}
	resp, err := c.SendRequest(ctx, req)
	if err != nil {
		return err
	}
	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", command, err)
		}
	}
	return nil
}

// History lists entries, most recently used first.
func (c *Client) History(ctx context.Context, args HistoryArgs) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	err := c.Call(ctx, CmdHistory, args, &entries)
	return entries, err
}

func (c *Client) Pin(ctx context.Context, id uint64) error {
	return c.Call(ctx, CmdPin, IDArgs{ID: id}, nil)
}

func (c *Client) Unpin(ctx context.Context, id uint64) error {
	return c.Call(ctx, CmdUnpin, IDArgs{ID: id}, nil)
}

func (c *Client) Delete(ctx context.Context, id uint64) error {
	return c.Call(ctx, CmdDelete, IDArgs{ID: id}, nil)
}

func (c *Client) Copy(ctx context.Context, id uint64) error {
	return c.Call(ctx, CmdCopy, IDArgs{ID: id}, nil)
}

// Clear removes every unpinned entry.
func (c *Client) Clear(ctx context.Context) (int, error) {
	var res ClearResult
	err := c.Call(ctx, CmdClear, nil, &res)
	return res.Removed, err
}

// Flush asks the daemon to save its history now.
func (c *Client) Flush(ctx context.Context) error {
	return c.Call(ctx, CmdFlush, nil, nil)
}

func (c *Client) Status(ctx context.Context) (*StatusInfo, error) {
	var info StatusInfo
	if err := c.Call(ctx, CmdStatus, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
