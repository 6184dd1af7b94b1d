package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/sitework/leveler/internal/model"
)

// Client talks to the store daemon over its Unix domain socket. One
// request per connection, a fixed conservative timeout, no retries;
// transport failures surface as ErrUnavailable for the caller to handle.
type Client struct {
	socketPath string
	timeout    time.Duration
}

func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    10 * time.Second,
	}
}

func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: connect to store at %s: %v\n"+
			"Is the store daemon running? Start it with: leveler store",
			ErrUnavailable, c.socketPath, err)
	}
	defer func() { _ = conn.Close() }()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	if err := WriteFrame(conn, req); err != nil {
		return nil, fmt.Errorf("%w: send request: %v", ErrUnavailable, err)
	}

	var resp Response
	if err := ReadFrame(conn, &resp); err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	return &resp, nil
}

func (c *Client) SendCommand(ctx context.Context, command string, params any) (*Response, error) {
	req, err := NewRequest(command, params)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, req)
}

// FetchSnapshot implements Store.
func (c *Client) FetchSnapshot(ctx context.Context) (*SnapshotData, error) {
	resp, err := c.SendCommand(ctx, CommandGetSnapshot, nil)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errorFromDetail(resp.Error)
	}

	var data SnapshotData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &data, nil
}

// UpdateTask implements Store.
func (c *Client) UpdateTask(ctx context.Context, upd TaskUpdate) (*model.Task, error) {
	resp, err := c.SendCommand(ctx, CommandUpdateTask, upd)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errorFromDetail(resp.Error)
	}

	var task model.Task
	if err := json.Unmarshal(resp.Data, &task); err != nil {
		return nil, fmt.Errorf("decode updated task: %w", err)
	}
	return &task, nil
}
