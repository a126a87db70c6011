package suggest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

type ipcRequest struct {
	ID     string `msgpack:"id"`
	Prefix string `msgpack:"p"`
	Limit  int    `msgpack:"l,omitempty"`
}

type ipcSuggestion struct {
	Word string `msgpack:"w"`
	Rank uint16 `msgpack:"r"`
}

// ipcResponse covers both the completion and the error shape. "c" is the
// count in one and the error code in the other.
type ipcResponse struct {
	ID          string          `msgpack:"id"`
	Suggestions []ipcSuggestion `msgpack:"s"`
	C           int             `msgpack:"c"`
	TimeTaken   int64           `msgpack:"t"`
	Error       string          `msgpack:"e"`
}

// IPCClient speaks the wordserve msgpack protocol over a pair of streams,
// usually the stdin and stdout of a child process. Requests may be issued
// concurrently; responses are routed back by id.
type IPCClient struct {
	w   io.WriteCloser
	dec *msgpack.Decoder
	cmd *exec.Cmd

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	pending map[string]chan ipcResponse
	closed  bool
	readErr error
	done    chan struct{}
}

// NewIPCClient starts the wordserve binary at path and connects to it.
func NewIPCClient(path string, args ...string) (*IPCClient, error) {
	cmd := exec.Command(path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("suggest: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("suggest: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("suggest: start %s: %w", path, err)
	}
	c := NewIPCClientWithConn(stdout, stdin)
	c.cmd = cmd
	return c, nil
}

// NewIPCClientWithConn uses r for responses and w for requests. Close closes w.
func NewIPCClientWithConn(r io.Reader, w io.WriteCloser) *IPCClient {
	c := &IPCClient{
		w:       w,
		dec:     msgpack.NewDecoder(r),
		pending: make(map[string]chan ipcResponse),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *IPCClient) Suggest(ctx context.Context, req Request) ([]string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.readErr != nil {
		err := c.readErr
		c.mu.Unlock()
		return nil, err
	}
	c.nextID++
	id := "req_" + strconv.FormatUint(c.nextID, 10)
	ch := make(chan ipcResponse, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	data, err := msgpack.Marshal(ipcRequest{ID: id, Prefix: req.Query, Limit: req.Limit})
	if err != nil {
		c.forget(id)
		return nil, fmt.Errorf("suggest: encode request: %w", err)
	}
	c.writeMu.Lock()
	_, err = c.w.Write(data)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return nil, fmt.Errorf("suggest: write request: %w", err)
	}

	select {
	case resp := <-ch:
		if resp.Error != "" {
			return nil, &RemoteError{Code: resp.C, Message: resp.Error}
		}
		out := make([]string, 0, len(resp.Suggestions))
		for _, s := range resp.Suggestions {
			out = append(out, s.Word)
		}
		return out, nil
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	case <-c.done:
		c.mu.Lock()
		err := c.readErr
		c.mu.Unlock()
		if err == nil {
			err = ErrClosed
		}
		return nil, err
	}
}

// Close stops the client and, when it owns one, the child process.
func (c *IPCClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.w.Close()
	if c.cmd != nil && c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
		_ = c.cmd.Wait()
	}
	return err
}

func (c *IPCClient) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *IPCClient) readLoop() {
	for {
		var resp ipcResponse
		if err := c.dec.Decode(&resp); err != nil {
			if errors.Is(err, io.EOF) {
				err = ErrClosed
			} else {
				err = fmt.Errorf("suggest: read response: %w", err)
			}
			c.mu.Lock()
			c.readErr = err
			c.pending = make(map[string]chan ipcResponse)
			c.mu.Unlock()
			close(c.done)
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		// Status frames and responses to abandoned requests have no waiter.
		if ok {
			ch <- resp
		}
	}
}
