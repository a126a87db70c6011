package suggest

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// fakeWordserve answers requests read from reqR on respW using handle.
func fakeWordserve(t *testing.T, reqR io.Reader, respW io.WriteCloser, handle func(ipcRequest) interface{}) {
	t.Helper()
	go func() {
		defer respW.Close()
		dec := msgpack.NewDecoder(reqR)
		for {
			var req ipcRequest
			if err := dec.Decode(&req); err != nil {
				return
			}
			resp := handle(req)
			if resp == nil {
				continue
			}
			data, err := msgpack.Marshal(resp)
			if err != nil {
				t.Errorf("marshal: %v", err)
				return
			}
			if _, err := respW.Write(data); err != nil {
				return
			}
		}
	}()
}

func newPipeClient(t *testing.T, handle func(ipcRequest) interface{}) *IPCClient {
	t.Helper()
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	fakeWordserve(t, reqR, respW, handle)
	c := NewIPCClientWithConn(respR, reqW)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestIPCClient_RoundTrip(t *testing.T) {
	c := newPipeClient(t, func(req ipcRequest) interface{} {
		if req.Prefix != "ame" || req.Limit != 2 {
			t.Errorf("request = %+v", req)
		}
		return map[string]interface{}{
			"id": req.ID,
			"s": []map[string]interface{}{
				{"w": "amenity", "r": 1},
				{"w": "america", "r": 2},
			},
			"c": 2,
			"t": 145,
		}
	})

	out, err := c.Suggest(context.Background(), Request{Query: "ame", Limit: 2})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(out) != 2 || out[0] != "amenity" || out[1] != "america" {
		t.Fatalf("suggestions = %v", out)
	}
}

func TestIPCClient_RemoteError(t *testing.T) {
	c := newPipeClient(t, func(req ipcRequest) interface{} {
		return map[string]interface{}{"id": req.ID, "e": "prefix too long", "c": 400}
	})

	_, err := c.Suggest(context.Background(), Request{Query: "xx"})
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *RemoteError", err)
	}
	if re.Code != 400 || re.Message != "prefix too long" {
		t.Fatalf("remote error = %+v", re)
	}
}

func TestIPCClient_IgnoresUnknownIDs(t *testing.T) {
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	go func() {
		defer respW.Close()
		dec := msgpack.NewDecoder(reqR)
		var req ipcRequest
		if err := dec.Decode(&req); err != nil {
			return
		}
		for _, frame := range []interface{}{
			map[string]interface{}{"id": "status", "c": 0},
			map[string]interface{}{"id": req.ID, "s": []map[string]interface{}{{"w": "hello", "r": 1}}, "c": 1},
		} {
			data, _ := msgpack.Marshal(frame)
			if _, err := respW.Write(data); err != nil {
				return
			}
		}
		_, _ = io.Copy(io.Discard, reqR)
	}()
	c2 := NewIPCClientWithConn(respR, reqW)
	defer c2.Close()

	out, err := c2.Suggest(context.Background(), Request{Query: "he"})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(out) != 1 || out[0] != "hello" {
		t.Fatalf("suggestions = %v", out)
	}
}

func TestIPCClient_ContextCancel(t *testing.T) {
	c := newPipeClient(t, func(ipcRequest) interface{} { return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Suggest(ctx, Request{Query: "he"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestIPCClient_ClosedClient(t *testing.T) {
	c := newPipeClient(t, func(ipcRequest) interface{} { return nil })
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := c.Suggest(context.Background(), Request{Query: "he"}); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}
