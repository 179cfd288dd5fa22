package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Makepad-fr/tada/internal/model"
)

// Client issues requests to a host and waits for the matching responses.
type Client struct {
	conn io.ReadWriteCloser
	log  *log.Logger

	wmu sync.Mutex // guards enc
	enc *json.Encoder

	mu      sync.Mutex
	pending map[string]chan Response
	err     error // set once the read loop ends

	done chan struct{}
}

// NewClient starts reading responses from conn. Close releases it.
func NewClient(conn io.ReadWriteCloser, l *log.Logger) *Client {
	if l == nil {
		l = log.New(io.Discard)
	}
	c := &Client{
		conn:    conn,
		log:     l,
		enc:     json.NewEncoder(conn),
		pending: make(map[string]chan Response),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *Client) readLoop() {
	defer close(c.done)
	r := bufio.NewReader(c.conn)
	var err error
	for {
		var line []byte
		line, err = r.ReadBytes('\n')
		if len(line) > 0 {
			var resp Response
			if jerr := json.Unmarshal(line, &resp); jerr != nil {
				c.log.Warn("dropping malformed response", "err", jerr)
			} else {
				c.deliver(resp)
			}
		}
		if err != nil {
			break
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = ErrClosed
	if err != nil && !errors.Is(err, io.EOF) {
		c.err = fmt.Errorf("%w: %v", ErrClosed, err)
	}
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

func (c *Client) deliver(resp Response) {
	c.mu.Lock()
	ch, ok := c.pending[resp.ID]
	delete(c.pending, resp.ID)
	c.mu.Unlock()
	if !ok {
		c.log.Warn("response for unknown request", "id", resp.ID)
		return
	}
	ch <- resp
}

// Call sends op with args and decodes the result into out (which may be nil).
// It blocks until the response arrives, ctx is done, or the connection ends.
func (c *Client) Call(ctx context.Context, op string, out any, args ...any) error {
	req := Request{ID: uuid.NewString(), Op: op}
	for _, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("%s: encode argument: %w", op, err)
		}
		req.Args = append(req.Args, b)
	}

	ch := make(chan Response, 1)
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return err
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()

	c.wmu.Lock()
	err := c.enc.Encode(req)
	c.wmu.Unlock()
	if err != nil {
		c.forget(req.ID)
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}

	select {
	case <-ctx.Done():
		c.forget(req.ID)
		return ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			c.mu.Lock()
			defer c.mu.Unlock()
			return c.err
		}
		if resp.Error != "" {
			return &RemoteError{Op: op, Message: resp.Error}
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", op, err)
		}
		return nil
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Close shuts the connection and waits for the read loop to stop.
func (c *Client) Close() error {
	err := c.conn.Close()
	<-c.done
	return err
}

// GetTodos returns the full collection.
func (c *Client) GetTodos(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	if err := c.Call(ctx, OpGetTodos, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveTodos replaces the whole collection.
func (c *Client) SaveTodos(ctx context.Context, items []model.Item) (bool, error) {
	var ok bool
	err := c.Call(ctx, OpSaveTodos, &ok, items)
	return ok, err
}

// AddTodo creates an item with text, exactly as given.
func (c *Client) AddTodo(ctx context.Context, text string) (model.Item, error) {
	var it model.Item
	err := c.Call(ctx, OpAddTodo, &it, addArgs{Text: text})
	return it, err
}

// UpdateTodo applies p to the item with id. found is false when the host
// answered with no item.
func (c *Client) UpdateTodo(ctx context.Context, id string, p model.Patch) (it model.Item, found bool, err error) {
	var out *model.Item
	if err := c.Call(ctx, OpUpdateTodo, &out, id, p); err != nil {
		return model.Item{}, false, err
	}
	if out == nil {
		return model.Item{}, false, nil
	}
	return *out, true, nil
}

// DeleteTodo removes the item with id.
func (c *Client) DeleteTodo(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := c.Call(ctx, OpDeleteTodo, &ok, id)
	return ok, err
}
