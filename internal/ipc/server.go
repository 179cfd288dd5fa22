package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
)

// Backend is the store contract served by the host.
type Backend interface {
	List(ctx context.Context) ([]model.Item, error)
	ReplaceAll(ctx context.Context, items []model.Item) error
	Add(ctx context.Context, text string) (model.Item, error)
	Update(ctx context.Context, id string, p model.Patch) (model.Item, bool, error)
	Delete(ctx context.Context, id string) error
}

// Server answers requests one at a time, in arrival order.
type Server struct {
	backend Backend
	log     *log.Logger
}

// NewServer returns a Server dispatching to b. A nil logger discards output.
func NewServer(b Backend, l *log.Logger) *Server {
	if l == nil {
		l = log.New(io.Discard)
	}
	return &Server{backend: b, log: l}
}

// Serve reads requests from conn until EOF or ctx is done.
// When conn is an io.Closer it is closed on cancellation to unblock the read.
func (s *Server) Serve(ctx context.Context, conn io.ReadWriter) error {
	if c, ok := conn.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { c.Close() })
		defer stop()
	}

	r := bufio.NewReader(conn)
	enc := json.NewEncoder(conn)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			var req Request
			if jerr := json.Unmarshal(line, &req); jerr != nil {
				s.log.Warn("dropping malformed request", "err", jerr)
			} else {
				resp := s.Handle(ctx, req)
				if werr := enc.Encode(resp); werr != nil {
					return fmt.Errorf("write response: %w", werr)
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read request: %w", err)
		}
	}
}

// Handle runs a single request against the backend.
//
// Write failures are logged and the computed result is still returned, so
// the caller may hold state the file does not.
func (s *Server) Handle(ctx context.Context, req Request) Response {
	result, err := s.dispatch(ctx, req)
	if err != nil && errors.Is(err, jsonstore.ErrWrite) {
		s.log.Error("saving todos", "op", req.Op, "err", err)
		err = nil
	}
	if err != nil {
		s.log.Warn("request failed", "op", req.Op, "id", req.ID, "err", err)
		return Response{ID: req.ID, Error: err.Error()}
	}

	b, err := json.Marshal(result)
	if err != nil {
		return Response{ID: req.ID, Error: fmt.Sprintf("encode result: %v", err)}
	}
	s.log.Debug("handled", "op", req.Op, "id", req.ID)
	return Response{ID: req.ID, Result: b}
}

func (s *Server) dispatch(ctx context.Context, req Request) (any, error) {
	switch req.Op {
	case OpGetTodos:
		return s.backend.List(ctx)

	case OpSaveTodos:
		var items []model.Item
		if err := arg(req, 0, &items); err != nil {
			return nil, err
		}
		return true, s.backend.ReplaceAll(ctx, items)

	case OpAddTodo:
		var a addArgs
		if err := arg(req, 0, &a); err != nil {
			return nil, err
		}
		return s.backend.Add(ctx, a.Text)

	case OpUpdateTodo:
		var id string
		if err := arg(req, 0, &id); err != nil {
			return nil, err
		}
		if len(req.Args) < 2 {
			return nil, fmt.Errorf("%s: missing patch", req.Op)
		}
		p, err := model.DecodePatch(req.Args[1])
		if err != nil {
			return nil, err
		}
		it, found, err := s.backend.Update(ctx, id, p)
		if !found && err == nil {
			return nil, nil
		}
		return it, err

	case OpDeleteTodo:
		var id string
		if err := arg(req, 0, &id); err != nil {
			return nil, err
		}
		return true, s.backend.Delete(ctx, id)
	}
	return nil, fmt.Errorf("%q: %w", req.Op, ErrUnknownOp)
}

func arg(req Request, i int, v any) error {
	if i >= len(req.Args) {
		return fmt.Errorf("%s: missing argument %d", req.Op, i)
	}
	if err := json.Unmarshal(req.Args[i], v); err != nil {
		return fmt.Errorf("%s: argument %d: %w", req.Op, i, err)
	}
	return nil
}
