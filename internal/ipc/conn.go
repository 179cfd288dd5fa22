package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os/exec"

	"github.com/charmbracelet/log"
)

// stdio joins a read side and a write side into one connection.
type stdio struct {
	io.Reader
	io.WriteCloser
	wait func() error
}

func (s stdio) Close() error {
	err := s.WriteCloser.Close()
	if s.wait != nil {
		err = errors.Join(err, s.wait())
	}
	return err
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// Stdio adapts a process's standard streams for Server.Serve. Closing it
// closes out when out is an io.Closer.
func Stdio(in io.Reader, out io.Writer) io.ReadWriteCloser {
	wc, ok := out.(io.WriteCloser)
	if !ok {
		wc = nopWriteCloser{out}
	}
	return stdio{Reader: in, WriteCloser: wc}
}

// Spawn starts cmd and returns a client talking to it over its stdin and
// stdout. Closing the client closes stdin and waits for the process.
func Spawn(cmd *exec.Cmd, l *log.Logger) (*Client, error) {
	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start host: %w", err)
	}
	return NewClient(stdio{Reader: out, WriteCloser: in, wait: cmd.Wait}, l), nil
}

// Pipe serves b in-process over a synchronous in-memory connection and
// returns the client end. Closing the client stops the server.
func Pipe(ctx context.Context, b Backend, l *log.Logger) *Client {
	hostEnd, clientEnd := net.Pipe()
	srv := NewServer(b, l)
	go func() {
		defer hostEnd.Close()
		if err := srv.Serve(ctx, hostEnd); err != nil {
			srv.log.Debug("in-process host stopped", "err", err)
		}
	}()
	return NewClient(clientEnd, l)
}
