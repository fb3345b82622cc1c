// Package resptest provides an in-memory RESP server for tests. Commands are
// read off one end of a net.Pipe, recorded, and answered by a Handler.
package resptest

import (
	"bufio"
	"net"
	"sync"
	"testing"

	"github.com/cosmez/redistx-go/internal/resp"
)

// Handler answers a single command. args[0] is the command name as sent.
type Handler func(args []string) resp.Value

// Server is a scripted RESP peer.
type Server struct {
	t      testing.TB
	client net.Conn
	server net.Conn

	mu       sync.Mutex
	received [][]string

	done chan struct{}
}

// NewServer starts a server answering with h. It is closed automatically at
// the end of the test.
func NewServer(t testing.TB, h Handler) *Server {
	clientConn, serverConn := net.Pipe()
	s := &Server{
		t:      t,
		client: clientConn,
		server: serverConn,
		done:   make(chan struct{}),
	}

	// Replies go through a channel so that a large pipelined write from the
	// client never blocks on us writing a reply it has not started reading.
	replies := make(chan resp.Value, 1024)

	go func() {
		defer close(replies)
		r := bufio.NewReader(serverConn)
		for {
			v, err := resp.Read(r)
			if err != nil {
				return
			}
			args := toArgs(v)
			s.mu.Lock()
			s.received = append(s.received, args)
			s.mu.Unlock()
			replies <- h(args)
		}
	}()

	go func() {
		defer close(s.done)
		for v := range replies {
			if err := resp.Write(serverConn, v); err != nil {
				return
			}
		}
	}()

	t.Cleanup(s.Close)
	return s
}

func toArgs(v resp.Value) []string {
	arr, ok := v.(resp.Array)
	if !ok {
		return []string{v.Text()}
	}
	args := make([]string, len(arr.Elems))
	for i, elem := range arr.Elems {
		args[i] = elem.Text()
	}
	return args
}

// Conn returns the client side of the pipe.
func (s *Server) Conn() net.Conn { return s.client }

// Commands returns a copy of every command received so far.
func (s *Server) Commands() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.received))
	for i, args := range s.received {
		out[i] = append([]string(nil), args...)
	}
	return out
}

// Names returns the name of every command received so far, in order.
func (s *Server) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.received))
	for i, args := range s.received {
		if len(args) > 0 {
			names[i] = args[0]
		}
	}
	return names
}

// Close shuts both ends of the pipe down and waits for the server goroutines.
func (s *Server) Close() {
	s.client.Close()
	s.server.Close()
	<-s.done
}

// Script answers commands with replies in order. Once the script runs out
// every further command gets an error reply.
func Script(replies ...resp.Value) Handler {
	var mu sync.Mutex
	i := 0
	return func(args []string) resp.Value {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(replies) {
			return resp.Error{Value: "ERR script exhausted"}
		}
		v := replies[i]
		i++
		return v
	}
}
