// Package server implements the matchmaking server: an accept loop that
// pairs connecting clients into matches and supervises the resulting
// workers. Grounded in original_source/src/run_checkers_server.py's
// GameServer, restructured around golang.org/x/sync/errgroup and
// golang.org/x/sync/semaphore the way a production Go service bounds and
// supervises concurrent work.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/aelhage/checkersleague/pkg/match"
	"github.com/aelhage/checkersleague/pkg/wire"
	"github.com/seekerror/logw"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// pairSize is the number of clients paired into one match. Fixed in the
// current scope, per the server CLI contract.
const pairSize = 2

// BoardSize is the board dimension every match is played on.
const BoardSize = 8

// pending is a client that has sent a valid ConnectionRequest and is
// waiting to be paired.
type pending struct {
	conn *wire.Conn
	name string
}

// Server accepts connections on a TCP listener and pairs them into matches.
type Server struct {
	cfg Config
	ln  net.Listener
	sem *semaphore.Weighted
}

// New opens the listening socket for cfg.Port. The socket is not accepting
// connections until Run is called.
func New(cfg Config) (*Server, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %v: %w", cfg.Port, err)
	}
	return &Server{
		cfg: cfg,
		ln:  ln,
		sem: semaphore.NewWeighted(int64(cfg.MaxGames)),
	}, nil
}

// Addr returns the listener's bound address, useful in tests that bind to
// port 0.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Run drives the accept loop until ctx is cancelled, pairing clients and
// spawning a match worker per pair. It returns once the listener is closed
// and every in-flight match worker has exited.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		logw.Infof(ctx, "server: shutting down, closing listener")
		return s.ln.Close()
	})

	g.Go(func() error {
		return s.acceptLoop(ctx, g)
	})

	return g.Wait()
}

func (s *Server) acceptLoop(ctx context.Context, g *errgroup.Group) error {
	var queue []pending

	for {
		if tl, ok := s.ln.(*net.TCPListener); ok {
			_ = tl.SetDeadline(time.Now().Add(s.cfg.Timeout))
		}

		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil // shutdown in progress, listener closed deliberately
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				queue = s.probeLiveness(ctx, queue)
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}

		client, ok := s.handshake(ctx, conn)
		if !ok {
			continue
		}

		queue = append(queue, client)
		if len(queue) < pairSize {
			logw.Infof(ctx, "server: %v waiting for opponent", client.name)
			_ = client.conn.Send(wire.NewWaitingForOpponent(true))
			continue
		}

		pair := queue[:pairSize]
		queue = queue[pairSize:]
		s.spawn(ctx, g, pair)
	}
}

// handshake reads the ConnectionRequest a new connection must open with.
// Invalid messages are rejected and the connection closed, per spec §4.4.
func (s *Server) handshake(ctx context.Context, conn net.Conn) (pending, bool) {
	wc := wire.NewConn(conn)
	_ = wc.SetDeadline(time.Now().Add(s.cfg.Timeout))

	msg, err := wc.Recv()
	if err != nil {
		logw.Errorf(ctx, "server: handshake recv from %v: %v", conn.RemoteAddr(), err)
		if errors.Is(err, wire.ErrProtocol) {
			_ = wc.Send(wire.NewErrorMessage(wire.ErrorInvalidMsg))
		}
		_ = wc.Close()
		return pending{}, false
	}

	req, ok := msg.(*wire.ConnectionRequest)
	if !ok || req.Name == "" {
		logw.Errorf(ctx, "server: invalid connection request from %v", conn.RemoteAddr())
		_ = wc.Send(wire.NewErrorMessage(wire.ErrorInvalidMsg))
		_ = wc.Close()
		return pending{}, false
	}

	logw.Infof(ctx, "server: new client %v at %v", req.Name, conn.RemoteAddr())
	return pending{conn: wc, name: req.Name}, true
}

// probeLiveness timed-recvs from each waiting client; a client that has
// dropped (recv returns EOF/reset) is removed from the queue.
func (s *Server) probeLiveness(ctx context.Context, queue []pending) []pending {
	alive := queue[:0]
	for _, p := range queue {
		_ = p.conn.SetDeadline(time.Now().Add(10 * time.Millisecond))
		if _, err := p.conn.Recv(); err != nil {
			if isTimeout(err) {
				alive = append(alive, p)
				continue
			}
			logw.Errorf(ctx, "server: %v dropped while waiting: %v", p.name, err)
			_ = p.conn.Close()
			continue
		}
		// Unexpected message while waiting: ignore and keep waiting.
		alive = append(alive, p)
	}
	return alive
}

// spawn acquires a match slot and runs the paired match on its own
// goroutine, supervised by g.
func (s *Server) spawn(ctx context.Context, g *errgroup.Group, pair []pending) {
	for _, p := range pair {
		// Drop the handshake/liveness-probe deadline before the match takes
		// over the connection.
		_ = p.conn.SetDeadline(time.Time{})
		_ = p.conn.Send(wire.NewWaitingForOpponent(false))
	}

	light, dark := pair[0], pair[1]
	logw.Infof(ctx, "server: starting match %v vs %v", light.name, dark.name)

	if err := s.sem.Acquire(ctx, 1); err != nil {
		logw.Errorf(ctx, "server: acquire match slot: %v", err)
		_ = light.conn.Close()
		_ = dark.conn.Close()
		return
	}

	g.Go(func() error {
		defer s.sem.Release(1)

		m, err := match.New(light.conn, dark.conn, light.name, dark.name, BoardSize, s.cfg.Timeout, time.Now().UnixNano())
		if err != nil {
			return fmt.Errorf("new match %v vs %v: %w", light.name, dark.name, err)
		}

		result, err := m.Run(ctx)
		if err != nil {
			logw.Errorf(ctx, "server: match %v vs %v ended with error: %v", light.name, dark.name, err)
			return nil
		}
		logw.Infof(ctx, "server: match %v vs %v finished: %v", light.name, dark.name, result)
		return nil
	})
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
