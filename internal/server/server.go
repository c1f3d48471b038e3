// Package server runs the local JSON-RPC endpoint the UI talks to.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/angelware-net/spectre/pkg/logger"
)

// Server owns the HTTP listener in front of an RPCServer.
type Server struct {
	log      logger.Logger
	rpc      *RPCServer
	addr     string
	server   *http.Server
	listener net.Listener
	ready    chan struct{}
	mu       sync.Mutex
}

// NewServer binds to 127.0.0.1 unless cfg.ListenAll is set. Port 0 picks a
// free port, readable through Addr once Start is listening.
func NewServer(cfg *RPCConfig, svc *Services, l logger.Logger) *Server {
	host := "127.0.0.1"
	if cfg.ListenAll {
		host = "0.0.0.0"
	}
	l = logger.OrNop(l)
	return &Server{
		log:   l,
		rpc:   NewRPCServer(cfg, svc, l),
		addr:  net.JoinHostPort(host, fmt.Sprint(cfg.Port)),
		ready: make(chan struct{}),
	}
}

// Ready is closed once the listener is up.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Start listens and serves until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("error listening: %w", err)
	}
	s.mu.Lock()
	s.listener = l
	s.server = &http.Server{
		Handler:           s.rpc.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()
	close(s.ready)
	s.log.Info("rpc listening on %s", l.Addr())

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	err = srv.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting calls and waits briefly for running ones.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(ctx)
	s.rpc.Close()
	if err != nil {
		s.log.Error("error shutting down rpc server: %v", err)
	}
	return err
}
