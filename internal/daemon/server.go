package daemon

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/matheus3301/wrapped/internal/api"
	"github.com/matheus3301/wrapped/internal/config"
	"github.com/matheus3301/wrapped/internal/lock"
	"github.com/matheus3301/wrapped/internal/paths"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// envelopeSlack covers JSON field names and base64 growth around an upload.
const envelopeSlack = 1 << 20

// Server manages the gRPC server lifecycle for the daemon.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	socketPath string
	logger     *zap.Logger
}

// NewServer creates a gRPC server bound to the daemon's Unix domain socket.
// The lock argument orders construction after lock acquisition, so a second
// daemon never removes the socket of a running one.
func NewServer(
	p Params,
	cfg *config.Config,
	logger *zap.Logger,
	analyzer *api.AnalyzerService,
	_ *lock.Lock,
) (*Server, error) {
	socketPath := p.SocketPath
	if socketPath == "" {
		socketPath = paths.SocketPath()
	}

	// Clean stale socket if it exists.
	if _, err := os.Stat(socketPath); err == nil {
		_ = os.Remove(socketPath)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listen unix socket: %w", err)
	}

	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}

	maxMsg := cfg.MaxUploadBytes()/3*4 + envelopeSlack
	srv := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMsg),
		grpc.MaxSendMsgSize(maxMsg),
	)
	api.RegisterAnalyzerServer(srv, analyzer)

	return &Server{
		grpcServer: srv,
		listener:   listener,
		socketPath: socketPath,
		logger:     logger,
	}, nil
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins serving gRPC requests. Blocks until stopped.
func (s *Server) Start() error {
	s.logger.Info("gRPC server starting", zap.String("socket", s.socketPath))
	return s.grpcServer.Serve(s.listener)
}

// Stop performs a graceful shutdown and removes the socket file.
func (s *Server) Stop(_ context.Context) {
	s.logger.Info("gRPC server stopping")
	s.grpcServer.GracefulStop()
	_ = os.Remove(s.socketPath)
}
