package api

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client wraps the gRPC connection to the daemon.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient dials the daemon's Unix domain socket. maxMsgBytes bounds both
// the upload and the response; zero keeps the gRPC default.
func NewClient(socketPath string, maxMsgBytes int) (*Client, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	callOpts := []grpc.CallOption{grpc.CallContentSubtype(CodecName)}
	if maxMsgBytes > 0 {
		callOpts = append(callOpts,
			grpc.MaxCallSendMsgSize(maxMsgBytes),
			grpc.MaxCallRecvMsgSize(maxMsgBytes),
		)
	}
	opts = append(opts, grpc.WithDefaultCallOptions(callOpts...))

	conn, err := grpc.NewClient("unix://"+socketPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Analyze uploads an export and returns its statistics.
func (c *Client) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResponse, error) {
	resp := new(AnalyzeResponse)
	if err := c.conn.Invoke(ctx, analyzeMethod, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetStatus returns the daemon status.
func (c *Client) GetStatus(ctx context.Context) (*StatusResponse, error) {
	resp := new(StatusResponse)
	if err := c.conn.Invoke(ctx, getStatusMethod, &StatusRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
