// Package mcp exposes the notes flow as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/flow"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

const serverName = "pocketnotes"

// Config wires the tool server to the API and the session it runs under.
type Config struct {
	API     flow.NotesAPI
	Session session.Store
	Logger  *zap.Logger
	Version string
}

type Server struct {
	server  *mcp.Server
	api     flow.NotesAPI
	session session.Store
	logger  *zap.Logger
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.API == nil {
		return nil, errors.New("mcp: notes api required")
	}
	if cfg.Session == nil {
		return nil, errors.New("mcp: session store required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		api:     cfg.API,
		session: cfg.Session,
		logger:  logger,
	}
	s.server = mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version,
		},
		&mcp.ServerOptions{
			HasTools: true,
		},
	)
	s.registerTools()
	return s, nil
}

// Serve runs the server over stdio until ctx is done or the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
