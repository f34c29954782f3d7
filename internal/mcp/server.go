// Package mcp exposes interview tools to MCP clients over streamable HTTP.
package mcp

import (
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/identity"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/mcp/tools"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

const (
	serverName    = "recruito-interviews"
	serverVersion = "0.1.0"
)

// NewServer builds an MCP server whose tools act as who
func NewServer(who domain.Identity, res Resources, logger *logging.Logger) *sdkmcp.Server {
	if logger == nil {
		logger = logging.Nop()
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	tools.Register(server, who, logger.Named("mcp").With("uid", who.UID), res.options()...)
	return server
}

// Handler serves one server per session, bound to the identity that opened
// it. Requests without an identity are refused.
func Handler(res Resources, logger *logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return sdkmcp.NewStreamableHTTPHandler(func(req *http.Request) *sdkmcp.Server {
		who, ok := identity.FromContext(req.Context())
		if !ok {
			logger.Warn("mcp session without identity", "remote", req.RemoteAddr)
			return nil
		}
		logger.Debug("mcp session opened", "uid", who.UID, "role", who.Role)
		return NewServer(who, res, logger)
	}, nil)
}
