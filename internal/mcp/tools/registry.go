package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

// Option configures which tools are registered
type Option func(*registry)

type registry struct {
	server *sdkmcp.Server
	who    domain.Identity
	logger *logging.Logger
}

// Register installs the selected tools on server. Every tool call acts as who.
func Register(server *sdkmcp.Server, who domain.Identity, logger *logging.Logger, opts ...Option) {
	if logger == nil {
		logger = logging.Nop()
	}
	reg := &registry{server: server, who: who, logger: logger}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(reg)
	}
}
