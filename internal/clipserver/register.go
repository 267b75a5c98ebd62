// Package clipserver exposes the stock-video catalog as MCP tools.
package clipserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 2

// RegisterTools registers the catalog tools on the given MCP server:
// video_search, video_get.
func RegisterTools(server *mcp.Server) {
	registerVideoSearch(server)
	registerVideoGet(server)
}
