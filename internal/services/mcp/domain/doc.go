// Package domain defines the MCP tools that expose the battle engine: tool
// schemas, inputs and outputs, and the handlers that run them.
package domain
