// taskstore: task backlog MCP server
//
// A persistent task backlog that AI agents manage on a user's behalf
// through MCP tools, backed by PostgreSQL or SQLite.
//
// Usage:
//
//	taskstore serve     # Start MCP server (stdio transport)
//	taskstore migrate   # Create the tasks table and indexes
//	taskstore version
//
// The database is taken from --database-url, POSTGRES_URL or DATABASE_URL,
// in that order.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
