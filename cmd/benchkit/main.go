// cmd/benchkit/main.go
package main

import (
	cmd "github.com/smolpc/benchkit/internal/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the benchkit CLI application by delegating to the cobra root
// command defined in the benchkit package.
func main() {
	cmd.SetVersionInfo(version, commit, date)
	cmd.Execute()
}
