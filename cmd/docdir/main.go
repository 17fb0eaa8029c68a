// Package main provides the docdir CLI, an operator tool for inspecting and
// maintaining the index files a search engine reads through a docdir
// directory.
//
// Usage:
//
//	docdir [flags] <command> [args]
//
// Commands:
//
//	ls      - List the files of a namespace
//	stat    - Show a file's length and modification time
//	cat     - Write a file's content to stdout
//	rm      - Delete files
//	mv      - Rename a file
//	touch   - Set files' modification time to now
//	import  - Seed local files into the store
//
// Configuration:
//
//	The backend is described by a YAML file passed with --config. Without it
//	an empty in-memory store is used.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/jmgilman/go/docdir/cmd/docdir/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := commands.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
