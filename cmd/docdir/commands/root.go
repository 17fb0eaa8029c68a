// Package commands implements the docdir CLI commands.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jmgilman/go/docdir/config"
	"github.com/jmgilman/go/docdir/directory"
	"github.com/jmgilman/go/docdir/errors"
)

// globals holds the persistent flag values.
type globals struct {
	configPath string
	category   string
	version    int64
	jsonErrors bool
}

// session is an opened backend and the directory over it.
type session struct {
	cfg     *config.Config
	backend *config.Backend
	dir     *directory.Directory
	logger  *slog.Logger
}

func (s *session) Close() error {
	_ = s.dir.Close()
	return s.backend.Close()
}

// Run executes the CLI with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	g := &globals{}
	root := newRootCommand(g)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		printError(stderr, err, g.jsonErrors)
		return 1
	}
	return 0
}

func printError(w io.Writer, err error, asJSON bool) {
	if !asJSON {
		fmt.Fprintln(w, "Error:", err)
		return
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(errors.ToJSON(err)); encErr != nil {
		fmt.Fprintln(w, "Error:", err)
	}
}

func newRootCommand(g *globals) *cobra.Command {
	root := &cobra.Command{
		Use:   "docdir",
		Short: "Inspect and maintain versioned index directories",
		Long: `docdir operates on the index files of one namespace, a category and
version pair, stored in a remote record store.

Files are read and maintained through the same directory a search engine
uses, so listings are cached for the life of a command and new files can only
be added out of band with 'docdir import'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "path to the YAML configuration file")
	flags.StringVar(&g.category, "category", "", "namespace category (overrides the config)")
	flags.Int64Var(&g.version, "version", -1, "namespace version (overrides the config)")
	flags.BoolVar(&g.jsonErrors, "json-errors", false, "print errors as JSON")

	root.AddCommand(
		newLsCommand(g),
		newStatCommand(g),
		newCatCommand(g),
		newRmCommand(g),
		newMvCommand(g),
		newTouchCommand(g),
		newImportCommand(g),
	)
	return root
}

// open loads the configuration, applies flag overrides and opens the
// backend and directory.
func (g *globals) open(cmd *cobra.Command) (*session, error) {
	cfg := config.Default()
	if g.configPath != "" {
		loaded, err := config.Load(g.configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	if g.category != "" {
		cfg.Namespace.Category = g.category
	}
	if g.version >= 0 {
		cfg.Namespace.Version = g.version
	}

	logger := cfg.Log.NewLogger(cmd.ErrOrStderr())
	ctx := cmd.Context()

	backend, err := config.OpenBackend(ctx, &cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := append(cfg.DirectoryOptions(), directory.WithLogger(logger))
	dir, err := directory.New(backend, cfg.Namespace.Namespace(), opts...)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	logger.Debug("opened directory", "namespace", dir.Namespace().String(), "backend", backend.Name())
	return &session{cfg: &cfg, backend: backend, dir: dir, logger: logger}, nil
}

// withSession opens a session for the duration of fn.
func (g *globals) withSession(cmd *cobra.Command, fn func(s *session) error) (err error) {
	s, err := g.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(s)
}
