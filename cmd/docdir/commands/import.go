package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/errors"
)

func newImportCommand(g *globals) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Seed local files into the store",
		Long: `Write local files into the namespace through the store directly.

The directory itself is read-only, so this is the way to lay down the files
of a new index generation. A file with the same name is replaced. Each
record keeps the local file's modification time.

Example:
  docdir import --category articles --version 3 index/segments.gen index/_0.cfs
  docdir import --name segments.gen /tmp/segments.tmp`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name != "" && len(args) > 1 {
				return errors.New(errors.CodeInvalidInput, "--name requires exactly one file")
			}

			return g.withSession(cmd, func(s *session) error {
				ns := s.dir.Namespace()
				for _, path := range args {
					info, err := os.Stat(path)
					if err != nil {
						return errors.Wrapf(err, errors.CodeInvalidInput, "failed to stat %s", path)
					}
					if info.IsDir() {
						return errors.Newf(errors.CodeInvalidInput, "%s is a directory", path)
					}
					content, err := os.ReadFile(path)
					if err != nil {
						return errors.Wrapf(err, errors.CodeInvalidInput, "failed to read %s", path)
					}

					target := name
					if target == "" {
						target = filepath.Base(path)
					}
					rec, err := s.backend.Put(cmd.Context(), core.FileRecord{
						Category:     ns.Category,
						Version:      ns.Version,
						Name:         target,
						LastModified: info.ModTime(),
					}, content)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", rec.Name, rec.Length)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "store the file under this name")
	return cmd
}
