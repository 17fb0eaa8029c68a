package commands

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jmgilman/go/docdir/errors"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	sizeStyle   = cellStyle.Align(lipgloss.Right)
)

// timeLayout prints modification times to the millisecond, the precision
// stores keep.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func newLsCommand(g *globals) *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List the files of the namespace",
		Long: `List the files of the namespace, sorted by name.

Example:
  docdir ls --category articles --version 3
  docdir ls -l -c docdir.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withSession(cmd, func(s *session) error {
				ctx := cmd.Context()
				names, err := s.dir.List(ctx)
				if err != nil {
					return err
				}
				sort.Strings(names)

				out := cmd.OutOrStdout()
				if !long {
					for _, name := range names {
						fmt.Fprintln(out, name)
					}
					return nil
				}

				rows := make([][]string, 0, len(names))
				for _, name := range names {
					length, err := s.dir.FileLength(ctx, name)
					if err != nil {
						return err
					}
					modified, err := s.dir.FileModified(ctx, name)
					if err != nil {
						return err
					}
					rows = append(rows, []string{name, strconv.FormatInt(length, 10), modified.UTC().Format(timeLayout)})
				}
				fmt.Fprintln(out, renderTable(rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show length and modification time")
	return cmd
}

func renderTable(rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "SIZE", "MODIFIED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1:
				return sizeStyle
			default:
				return cellStyle
			}
		}).
		String()
}

func newStatCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <name>",
		Short: "Show a file's length and modification time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withSession(cmd, func(s *session) error {
				ctx := cmd.Context()
				name := args[0]

				length, err := s.dir.FileLength(ctx, name)
				if err != nil {
					return err
				}
				modified, err := s.dir.FileModified(ctx, name)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Name:      %s\n", name)
				fmt.Fprintf(out, "Namespace: %s\n", s.dir.Namespace())
				fmt.Fprintf(out, "Size:      %d\n", length)
				fmt.Fprintf(out, "Modified:  %s\n", modified.UTC().Format(timeLayout))
				return nil
			})
		},
	}
}

func newCatCommand(g *globals) *cobra.Command {
	var offset, length int64

	cmd := &cobra.Command{
		Use:   "cat <name>",
		Short: "Write a file's content to stdout",
		Long: `Write a file's content to stdout.

Example:
  # Print 16 bytes starting at byte 4
  docdir cat _0.cfs --offset 4 --length 16`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if offset < 0 {
				return errors.New(errors.CodeInvalidInput, "--offset must not be negative")
			}

			return g.withSession(cmd, func(s *session) error {
				in, err := s.dir.OpenInput(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				defer func() {
					_ = in.Close()
				}()

				if _, err := in.Seek(offset, io.SeekStart); err != nil {
					return err
				}
				var src io.Reader = in
				if length >= 0 {
					src = io.LimitReader(in, length)
				}
				if _, err := io.Copy(cmd.OutOrStdout(), src); err != nil {
					return errors.Wrap(err, errors.CodeUnknown, "failed to copy content")
				}
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&offset, "offset", 0, "byte offset to start at")
	cmd.Flags().Int64Var(&length, "length", -1, "maximum number of bytes to write (-1 for all)")
	return cmd
}

func newRmCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>...",
		Short: "Delete files",
		Long:  `Delete files. Deleting a file that does not exist is not an error.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withSession(cmd, func(s *session) error {
				for _, name := range args {
					if err := s.dir.DeleteFile(cmd.Context(), name); err != nil {
						return err
					}
					s.logger.Info("deleted file", "file", name)
				}
				return nil
			})
		},
	}
}

func newMvCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <from> <to>",
		Short: "Rename a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withSession(cmd, func(s *session) error {
				if err := s.dir.RenameFile(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				s.logger.Info("renamed file", "from", args[0], "to", args[1])
				return nil
			})
		},
	}
}

func newTouchCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "touch <name>...",
		Short: "Set files' modification time to now",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withSession(cmd, func(s *session) error {
				for _, name := range args {
					if err := s.dir.TouchFile(cmd.Context(), name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
