// ABOUTME: The watch subcommand follows a markdown file and rewrites an HTML file on every change.
// ABOUTME: Runs until interrupted; converts through the service or in-process with --local.
package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389-research/mdpreview/editor"
	"github.com/2389-research/mdpreview/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		local bool
		out   string
	)

	cmd := &cobra.Command{
		Use:     "watch <file>",
		Aliases: []string{"w"},
		Short:   "Re-render a markdown file to HTML whenever it changes",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			if out == "" {
				out = defaultOutput(src)
			}

			conv, err := a.converter(local, a.logger)
			if err != nil {
				return err
			}
			opts, err := a.editorOptions(a.logger)
			if err != nil {
				return err
			}

			listener, updates := editor.Notifier()
			opts = append(opts, editor.WithInitialText(""), editor.WithOnChange(listener))
			ctrl := editor.New(conv, opts...)

			f, err := watch.New(src, out, ctrl, updates, a.logger)
			if err != nil {
				ctrl.Close()
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return f.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "render in-process instead of calling the service")
	cmd.Flags().StringVarP(&out, "output", "o", "", "HTML output file (default: <file> with .html extension)")
	cmd.Flags().String("api-url", "", "conversion service base URL (default http://localhost:3001)")
	return cmd
}

// defaultOutput replaces the source extension with .html.
func defaultOutput(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ".html"
}
