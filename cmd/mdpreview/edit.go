// ABOUTME: The edit subcommand opens the Bubble Tea terminal editor with a live preview pane.
// ABOUTME: Converts through the conversion service, or in-process with --local.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/mdpreview/editor"
	"github.com/2389-research/mdpreview/tui"
)

func newEditCmd(a *app) *cobra.Command {
	var (
		local   bool
		logFile string
	)

	cmd := &cobra.Command{
		Use:     "edit [file]",
		Aliases: []string{"e"},
		Short:   "Edit markdown in the terminal with a live preview",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The TUI owns the terminal; logs go to a file or nowhere.
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				a.logger.SetOutput(f)
			} else {
				a.logger.SetOutput(io.Discard)
			}

			text := editor.DefaultDocument
			downloadDir := "."
			if len(args) == 1 {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("reading %s: %w", args[0], err)
				}
				text = string(data)
				downloadDir = filepath.Dir(args[0])
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
			opts = append(opts, editor.WithInitialText(text), editor.WithOnChange(listener))
			ctrl := editor.New(conv, opts...)
			defer ctrl.Close()

			p := tea.NewProgram(
				tui.NewAppModel(ctrl, updates, downloadDir),
				tea.WithAltScreen(),
				tea.WithContext(commandContext(cmd)),
				tea.WithInput(a.in),
				tea.WithOutput(a.out),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running editor: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "render in-process instead of calling the service")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file while the editor runs")
	cmd.Flags().String("api-url", "", "conversion service base URL (default http://localhost:3001)")
	return cmd
}
