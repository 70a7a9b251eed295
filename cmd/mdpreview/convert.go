// ABOUTME: The convert subcommand renders one markdown document and prints the HTML.
// ABOUTME: Reads a file or stdin and runs a single immediate conversion through the editor controller.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389-research/mdpreview/editor"
)

// errEmptyInput mirrors the service's rejection of blank documents.
var errEmptyInput = errors.New("markdown input is required")

func newConvertCmd(a *app) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:     "convert [file|-]",
		Aliases: []string{"c"},
		Short:   "Convert markdown once and print the HTML",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.readInput(args)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return errEmptyInput
			}

			conv, err := a.converter(local, a.logger)
			if err != nil {
				return err
			}
			html, err := convertOnce(conv, text, a)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(a.out, html)
			return err
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "render in-process instead of calling the service")
	cmd.Flags().String("api-url", "", "conversion service base URL (default http://localhost:3001)")
	return cmd
}

// readInput reads the named file, or stdin when no file or "-" is given.
func (a *app) readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(a.in)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}

// convertOnce runs text through a controller, skipping the debounce, and
// waits for the result.
func convertOnce(conv editor.Converter, text string, a *app) (string, error) {
	opts, err := a.editorOptions(a.logger)
	if err != nil {
		return "", err
	}
	listener, updates := editor.Notifier()
	opts = append(opts, editor.WithInitialText(text), editor.WithOnChange(listener))

	ctrl := editor.New(conv, opts...)
	defer ctrl.Close()
	ctrl.Flush()

	for range updates {
		s := ctrl.State()
		if s.Loading || ctrl.Pending() {
			continue
		}
		if s.Error != "" {
			return "", errors.New(s.Error)
		}
		return s.Preview, nil
	}
	return "", editor.ErrClosed
}
