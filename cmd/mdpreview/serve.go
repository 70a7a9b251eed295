// ABOUTME: The serve subcommand runs the markdown conversion service until interrupted.
// ABOUTME: Listen address and allowed CORS origin come from flags or configuration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389-research/mdpreview/editor"
	"github.com/2389-research/mdpreview/render"
	"github.com/2389-research/mdpreview/web"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Start the conversion service",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, err := a.buildServer()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default 127.0.0.1:3001)")
	cmd.Flags().String("origin", "", "the one browser origin allowed to call the API (default http://localhost:3000)")
	return cmd
}

// buildServer constructs the conversion service from the loaded configuration.
func (a *app) buildServer() (*web.Server, error) {
	mode, err := editor.ParseViewMode(a.cfg.Editor.ViewMode)
	if err != nil {
		return nil, err
	}
	page := web.DefaultPageData()
	page.Debounce = a.cfg.Editor.Debounce
	page.Timeout = a.cfg.Client.Timeout
	page.ViewMode = mode
	page.DarkMode = a.cfg.Editor.DarkMode

	return web.NewServer(web.ServerConfig{
		Addr:          a.cfg.Server.Addr,
		AllowedOrigin: a.cfg.Server.AllowedOrigin,
		MaxBodyBytes:  a.cfg.Server.MaxBodyBytes,
		Renderer:      render.New(a.renderOptions()),
		Logger:        a.logger,
		Page:          &page,
	})
}

// commandContext returns cmd's context, or Background when it has none.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
