// ABOUTME: Root cobra command with persistent config, log-level and log-format flags bound to viper.
// ABOUTME: Every subcommand receives the loaded Config and logger through the shared app struct.
package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/2389-research/mdpreview/client"
	"github.com/2389-research/mdpreview/config"
	"github.com/2389-research/mdpreview/editor"
	"github.com/2389-research/mdpreview/logging"
	"github.com/2389-research/mdpreview/render"
)

// app carries state shared by all subcommands for one invocation.
type app struct {
	configFile string

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	v      *viper.Viper
	cfg    *config.Config
	logger *logrus.Logger
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "mdpreview",
		Short: "Live markdown preview: conversion service, terminal editor and file follower",
		Long: `mdpreview converts markdown to HTML as you type.

  mdpreview serve                 Start the conversion service (POST /api/convert)
  mdpreview edit [file]           Terminal editor with a live preview pane
  mdpreview watch <file> -o out   Re-render a file to HTML whenever it changes
  mdpreview convert [file|-]      Convert once and print the HTML

Configuration comes from flags, MDPREVIEW_* environment variables (also read
from .env), and an optional .mdpreview.yaml file, in that order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default: .mdpreview.yaml in the current directory)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text, json")

	root.AddCommand(
		newServeCmd(a),
		newEditCmd(a),
		newWatchCmd(a),
		newConvertCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

// flagBindings maps config keys to flag names. Flags that a command does not
// define are skipped.
var flagBindings = map[string]string{
	"log.level":             "log-level",
	"log.format":            "log-format",
	"server.addr":           "addr",
	"server.allowed_origin": "origin",
	"client.api_url":        "api-url",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range flagBindings {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// load reads configuration for cmd and builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	v, err := config.NewViper(a.configFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, a.errOut)
	if err != nil {
		return err
	}

	a.v = v
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) renderOptions() render.Options {
	return render.Options{
		Sanitize:  a.cfg.Render.Sanitize,
		HardWraps: a.cfg.Render.HardWraps,
	}
}

// converter returns the in-process renderer when local is set, otherwise a
// client for the configured conversion service.
func (a *app) converter(local bool, logger logrus.FieldLogger) (editor.Converter, error) {
	if local {
		return editor.Local(render.New(a.renderOptions())), nil
	}
	c, err := client.New(a.cfg.Client.APIURL,
		client.WithTimeout(a.cfg.Client.Timeout),
		client.WithLogger(logger),
		client.WithUserAgent("mdpreview/"+version),
	)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return c, nil
}

// editorOptions returns the controller options shared by every front-end.
func (a *app) editorOptions(logger logrus.FieldLogger) ([]editor.Option, error) {
	mode, err := editor.ParseViewMode(a.cfg.Editor.ViewMode)
	if err != nil {
		return nil, err
	}
	return []editor.Option{
		editor.WithDebounce(a.cfg.Editor.Debounce),
		editor.WithTimeout(a.cfg.Client.Timeout),
		editor.WithViewMode(mode),
		editor.WithDarkMode(a.cfg.Editor.DarkMode),
		editor.WithLogger(logger),
	}, nil
}
