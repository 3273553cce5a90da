package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/redhatinsights/inicfg/internal/conf"
	"github.com/redhatinsights/inicfg/internal/dispatch"
	"github.com/redhatinsights/inicfg/internal/document"
	"github.com/redhatinsights/inicfg/internal/l10n"
	"github.com/redhatinsights/inicfg/internal/logger"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(dispatch.ExitFatal)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:            "inicfg",
		Usage:           l10n.T("query and edit INI files"),
		UsageText:       l10n.T("inicfg <file>[,<file>...] [-d|--debug] [<command> [<args>...]]"),
		HideHelp:        true,
		HideHelpCommand: true,
		HideVersion:     true,
		// The command line grammar allows -d anywhere and values that look
		// like flags (--key:=value), so arguments are handed over untouched.
		SkipFlagParsing: true,
		Action:          run,
	}
}

func run(c *cli.Context) error {
	config := conf.Configuration

	slog.SetDefault(logger.New(
		logger.WithWriter(c.App.ErrWriter),
		logger.WithLevel(config.LogLevel),
		logger.WithSource(config.LogLevel <= slog.LevelDebug),
		logger.WithPretty(term.IsTerminal(int(os.Stderr.Fd()))),
	))
	if conf.Err != nil {
		slog.Warn("using default configuration", "error", conf.Err)
	}

	d := dispatch.New(document.Options{
		PrettyFormat: config.PrettyFormat,
		FileMode:     config.FileMode,
	})
	d.Stdout = c.App.Writer
	d.Stderr = c.App.ErrWriter

	code, err := d.Run(c.Args().Slice())
	if err != nil {
		return cli.Exit(describe(err), code)
	}
	if code != dispatch.ExitSuccess {
		return cli.Exit("", code)
	}
	return nil
}

// describe turns a fatal error into the message shown to the user.
func describe(err error) string {
	msg := l10n.T("error: %v", err)
	if errors.Is(err, dispatch.ErrUsage) {
		msg += "\n" + l10n.T("Run 'inicfg help' for a list of commands.")
	}
	return msg
}
