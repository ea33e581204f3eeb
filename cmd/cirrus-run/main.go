package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"git.home.luguber.info/inful/cirrusrun/cmd/cirrus-run/commands"
	"git.home.luguber.info/inful/cirrusrun/internal/config"
	cierrors "git.home.luguber.info/inful/cirrusrun/internal/errors"
	"git.home.luguber.info/inful/cirrusrun/internal/logfields"
)

func main() {
	loaded, envErr := config.LoadEnvFiles()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g := &commands.Global{
		Ctx:         ctx,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
	var cli commands.CLI
	parser, err := commands.NewParser(&cli, g, kong.Exit(exitUsage))
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "cirrus-run: %v\n", err)
		os.Exit(cierrors.ExitError)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	logger := cli.Logger()
	for _, path := range loaded {
		logger.Debug("Loaded environment file", slog.String("path", path))
	}
	if envErr != nil {
		logger.Warn("Failed to load environment file", logfields.Error(envErr))
	}

	runErr := kctx.Run()
	code := cierrors.NewCLIErrorAdapter(cli.Verbose > 1, logger).Report(runErr)
	_ = cli.Close()
	stop()
	os.Exit(code)
}

// exitUsage maps kong's own exit codes onto the runner's: usage errors are ordinary errors.
func exitUsage(code int) {
	if code != cierrors.ExitSuccess {
		code = cierrors.ExitError
	}
	os.Exit(code)
}
