package commands

import (
	"fmt"
	"io"
	"time"

	"git.home.luguber.info/inful/cirrusrun/internal/build"
	"git.home.luguber.info/inful/cirrusrun/internal/config"
	cierrors "git.home.luguber.info/inful/cirrusrun/internal/errors"
	"git.home.luguber.info/inful/cirrusrun/internal/logfields"
	"git.home.luguber.info/inful/cirrusrun/internal/progress"
)

// RunCmd implements the default 'run' command.
type RunCmd struct {
	Config       string        `arg:"" optional:"" env:"CIRRUS_CONFIG" default:"${ci_config}" help:"Path to YAML configuration file."`
	GitHub       string        `name:"github" env:"CIRRUS_GITHUB_REPO" placeholder:"OWNER/REPO" help:"GitHub repo that will own the build. It may have no relation to the job being executed."`
	Branch       string        `env:"CIRRUS_GITHUB_BRANCH" default:"master" help:"Branch of the owning repo."`
	PollInterval time.Duration `name:"poll-interval" default:"3s" help:"Delay between status checks."`
	Timeout      time.Duration `default:"1h" help:"Give up waiting after this long."`
	ShowLog      string        `name:"show-log" enum:"never,failure,always" default:"never" help:"Print the build log: never, failure or always."`
	NoProgress   bool          `name:"no-progress" help:"Do not print progress dots while waiting."`
	NoTemplate   bool          `name:"no-template" help:"Send the config file without template rendering."`
}

func (r *RunCmd) Run(g *Global, root *CLI) error {
	ctx := g.context()
	out := g.stdout()
	logger := root.Logger()

	settings := config.Run{
		Token:        root.Token,
		Repo:         r.GitHub,
		Branch:       r.Branch,
		ConfigPath:   r.Config,
		PollInterval: r.PollInterval,
		Timeout:      r.Timeout,
		ShowLog:      config.ShowLog(r.ShowLog),
	}
	repo, err := settings.Validate()
	if err != nil {
		return err
	}

	var loadOpts []config.LoadOption
	if r.NoTemplate {
		loadOpts = append(loadOpts, config.WithoutTemplate())
	}
	body, err := config.LoadCIConfig(settings.ConfigPath, loadOpts...)
	if err != nil {
		return err
	}

	svc, err := root.newService()
	if err != nil {
		return err
	}
	repoID, err := svc.ResolveRepository(ctx, repo.Owner, repo.Name)
	if err != nil {
		return err
	}
	buildID, err := svc.CreateBuild(ctx, repoID, settings.Branch, body)
	if err != nil {
		return err
	}
	url := build.BuildURL(buildID)
	_, _ = fmt.Fprintf(out, "Build created: %s\n", url)

	ticker := progress.New(out, progress.WithChar(progressChar(g, r.NoProgress)))
	if err := ticker.Start(); err != nil {
		logger.Warn("Progress display unavailable", logfields.Error(err))
	}
	pollErr := svc.PollUntilDone(ctx, buildID, build.PollOptions{
		Interval: settings.PollInterval,
		Timeout:  settings.Timeout,
	})
	if err := ticker.Stop(); err != nil {
		logger.Warn("Failed to stop progress display", logfields.Error(err))
	}

	switch {
	case pollErr == nil:
		_, _ = fmt.Fprintf(out, "Build successful: %s\n", url)
	case cierrors.IsCategory(pollErr, cierrors.CategoryBuild):
		_, _ = fmt.Fprintf(out, "Build failed: %s\n", url)
	default:
		_, _ = fmt.Fprintf(out, "Build error: %s\n", url)
	}

	if settings.ShowLog.Wants(pollErr != nil) {
		if err := printLog(g, svc, buildID, out); err != nil {
			logger.Error("Failed to fetch build log", logfields.BuildID(buildID), logfields.Error(err))
		}
	}
	return pollErr
}

func progressChar(g *Global, disabled bool) string {
	if disabled || !g.Interactive {
		return ""
	}
	return progress.DefaultChar
}

func printLog(g *Global, svc *build.Service, buildID string, out io.Writer) error {
	for chunk, err := range svc.FetchLog(g.context(), buildID) {
		if err != nil {
			return err
		}
		if _, err := io.WriteString(out, chunk+"\n"); err != nil {
			return err
		}
	}
	return nil
}
