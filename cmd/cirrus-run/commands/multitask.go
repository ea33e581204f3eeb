package commands

import (
	"fmt"

	"git.home.luguber.info/inful/cirrusrun/internal/build"
	"git.home.luguber.info/inful/cirrusrun/internal/config"
)

// MultitaskCmd implements the 'multitask' command.
type MultitaskCmd struct {
	GitHub string `name:"github" env:"CIRRUS_GITHUB_REPO" placeholder:"OWNER/REPO" help:"GitHub repo to inspect."`
	Last   int    `default:"100" help:"Number of recent builds to inspect."`
}

func (m *MultitaskCmd) Run(g *Global, root *CLI) error {
	repo, err := config.ParseRepo(m.GitHub)
	if err != nil {
		return err
	}
	svc, err := root.newService()
	if err != nil {
		return err
	}
	ctx := g.context()
	repoID, err := svc.ResolveRepository(ctx, repo.Owner, repo.Name)
	if err != nil {
		return err
	}
	ids, err := svc.MultiTaskBuilds(ctx, repoID, m.Last)
	if err != nil {
		return err
	}

	out := g.stdout()
	_, _ = fmt.Fprintf(out, "Recent builds in %s with more than 1 task:\n", repo)
	for _, id := range ids {
		_, _ = fmt.Fprintf(out, "  %s\n", build.BuildURL(id))
	}
	return nil
}
