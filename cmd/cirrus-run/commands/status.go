package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"git.home.luguber.info/inful/cirrusrun/internal/build"
)

// StatusCmd implements the 'status' command.
type StatusCmd struct {
	BuildID  string        `arg:"" name:"build-id" help:"Build to watch."`
	Interval time.Duration `default:"2s" help:"Delay between queries."`
}

func (s *StatusCmd) Run(g *Global, root *CLI) error {
	svc, err := root.newService()
	if err != nil {
		return err
	}
	out := g.stdout()
	_, _ = fmt.Fprintln(out, build.BuildURL(s.BuildID))

	return svc.WatchStatus(g.context(), s.BuildID, s.Interval, func(summary *build.Summary) error {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("encode build summary: %w", err)
		}
		_, err = fmt.Fprintf(out, "%s\n%s\n", time.Now().UTC().Format("2006-01-02 15:04:05+00:00 (UTC)"), data)
		return err
	})
}
