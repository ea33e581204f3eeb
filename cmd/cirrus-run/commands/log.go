package commands

// LogCmd implements the 'log' command.
type LogCmd struct {
	BuildID string `arg:"" name:"build-id" help:"Build to print the log of."`
}

func (l *LogCmd) Run(g *Global, root *CLI) error {
	svc, err := root.newService()
	if err != nil {
		return err
	}
	return printLog(g, svc, l.BuildID, g.stdout())
}
