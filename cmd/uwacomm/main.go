// Command uwacomm analyzes declarative message schemas and reports the
// per-field bit budget of each message.
package main

import (
	"fmt"
	"os"

	"github.com/op/go-logging"
	"github.com/urfave/cli/v2"
)

var log = logging.MustGetLogger("uwacomm")

func main() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatter := logging.MustStringFormatter(`%{level:.4s} %{module} %{message}`)
	logging.SetBackend(logging.NewBackendFormatter(backend, formatter))

	app := cli.NewApp()
	app.Name = "uwacomm"
	app.Usage = "underwater communications codec tools"
	app.Commands = []*cli.Command{
		{
			Name:      "analyze",
			Usage:     "show the per-field bit breakdown of every message in a schema file",
			ArgsUsage: "<schema.yaml>",
			Flags: []cli.Flag{
				&cli.Float64Flag{
					Name:  "rate",
					Usage: "modem data rate in bits per second for the airtime estimate",
					Value: 80,
				},
			},
			Action: analyzeAction,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func analyzeAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("analyze requires exactly one schema file argument")
	}
	return analyzeFile(os.Stdout, c.Args().First(), c.Float64("rate"))
}
