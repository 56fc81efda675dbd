package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const defaultURL = "http://localhost:7070"

var version = "dev"

var urlFlag = &cli.StringFlag{
	Name:    "url",
	Usage:   "base url of the raffle daemon",
	Value:   defaultURL,
	EnvVars: []string{"RAFFLE_URL"},
}

func main() {
	app := cli.NewApp()

	app.Version = version
	app.Name = "raffle CLI"
	app.Usage = "Command line interface for the raffle daemon"
	app.Flags = []cli.Flag{urlFlag}
	app.Commands = append(
		app.Commands,
		enterCmd,
		infoCmd,
		feeCmd,
		playerCmd,
		upkeepCmd,
		fulfillCmd,
		drawsCmd,
		balanceCmd,
	)

	if err := app.Run(os.Args); err != nil {
		fmt.Println(fmt.Errorf("error: %v", err))
		os.Exit(1)
	}
}
