package main

import (
	"os"

	txrelay "github.com/0xPolygon/cdk-txrelay"
	"github.com/urfave/cli/v2"
)

func versionCmd(*cli.Context) error {
	txrelay.PrintVersion(os.Stdout)
	return nil
}
