package main

import (
	"os"

	txrelay "github.com/0xPolygon/cdk-txrelay"
	"github.com/0xPolygon/cdk-txrelay/common"
	"github.com/0xPolygon/cdk-txrelay/config"
	"github.com/0xPolygon/cdk-txrelay/log"
	"github.com/urfave/cli/v2"
)

const appName = "cdk-txrelay"

var (
	configFileFlag = cli.StringSliceFlag{
		Name:     config.FlagCfg,
		Aliases:  []string{"c"},
		Usage:    "Configuration file(s)",
		Required: true,
	}
	optionalConfigFileFlag = cli.StringSliceFlag{
		Name:     config.FlagCfg,
		Aliases:  []string{"c"},
		Usage:    "Configuration file(s) to render, defaults only when missing",
		Required: false,
	}
	componentsFlag = cli.StringSliceFlag{
		Name:     config.FlagComponents,
		Aliases:  []string{"co"},
		Usage:    "List of components to run",
		Required: false,
		Value:    cli.NewStringSlice(common.PROXY, common.RPC),
	}
	saveConfigFlag = cli.StringFlag{
		Name:     config.FlagSaveConfigPath,
		Aliases:  []string{"s"},
		Usage:    "Save final configuration into to the indicated path (name: " + config.SaveConfigFileName + ")",
		Required: false,
	}
	rpcURLFlag = cli.StringFlag{
		Name:     config.FlagRPCURL,
		Usage:    "URL of the relay admin RPC",
		Value:    "http://localhost:5576",
		Required: false,
	}
	addressFlag = cli.StringFlag{
		Name:     config.FlagAddress,
		Aliases:  []string{"a"},
		Usage:    "Account address",
		Required: true,
	}
)

func main() {
	app := cli.NewApp()
	app.Name = appName
	app.Version = txrelay.Version
	app.Commands = []*cli.Command{
		{
			Name:    "version",
			Aliases: []string{},
			Usage:   "Application version and build",
			Action:  versionCmd,
		},
		{
			Name:    "run",
			Aliases: []string{},
			Usage:   "Run the transaction relay",
			Action:  start,
			Flags:   []cli.Flag{&configFileFlag, &componentsFlag, &saveConfigFlag},
		},
		{
			Name:   "config",
			Usage:  "Print the default configuration, or the rendered one when config files are given",
			Action: configCmd,
			Flags:  []cli.Flag{&optionalConfigFileFlag},
		},
		{
			Name:   "config-schema",
			Usage:  "Print the JSON schema of the configuration",
			Action: configSchemaCmd,
		},
		{
			Name:   "nonce",
			Usage:  "Query the pending nonce the relay tracks for an account",
			Action: nonceCmd,
			Flags:  []cli.Flag{&rpcURLFlag, &addressFlag},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
		os.Exit(1)
	}
}
