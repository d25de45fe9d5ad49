package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/0xPolygon/cdk-txrelay/config"
	"github.com/0xPolygon/cdk-txrelay/rpc/client"
	"github.com/ethereum/go-ethereum/common"
	"github.com/invopop/jsonschema"
	"github.com/urfave/cli/v2"
)

func configCmd(cliCtx *cli.Context) error {
	if len(cliCtx.StringSlice(config.FlagCfg)) == 0 {
		_, err := os.Stdout.WriteString(config.DefaultVars + config.DefaultValues)
		return err
	}
	cfg, err := config.Load(cliCtx)
	if err != nil {
		return err
	}
	rendered, err := config.SaveConfigToString(*cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.WriteString(rendered)
	return err
}

func configSchemaCmd(*cli.Context) error {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		FieldNameTag:   "mapstructure",
	}
	schema := r.Reflect(&config.Config{})
	schema.Title = appName + " config file"
	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(b))
	return err
}

func nonceCmd(cliCtx *cli.Context) error {
	addr := cliCtx.String(config.FlagAddress)
	if !common.IsHexAddress(addr) {
		return fmt.Errorf("invalid address %q", addr)
	}
	res, err := client.NewClient(cliCtx.String(config.FlagRPCURL)).PendingNonce(common.HexToAddress(addr))
	if err != nil {
		return err
	}
	if !res.Known {
		fmt.Printf("%s: no nonce assigned yet\n", res.Address.Hex())
		return nil
	}
	fmt.Printf("%s: next nonce %d\n", res.Address.Hex(), uint64(res.Next))
	return nil
}
