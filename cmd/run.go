package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	txrelay "github.com/0xPolygon/cdk-txrelay"
	"github.com/0xPolygon/cdk-txrelay/accounts"
	cdkcommon "github.com/0xPolygon/cdk-txrelay/common"
	"github.com/0xPolygon/cdk-txrelay/config"
	"github.com/0xPolygon/cdk-txrelay/journal"
	"github.com/0xPolygon/cdk-txrelay/log"
	"github.com/0xPolygon/cdk-txrelay/proxy"
	"github.com/0xPolygon/cdk-txrelay/relay"
	"github.com/0xPolygon/cdk-txrelay/rpc"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 10 * time.Second

func start(cliCtx *cli.Context) error {
	c, err := config.Load(cliCtx)
	if err != nil {
		return err
	}

	log.Init(c.Log)

	if c.Log.Environment == log.EnvironmentDevelopment {
		txrelay.PrintVersion(os.Stdout)
		log.Info("Starting application")
	} else if c.Log.Environment == log.EnvironmentProduction {
		logVersion()
	}

	registry, err := accounts.Load(c.Accounts)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("loaded %d signer accounts", registry.Len())

	store := createJournal(c.Journal)

	// relay.Journaler and rpc.JournalReader must stay nil interfaces when the journal is disabled
	var (
		relayJournal relay.Journaler
		rpcJournal   rpc.JournalReader
	)
	if store != nil {
		relayJournal = store
		rpcJournal = store
	}

	provider := relay.NewProvider(
		log.WithFields("module", cdkcommon.RELAY),
		c.Relay, c.Transport, c.Sequencer, registry, relayJournal,
	)
	if err := provider.Start(cliCtx.Context); err != nil {
		log.Fatal(err)
	}
	if err := provider.FundAccounts(cliCtx.Context); err != nil {
		log.Fatal(err)
	}

	components := cliCtx.StringSlice(config.FlagComponents)
	stopFuncs := []func(){}
	if isNeeded([]string{cdkcommon.PROXY}, components) && c.Proxy.Enabled {
		server := proxy.New(log.WithFields("module", cdkcommon.PROXY), c.Proxy, provider)
		go func() {
			if err := server.Start(); err != nil {
				log.Fatal(err)
			}
		}()
		stopFuncs = append(stopFuncs, func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Stop(ctx); err != nil {
				log.Warnf("error stopping proxy: %v", err)
			}
		})
	}
	if isNeeded([]string{cdkcommon.RPC}, components) {
		server := createRPC(c.RPC, provider, rpcJournal)
		go func() {
			if err := server.Start(); err != nil {
				log.Fatal(err)
			}
		}()
		stopFuncs = append(stopFuncs, func() {
			if err := server.Stop(); err != nil {
				log.Warnf("error stopping rpc: %v", err)
			}
		})
	}
	stopFuncs = append(stopFuncs, provider.Stop)
	if store != nil {
		stopFuncs = append(stopFuncs, func() {
			if err := store.Close(); err != nil {
				log.Warnf("error closing journal: %v", err)
			}
		})
	}

	waitSignal(stopFuncs)

	return nil
}

func createJournal(cfg journal.Config) *journal.Storage {
	if cfg.DBPath == "" {
		log.Info("journal disabled")
		return nil
	}
	store, err := journal.New(log.WithFields("module", cdkcommon.JOURNAL), cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	return store
}

func createRPC(cfg jRPC.Config, relayer rpc.Relayer, journalReader rpc.JournalReader) *jRPC.Server {
	logger := log.WithFields("module", cdkcommon.RPC)
	services := []jRPC.Service{
		{
			Name:    rpc.RELAY,
			Service: rpc.NewRelayEndpoints(logger, cfg.ReadTimeout.Duration, relayer, journalReader),
		},
	}

	return jRPC.NewServer(cfg, services, jRPC.WithLogger(logger.GetSugaredLogger()))
}

func logVersion() {
	log.Infow("Starting application",
		// version is already logged by default
		"gitRevision", txrelay.GitRev,
		"gitBranch", txrelay.GitBranch,
		"goVersion", runtime.Version(),
		"built", txrelay.BuildDate,
		"os/arch", runtime.GOOS+"/"+runtime.GOARCH,
	)
}

// waitSignal runs stopFuncs in order once the process is interrupted
func waitSignal(stopFuncs []func()) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	<-signals
	log.Info("terminating application gracefully...")
	for _, stop := range stopFuncs {
		stop()
	}
}

func isNeeded(casesWhereNeeded, actualCases []string) bool {
	for _, actualCase := range actualCases {
		for _, caseWhereNeeded := range casesWhereNeeded {
			if actualCase == caseWhereNeeded {
				return true
			}
		}
	}
	return false
}
