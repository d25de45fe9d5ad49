package funding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/0xPolygon/cdk-txrelay/accounts"
	"github.com/0xPolygon/cdk-txrelay/log"
	"github.com/0xPolygon/cdk-txrelay/transport"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/sync/errgroup"
)

const defaultPollInterval = time.Second

var (
	// ErrNoFunder is returned when the endpoint exposes no account to fund from
	ErrNoFunder = errors.New("endpoint has no unlocked account to fund from")
	// ErrFundingReverted is returned when a funding transaction is mined with a failed status
	ErrFundingReverted = errors.New("funding transaction reverted")
)

type sendTxArgs struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Value *hexutil.Big   `json:"value"`
}

type receipt struct {
	Status      hexutil.Uint64 `json:"status"`
	BlockNumber *hexutil.Big   `json:"blockNumber"`
}

// Funder tops up the signer accounts from the first unlocked account of a development endpoint
type Funder struct {
	logger       *log.Logger
	transport    transport.Transport
	registry     *accounts.Registry
	pollInterval time.Duration
}

// New creates a funder. A zero pollInterval uses one second.
func New(logger *log.Logger, tr transport.Transport, registry *accounts.Registry, pollInterval time.Duration) *Funder {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Funder{
		logger:       logger,
		transport:    tr,
		registry:     registry,
		pollInterval: pollInterval,
	}
}

// Fund brings every account with a configured balance up to it, one account
// at a time, waiting for each funding transaction to be mined
func (f *Funder) Fund(ctx context.Context) error {
	var targets []*accounts.Account
	for _, acc := range f.registry.Accounts() {
		if acc.Balance != nil {
			targets = append(targets, acc)
		}
	}
	if len(targets) == 0 {
		return nil
	}

	from, err := f.funder(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(1)
	for _, acc := range targets {
		acc := acc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return f.fundAccount(gctx, from, acc)
		})
	}
	return g.Wait()
}

func (f *Funder) funder(ctx context.Context) (common.Address, error) {
	res, err := f.transport.Call(ctx, "eth_accounts")
	if err != nil {
		return common.Address{}, fmt.Errorf("error reading endpoint accounts: %w", err)
	}
	var addrs []common.Address
	if err := json.Unmarshal(res, &addrs); err != nil {
		return common.Address{}, fmt.Errorf("error decoding endpoint accounts: %w", err)
	}
	if len(addrs) == 0 {
		return common.Address{}, ErrNoFunder
	}
	return addrs[0], nil
}

func (f *Funder) fundAccount(ctx context.Context, from common.Address, acc *accounts.Account) error {
	res, err := f.transport.Call(ctx, "eth_getBalance", acc.Address.Hex(), "latest")
	if err != nil {
		return fmt.Errorf("error reading balance of %s: %w", acc.Address.Hex(), err)
	}
	var balance hexutil.Big
	if err := json.Unmarshal(res, &balance); err != nil {
		return fmt.Errorf("error decoding balance of %s: %w", acc.Address.Hex(), err)
	}
	current := balance.ToInt()
	if current.Cmp(acc.Balance) >= 0 {
		f.logger.Debugf("account %s already has %s wei", acc.Address.Hex(), current)
		return nil
	}

	diff := new(big.Int).Sub(acc.Balance, current)
	res, err = f.transport.Call(ctx, "eth_sendTransaction", sendTxArgs{
		From:  from,
		To:    acc.Address,
		Value: (*hexutil.Big)(diff),
	})
	if err != nil {
		return fmt.Errorf("error funding %s: %w", acc.Address.Hex(), err)
	}
	var txHash common.Hash
	if err := json.Unmarshal(res, &txHash); err != nil {
		return fmt.Errorf("error decoding funding tx hash: %w", err)
	}
	f.logger.Infof("funding %s with %s wei from %s, tx %s", acc.Address.Hex(), diff, from.Hex(), txHash.Hex())
	return f.waitMined(ctx, txHash)
}

func (f *Funder) waitMined(ctx context.Context, txHash common.Hash) error {
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()
	for {
		res, err := f.transport.Call(ctx, "eth_getTransactionReceipt", txHash.Hex())
		if err != nil {
			return fmt.Errorf("error reading receipt of %s: %w", txHash.Hex(), err)
		}
		if len(res) > 0 && string(res) != "null" {
			var r receipt
			if err := json.Unmarshal(res, &r); err != nil {
				return fmt.Errorf("error decoding receipt of %s: %w", txHash.Hex(), err)
			}
			if uint64(r.Status) != types.ReceiptStatusSuccessful {
				return fmt.Errorf("%w: %s", ErrFundingReverted, txHash.Hex())
			}
			f.logger.Debugf("funding tx %s mined in block %v", txHash.Hex(), r.BlockNumber)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
