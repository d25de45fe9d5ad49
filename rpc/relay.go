package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/0xPolygon/cdk-txrelay/db"
	"github.com/0xPolygon/cdk-txrelay/log"
	"github.com/0xPolygon/cdk-txrelay/rpc/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	// RELAY is the namespace of the relay service
	RELAY     = "relay"
	meterName = "github.com/0xPolygon/cdk-txrelay/rpc"

	maxRelayedTxsLimit     = 1000
	invalidParamsErrorCode = -32602
)

var (
	// ErrJournalDisabled is returned by the journal endpoints when the relay runs without a journal
	ErrJournalDisabled = errors.New("the relayed transactions journal is disabled")
)

// RelayEndpoints contains implementations for the "relay" RPC endpoints
type RelayEndpoints struct {
	logger      *log.Logger
	meter       metric.Meter
	readTimeout time.Duration
	relayer     Relayer
	journal     JournalReader
}

// NewRelayEndpoints returns RelayEndpoints. journal may be nil when disabled
func NewRelayEndpoints(
	logger *log.Logger,
	readTimeout time.Duration,
	relayer Relayer,
	journal JournalReader,
) *RelayEndpoints {
	meter := otel.Meter(meterName)
	return &RelayEndpoints{
		logger:      logger,
		meter:       meter,
		readTimeout: readTimeout,
		relayer:     relayer,
		journal:     journal,
	}
}

// Accounts returns the addresses the relay signs for
func (r *RelayEndpoints) Accounts() (interface{}, rpc.Error) {
	r.count(context.Background(), "accounts")
	return r.relayer.Accounts(), nil
}

// PendingNonce returns the next nonce the relay would assign to address
func (r *RelayEndpoints) PendingNonce(address common.Address) (interface{}, rpc.Error) {
	ctx, cancel := r.context()
	defer cancel()
	r.count(ctx, "pending_nonce")

	next, known, err := r.relayer.PendingNonce(ctx, address)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode,
			fmt.Sprintf("failed to get pending nonce of %s, error: %s", address.Hex(), err))
	}
	return types.PendingNonce{
		Address: address,
		Next:    hexutil.Uint64(next),
		Known:   known,
	}, nil
}

// RelayedTx returns the journal record of a relayed tx, looked up by its original or forwarded hash
func (r *RelayEndpoints) RelayedTx(hash common.Hash) (interface{}, rpc.Error) {
	ctx, cancel := r.context()
	defer cancel()
	r.count(ctx, "relayed_tx")

	if r.journal == nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, ErrJournalDisabled.Error())
	}
	rec, err := r.journal.GetByHash(ctx, hash)
	if errors.Is(err, db.ErrNotFound) {
		return nil, rpc.NewRPCError(rpc.NotFoundErrorCode, fmt.Sprintf("relayed tx %s not found", hash.Hex()))
	}
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode,
			fmt.Sprintf("failed to get relayed tx %s, error: %s", hash.Hex(), err))
	}
	return rec, nil
}

// RelayedTxsBySender returns the latest journal records of sender, newest first
func (r *RelayEndpoints) RelayedTxsBySender(sender common.Address, limit uint64) (interface{}, rpc.Error) {
	ctx, cancel := r.context()
	defer cancel()
	r.count(ctx, "relayed_txs_by_sender")

	if r.journal == nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, ErrJournalDisabled.Error())
	}
	if limit > maxRelayedTxsLimit {
		return nil, rpc.NewRPCError(invalidParamsErrorCode,
			fmt.Sprintf("limit %d is above the maximum of %d", limit, maxRelayedTxsLimit))
	}
	recs, err := r.journal.GetBySender(ctx, sender, limit)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode,
			fmt.Sprintf("failed to get relayed txs of %s, error: %s", sender.Hex(), err))
	}
	return recs, nil
}

func (r *RelayEndpoints) context() (context.Context, context.CancelFunc) {
	if r.readTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), r.readTimeout)
}

func (r *RelayEndpoints) count(ctx context.Context, name string) {
	c, merr := r.meter.Int64Counter(name)
	if merr != nil {
		r.logger.Warnf("failed to create %s counter: %s", name, merr)
		return
	}
	c.Add(ctx, 1)
}
