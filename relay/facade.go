package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/0xPolygon/cdk-txrelay/accounts"
	"github.com/0xPolygon/cdk-txrelay/log"
	"github.com/0xPolygon/cdk-txrelay/transport"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/0xPolygon/cdk-txrelay/relay"

	methodAccounts            = "eth_accounts"
	methodSendRawTransaction  = "eth_sendRawTransaction"
	methodGetTransactionCount = "eth_getTransactionCount"
	methodSendTransaction     = "eth_sendTransaction"

	pendingTag = "pending"
)

// Facade is the entry point of every JSON-RPC call. eth_accounts and
// eth_sendRawTransaction are intercepted, the rest is passed through untouched.
type Facade struct {
	logger            *log.Logger
	transport         transport.Transport
	registry          *accounts.Registry
	sequencer         NonceSequencer
	rewriter          *Rewriter
	servePendingNonce bool
	calls             metric.Int64Counter
}

// NewFacade creates a facade. jr may be nil.
func NewFacade(
	logger *log.Logger,
	cfg Config,
	tr transport.Transport,
	registry *accounts.Registry,
	seq NonceSequencer,
	jr Journaler,
) *Facade {
	meter := otel.Meter(meterName)
	calls, merr := meter.Int64Counter("relay_calls")
	if merr != nil {
		logger.Warnf("failed to create relay_calls counter: %s", merr)
	}
	return &Facade{
		logger:            logger,
		transport:         tr,
		registry:          registry,
		sequencer:         seq,
		rewriter:          NewRewriter(logger, tr, registry, seq, jr),
		servePendingNonce: cfg.ServePendingNonce,
		calls:             calls,
	}
}

// Call routes method to its handler. Endpoint errors are returned as received.
func (f *Facade) Call(ctx context.Context, method string, params ...json.RawMessage) (json.RawMessage, error) {
	if f.calls != nil {
		f.calls.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
	}

	switch method {
	case methodAccounts:
		return f.accounts(ctx, params)
	case methodSendRawTransaction:
		if len(params) == 0 {
			return nil, fmt.Errorf("%w: missing raw transaction", ErrDecodeTx)
		}
		return f.rewriter.SendRawTransaction(ctx, params[0])
	case methodGetTransactionCount:
		if f.servePendingNonce {
			if addr, ok := pendingCountParams(params); ok {
				return f.pendingTransactionCount(ctx, addr, params)
			}
		}
	}
	return f.transport.Call(ctx, method, toArgs(params)...)
}

// accounts appends the signer addresses, in registry order, to the endpoint accounts
func (f *Facade) accounts(ctx context.Context, params []json.RawMessage) (json.RawMessage, error) {
	res, err := f.transport.Call(ctx, methodAccounts, toArgs(params)...)
	if err != nil {
		return nil, err
	}
	var remote []common.Address
	if err := json.Unmarshal(res, &remote); err != nil {
		return nil, fmt.Errorf("error decoding %s result: %w", methodAccounts, err)
	}
	all := make([]common.Address, 0, len(remote)+f.registry.Len())
	all = append(all, remote...)
	return json.Marshal(append(all, f.registry.Addresses()...))
}

// pendingTransactionCount returns the highest of the endpoint count and the
// next nonce the sequencer would hand out
func (f *Facade) pendingTransactionCount(
	ctx context.Context, addr common.Address, params []json.RawMessage,
) (json.RawMessage, error) {
	res, err := f.transport.Call(ctx, methodGetTransactionCount, toArgs(params)...)
	if err != nil {
		return nil, err
	}
	chainCount, err := decodeQuantity(res)
	if err != nil {
		return nil, err
	}
	next, ok, err := f.sequencer.Pending(ctx, addr)
	if err != nil {
		return nil, err
	}
	if !ok || next <= chainCount {
		return res, nil
	}
	f.logger.Debugf("serving local pending nonce %d for %s (endpoint %d)", next, addr.Hex(), chainCount)
	return json.Marshal(hexutil.Uint64(next))
}

func pendingCountParams(params []json.RawMessage) (common.Address, bool) {
	if len(params) < 2 { //nolint:mnd
		return common.Address{}, false
	}
	var tag string
	if err := json.Unmarshal(params[1], &tag); err != nil || tag != pendingTag {
		return common.Address{}, false
	}
	var addr common.Address
	if err := json.Unmarshal(params[0], &addr); err != nil {
		return common.Address{}, false
	}
	return addr, true
}

func toArgs(params []json.RawMessage) []interface{} {
	args := make([]interface{}, len(params))
	for i, p := range params {
		args[i] = p
	}
	return args
}
