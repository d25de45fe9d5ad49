package relay

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/0xPolygon/cdk-txrelay/accounts"
	"github.com/0xPolygon/cdk-txrelay/journal"
	"github.com/0xPolygon/cdk-txrelay/log"
	"github.com/0xPolygon/cdk-txrelay/transport"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrDecodeTx is returned when the raw transaction can not be decoded or its sender recovered
	ErrDecodeTx = errors.New("invalid raw transaction")
	// ErrUnknownSigner is returned when the sender is not one of the signer accounts
	ErrUnknownSigner = errors.New("sender is not a relay signer account")
	// ErrUnsupportedTxType is returned for transaction types that can not be rebuilt
	ErrUnsupportedTxType = errors.New("unsupported transaction type")
)

// Rewriter replaces the nonce of raw signed transactions with a sequenced one,
// signs them again and forwards them
type Rewriter struct {
	logger    *log.Logger
	transport transport.Transport
	registry  *accounts.Registry
	sequencer NonceSequencer
	journal   Journaler
	relayed   metric.Int64Counter
}

// NewRewriter creates a rewriter. jr may be nil.
func NewRewriter(
	logger *log.Logger,
	tr transport.Transport,
	registry *accounts.Registry,
	seq NonceSequencer,
	jr Journaler,
) *Rewriter {
	relayed, merr := otel.Meter(meterName).Int64Counter("relay_rewritten_txs")
	if merr != nil {
		logger.Warnf("failed to create relay_rewritten_txs counter: %s", merr)
	}
	return &Rewriter{
		logger:    logger,
		transport: tr,
		registry:  registry,
		sequencer: seq,
		journal:   jr,
		relayed:   relayed,
	}
}

// SendRawTransaction handles eth_sendRawTransaction. rawParam is the JSON
// encoded hex string of the signed transaction.
func (r *Rewriter) SendRawTransaction(ctx context.Context, rawParam json.RawMessage) (json.RawMessage, error) {
	tx, err := decodeTx(rawParam)
	if err != nil {
		return nil, err
	}
	if !rebuildable(tx.Type()) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedTxType, tx.Type())
	}
	signer := signerFor(tx)
	sender, err := types.Sender(signer, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: error recovering sender: %w", ErrDecodeTx, err)
	}
	key, ok := r.registry.KeyFor(sender)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSigner, sender.Hex())
	}

	var (
		signed *types.Transaction
		res    json.RawMessage
	)
	nonce, err := r.sequencer.Sequence(ctx, sender, func(ctx context.Context, nonce uint64) (bool, error) {
		var err error
		signed, err = resign(tx, signer, key, nonce)
		if err != nil {
			return true, err
		}
		encoded, err := signed.MarshalBinary()
		if err != nil {
			signed = nil
			return true, fmt.Errorf("error encoding rewritten tx: %w", err)
		}
		res, err = r.transport.Call(ctx, methodSendRawTransaction, hexutil.Encode(encoded))
		// the tx may be on the wire unless the endpoint answered with an error
		var rpcErr *transport.RPCError
		return errors.As(err, &rpcErr), err
	})
	if signed == nil {
		return nil, err
	}

	rec := &journal.RelayedTx{
		OriginalHash:  tx.Hash(),
		ForwardedHash: signed.Hash(),
		Sender:        sender,
		OriginalNonce: tx.Nonce(),
		AssignedNonce: nonce,
		Value:         tx.Value(),
		Status:        journal.StatusForwarded,
		CreatedAt:     time.Now().Unix(),
	}
	if err != nil {
		r.logger.Warnf("forwarding tx %s of %s with nonce %d failed: %v", signed.Hash().Hex(), sender.Hex(), nonce, err)
		rec.Status = journal.StatusFailed
		rec.Error = err.Error()
	} else {
		r.logger.Infof("relayed tx %s of %s, nonce %d -> %d", signed.Hash().Hex(), sender.Hex(), tx.Nonce(), nonce)
	}
	r.record(ctx, rec)
	return res, err
}

func (r *Rewriter) record(ctx context.Context, rec *journal.RelayedTx) {
	if r.relayed != nil {
		r.relayed.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(rec.Status))))
	}
	if r.journal == nil {
		return
	}
	if err := r.journal.Save(context.WithoutCancel(ctx), rec); err != nil {
		r.logger.Errorf("error journaling tx %s: %v", rec.ForwardedHash.Hex(), err)
	}
}

func decodeTx(rawParam json.RawMessage) (*types.Transaction, error) {
	var rawHex string
	if err := json.Unmarshal(rawParam, &rawHex); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeTx, err)
	}
	encoded, err := hexutil.Decode(rawHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeTx, err)
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(encoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeTx, err)
	}
	return tx, nil
}

func rebuildable(txType uint8) bool {
	switch txType {
	case types.LegacyTxType, types.AccessListTxType, types.DynamicFeeTxType:
		return true
	default:
		return false
	}
}

// signerFor returns the signer family tx was signed with
func signerFor(tx *types.Transaction) types.Signer {
	if tx.Type() == types.LegacyTxType && !tx.Protected() {
		return types.HomesteadSigner{}
	}
	return types.LatestSignerForChainID(tx.ChainId())
}

// resign rebuilds tx with nonce and signs it with key
func resign(tx *types.Transaction, signer types.Signer, key *ecdsa.PrivateKey, nonce uint64) (*types.Transaction, error) {
	var data types.TxData
	switch tx.Type() {
	case types.LegacyTxType:
		data = &types.LegacyTx{
			Nonce:    nonce,
			GasPrice: tx.GasPrice(),
			Gas:      tx.Gas(),
			To:       tx.To(),
			Value:    tx.Value(),
			Data:     tx.Data(),
		}
	case types.AccessListTxType:
		data = &types.AccessListTx{
			ChainID:    tx.ChainId(),
			Nonce:      nonce,
			GasPrice:   tx.GasPrice(),
			Gas:        tx.Gas(),
			To:         tx.To(),
			Value:      tx.Value(),
			Data:       tx.Data(),
			AccessList: tx.AccessList(),
		}
	case types.DynamicFeeTxType:
		data = &types.DynamicFeeTx{
			ChainID:    tx.ChainId(),
			Nonce:      nonce,
			GasTipCap:  tx.GasTipCap(),
			GasFeeCap:  tx.GasFeeCap(),
			Gas:        tx.Gas(),
			To:         tx.To(),
			Value:      tx.Value(),
			Data:       tx.Data(),
			AccessList: tx.AccessList(),
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedTxType, tx.Type())
	}
	signed, err := types.SignNewTx(key, signer, data)
	if err != nil {
		return nil, fmt.Errorf("error signing rewritten tx: %w", err)
	}
	return signed, nil
}
