package relay

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/0xPolygon/cdk-txrelay/accounts"
	"github.com/0xPolygon/cdk-txrelay/journal"
	"github.com/0xPolygon/cdk-txrelay/log"
	"github.com/0xPolygon/cdk-txrelay/relay/mocks"
	"github.com/0xPolygon/cdk-txrelay/sequencer"
	"github.com/0xPolygon/cdk-txrelay/transport"
	transportmocks "github.com/0xPolygon/cdk-txrelay/transport/mocks"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testChainID = big.NewInt(1337)

type rewriterTest struct {
	key       *ecdsa.PrivateKey
	sender    common.Address
	registry  *accounts.Registry
	transport *transportmocks.Transport
	sequencer *mocks.NonceSequencer
	journal   *mocks.Journaler
	rewriter  *Rewriter
}

func newRewriterTest(t *testing.T) *rewriterTest {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	rt := &rewriterTest{
		key:       key,
		sender:    crypto.PubkeyToAddress(key.PublicKey),
		transport: transportmocks.NewTransport(t),
		sequencer: mocks.NewNonceSequencer(t),
		journal:   mocks.NewJournaler(t),
	}
	rt.registry = accounts.NewRegistry(&accounts.Account{Address: rt.sender, Key: key})
	rt.rewriter = NewRewriter(log.WithFields("module", "relay"), rt.transport, rt.registry, rt.sequencer, rt.journal)
	return rt
}

func encodeTx(t *testing.T, tx *types.Transaction) json.RawMessage {
	t.Helper()
	b, err := tx.MarshalBinary()
	require.NoError(t, err)
	raw, err := json.Marshal(hexutil.Encode(b))
	require.NoError(t, err)
	return raw
}

func decodeForwarded(t *testing.T, arg interface{}) *types.Transaction {
	t.Helper()
	rawHex, ok := arg.(string)
	require.True(t, ok)
	b, err := hexutil.Decode(rawHex)
	require.NoError(t, err)
	tx := new(types.Transaction)
	require.NoError(t, tx.UnmarshalBinary(b))
	return tx
}

// sequenceAt runs the send step with nonce, recording whether it asked for the nonce back
func sequenceAt(nonce uint64, released *bool) func(context.Context, common.Address, sequencer.SendFunc) (uint64, error) {
	return func(ctx context.Context, _ common.Address, send sequencer.SendFunc) (uint64, error) {
		release, err := send(ctx, nonce)
		if released != nil {
			*released = release
		}
		return nonce, err
	}
}

func TestRewriteTxTypes(t *testing.T) {
	to := common.HexToAddress("0xdead")
	accessList := types.AccessList{{Address: to, StorageKeys: []common.Hash{common.HexToHash("0x01")}}}

	tests := []struct {
		name   string
		data   types.TxData
		signer types.Signer
	}{
		{
			name:   "unprotected legacy",
			data:   &types.LegacyTx{Nonce: 0, GasPrice: big.NewInt(10), Gas: 21000, To: &to, Value: big.NewInt(7)},
			signer: types.HomesteadSigner{},
		},
		{
			name:   "eip155 legacy",
			data:   &types.LegacyTx{Nonce: 1, GasPrice: big.NewInt(10), Gas: 21000, To: &to, Value: big.NewInt(7), Data: []byte{0x01}},
			signer: types.NewEIP155Signer(testChainID),
		},
		{
			name: "access list",
			data: &types.AccessListTx{ChainID: testChainID, Nonce: 2, GasPrice: big.NewInt(10), Gas: 50000,
				To: &to, Value: big.NewInt(7), AccessList: accessList},
			signer: types.NewEIP2930Signer(testChainID),
		},
		{
			name: "dynamic fee contract creation",
			data: &types.DynamicFeeTx{ChainID: testChainID, Nonce: 3, GasTipCap: big.NewInt(1), GasFeeCap: big.NewInt(20),
				Gas: 100000, Data: []byte{0x60, 0x00}},
			signer: types.NewLondonSigner(testChainID),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rt := newRewriterTest(t)
			original, err := types.SignNewTx(rt.key, tt.signer, tt.data)
			require.NoError(t, err)

			rt.sequencer.On("Sequence", mock.Anything, rt.sender, mock.Anything).Return(sequenceAt(42, nil)).Once()
			var forwarded *types.Transaction
			rt.transport.On("Call", mock.Anything, "eth_sendRawTransaction", mock.Anything).
				Run(func(args mock.Arguments) {
					forwarded = decodeForwarded(t, args.Get(2))
				}).
				Return(json.RawMessage(`"0xabc"`), nil).Once()
			rt.journal.On("Save", mock.Anything, mock.MatchedBy(func(rec *journal.RelayedTx) bool {
				return rec.Status == journal.StatusForwarded && rec.AssignedNonce == 42 &&
					rec.OriginalHash == original.Hash() && rec.Sender == rt.sender
			})).Return(nil).Once()

			res, err := rt.rewriter.SendRawTransaction(context.Background(), encodeTx(t, original))
			require.NoError(t, err)
			require.JSONEq(t, `"0xabc"`, string(res))

			require.NotNil(t, forwarded)
			require.Equal(t, uint64(42), forwarded.Nonce())
			require.Equal(t, original.Type(), forwarded.Type())
			require.Equal(t, original.To(), forwarded.To())
			require.Equal(t, original.Value(), forwarded.Value())
			require.Equal(t, original.Data(), forwarded.Data())
			require.Equal(t, original.Gas(), forwarded.Gas())
			require.Equal(t, original.GasPrice(), forwarded.GasPrice())
			require.Equal(t, original.GasTipCap(), forwarded.GasTipCap())
			require.Equal(t, original.AccessList(), forwarded.AccessList())
			require.Equal(t, original.Protected(), forwarded.Protected())

			sender, err := types.Sender(signerFor(forwarded), forwarded)
			require.NoError(t, err)
			require.Equal(t, rt.sender, sender)
		})
	}
}

func TestRewriteUnknownSigner(t *testing.T) {
	rt := newRewriterTest(t)
	stranger, err := crypto.GenerateKey()
	require.NoError(t, err)
	tx, err := types.SignNewTx(stranger, types.NewLondonSigner(testChainID), &types.DynamicFeeTx{
		ChainID: testChainID, GasTipCap: big.NewInt(1), GasFeeCap: big.NewInt(2), Gas: 21000,
	})
	require.NoError(t, err)

	_, err = rt.rewriter.SendRawTransaction(context.Background(), encodeTx(t, tx))
	require.ErrorIs(t, err, ErrUnknownSigner)
	rt.sequencer.AssertNotCalled(t, "Sequence", mock.Anything, mock.Anything, mock.Anything)
}

func TestRewriteMalformed(t *testing.T) {
	rt := newRewriterTest(t)
	for _, raw := range []string{`"0xzz"`, `"0x0102"`, `12`, `""`} {
		_, err := rt.rewriter.SendRawTransaction(context.Background(), json.RawMessage(raw))
		require.ErrorIs(t, err, ErrDecodeTx, raw)
	}
}

func TestRewriteBlobTxRejected(t *testing.T) {
	rt := newRewriterTest(t)
	chainID := uint256.MustFromBig(testChainID)
	tx, err := types.SignNewTx(rt.key, types.NewCancunSigner(testChainID), &types.BlobTx{
		ChainID:    chainID,
		GasTipCap:  uint256.NewInt(1),
		GasFeeCap:  uint256.NewInt(2),
		Gas:        21000,
		To:         common.HexToAddress("0xdead"),
		Value:      uint256.NewInt(0),
		BlobFeeCap: uint256.NewInt(1),
		BlobHashes: []common.Hash{{0x01}},
	})
	require.NoError(t, err)

	_, err = rt.rewriter.SendRawTransaction(context.Background(), encodeTx(t, tx))
	require.ErrorIs(t, err, ErrUnsupportedTxType)
}

func TestRewriteForwardFailureReleasesNonce(t *testing.T) {
	rt := newRewriterTest(t)
	tx, err := types.SignNewTx(rt.key, types.NewLondonSigner(testChainID), &types.DynamicFeeTx{
		ChainID: testChainID, GasTipCap: big.NewInt(1), GasFeeCap: big.NewInt(2), Gas: 21000,
	})
	require.NoError(t, err)

	released := false
	endpointErr := &transport.RPCError{Code: -32000, Message: "insufficient funds for gas * price + value"}
	rt.sequencer.On("Sequence", mock.Anything, rt.sender, mock.Anything).Return(sequenceAt(9, &released)).Once()
	rt.transport.On("Call", mock.Anything, "eth_sendRawTransaction", mock.Anything).Return(nil, endpointErr).Once()
	rt.journal.On("Save", mock.Anything, mock.MatchedBy(func(rec *journal.RelayedTx) bool {
		return rec.Status == journal.StatusFailed && rec.Error == endpointErr.Error()
	})).Return(nil).Once()

	_, err = rt.rewriter.SendRawTransaction(context.Background(), encodeTx(t, tx))
	var rpcErr *transport.RPCError
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, endpointErr, rpcErr)
	require.True(t, released)
}

func TestRewriteUndeterminedForwardKeepsNonce(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "context cancelled", err: context.Canceled},
		{name: "deadline exceeded", err: context.DeadlineExceeded},
		{name: "connection error", err: errors.New("read tcp: connection reset by peer")},
		{name: "transport closed", err: transport.ErrTransportClosed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rt := newRewriterTest(t)
			tx, err := types.SignNewTx(rt.key, types.HomesteadSigner{}, &types.LegacyTx{GasPrice: big.NewInt(1), Gas: 21000})
			require.NoError(t, err)

			released := true
			rt.sequencer.On("Sequence", mock.Anything, rt.sender, mock.Anything).Return(sequenceAt(5, &released)).Once()
			rt.transport.On("Call", mock.Anything, "eth_sendRawTransaction", mock.Anything).Return(nil, tt.err).Once()
			rt.journal.On("Save", mock.Anything, mock.MatchedBy(func(rec *journal.RelayedTx) bool {
				return rec.Status == journal.StatusFailed && rec.AssignedNonce == 5
			})).Return(nil).Once()

			_, err = rt.rewriter.SendRawTransaction(context.Background(), encodeTx(t, tx))
			require.ErrorIs(t, err, tt.err)
			require.False(t, released)
		})
	}
}

func TestRewriteSequencerError(t *testing.T) {
	rt := newRewriterTest(t)
	tx, err := types.SignNewTx(rt.key, types.HomesteadSigner{}, &types.LegacyTx{GasPrice: big.NewInt(1), Gas: 21000})
	require.NoError(t, err)

	seqErr := errors.New("nonce query failed: boom")
	rt.sequencer.On("Sequence", mock.Anything, rt.sender, mock.Anything).Return(uint64(0), seqErr).Once()

	_, err = rt.rewriter.SendRawTransaction(context.Background(), encodeTx(t, tx))
	require.ErrorIs(t, err, seqErr)
	rt.transport.AssertNotCalled(t, "Call", mock.Anything, "eth_sendRawTransaction", mock.Anything)
}

func TestRewriteWithoutJournal(t *testing.T) {
	rt := newRewriterTest(t)
	rw := NewRewriter(log.WithFields("module", "relay"), rt.transport, rt.registry, rt.sequencer, nil)
	tx, err := types.SignNewTx(rt.key, types.HomesteadSigner{}, &types.LegacyTx{GasPrice: big.NewInt(1), Gas: 21000})
	require.NoError(t, err)

	rt.sequencer.On("Sequence", mock.Anything, rt.sender, mock.Anything).Return(sequenceAt(0, nil)).Once()
	rt.transport.On("Call", mock.Anything, "eth_sendRawTransaction", mock.Anything).
		Return(json.RawMessage(`"0x01"`), nil).Once()

	_, err = rw.SendRawTransaction(context.Background(), encodeTx(t, tx))
	require.NoError(t, err)
}
