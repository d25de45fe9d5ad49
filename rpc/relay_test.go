package rpc

import (
	"errors"
	"testing"
	"time"

	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/0xPolygon/cdk-txrelay/db"
	"github.com/0xPolygon/cdk-txrelay/journal"
	"github.com/0xPolygon/cdk-txrelay/log"
	"github.com/0xPolygon/cdk-txrelay/rpc/mocks"
	"github.com/0xPolygon/cdk-txrelay/rpc/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type relayWithMocks struct {
	endpoints *RelayEndpoints
	relayer   *mocks.Relayer
	journal   *mocks.JournalReader
}

func newRelayWithMocks(t *testing.T) relayWithMocks {
	t.Helper()
	r := relayWithMocks{
		relayer: mocks.NewRelayer(t),
		journal: mocks.NewJournalReader(t),
	}
	r.endpoints = NewRelayEndpoints(log.WithFields("module", RELAY), time.Second, r.relayer, r.journal)
	return r
}

func TestAccounts(t *testing.T) {
	r := newRelayWithMocks(t)
	addrs := []common.Address{common.HexToAddress("0x01")}
	r.relayer.On("Accounts").Return(addrs).Once()

	res, err := r.endpoints.Accounts()
	require.Nil(t, err)
	require.Equal(t, addrs, res)
}

func TestPendingNonce(t *testing.T) {
	r := newRelayWithMocks(t)
	addr := common.HexToAddress("0x0a")

	r.relayer.On("PendingNonce", mock.Anything, addr).Return(uint64(8), true, nil).Once()
	res, err := r.endpoints.PendingNonce(addr)
	require.Nil(t, err)
	require.Equal(t, types.PendingNonce{Address: addr, Next: 8, Known: true}, res)

	r.relayer.On("PendingNonce", mock.Anything, addr).Return(uint64(0), false, errors.New("relay provider not started")).Once()
	_, err = r.endpoints.PendingNonce(addr)
	require.NotNil(t, err)
	require.Equal(t, rpc.DefaultErrorCode, err.ErrorCode())
	require.Contains(t, err.Error(), "not started")
}

func TestRelayedTx(t *testing.T) {
	hash := common.HexToHash("0x01")

	testCases := []struct {
		name         string
		rec          *journal.RelayedTx
		journalErr   error
		expectedCode int
	}{
		{
			name: "found",
			rec:  &journal.RelayedTx{ID: 1, ForwardedHash: hash, Status: journal.StatusForwarded},
		},
		{
			name:         "not found",
			journalErr:   db.ErrNotFound,
			expectedCode: rpc.NotFoundErrorCode,
		},
		{
			name:         "db error",
			journalErr:   errors.New("database is locked"),
			expectedCode: rpc.DefaultErrorCode,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			r := newRelayWithMocks(t)
			r.journal.On("GetByHash", mock.Anything, hash).Return(tc.rec, tc.journalErr).Once()

			res, err := r.endpoints.RelayedTx(hash)
			if tc.expectedCode != 0 {
				require.NotNil(t, err)
				require.Equal(t, tc.expectedCode, err.ErrorCode())
				return
			}
			require.Nil(t, err)
			require.Equal(t, tc.rec, res)
		})
	}
}

func TestRelayedTxsBySender(t *testing.T) {
	r := newRelayWithMocks(t)
	sender := common.HexToAddress("0x0b")
	recs := []journal.RelayedTx{{ID: 2, Sender: sender}, {ID: 1, Sender: sender}}

	r.journal.On("GetBySender", mock.Anything, sender, uint64(2)).Return(recs, nil).Once()
	res, err := r.endpoints.RelayedTxsBySender(sender, 2)
	require.Nil(t, err)
	require.Equal(t, recs, res)

	_, err = r.endpoints.RelayedTxsBySender(sender, maxRelayedTxsLimit+1)
	require.NotNil(t, err)
	require.Equal(t, invalidParamsErrorCode, err.ErrorCode())
}

func TestJournalDisabled(t *testing.T) {
	endpoints := NewRelayEndpoints(log.WithFields("module", RELAY), 0, mocks.NewRelayer(t), nil)

	_, err := endpoints.RelayedTx(common.HexToHash("0x01"))
	require.NotNil(t, err)
	require.Contains(t, err.Error(), ErrJournalDisabled.Error())

	_, err = endpoints.RelayedTxsBySender(common.HexToAddress("0x01"), 1)
	require.NotNil(t, err)
}
