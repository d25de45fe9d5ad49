package rpc

import (
	"context"

	"github.com/0xPolygon/cdk-txrelay/journal"
	"github.com/ethereum/go-ethereum/common"
)

type Relayer interface {
	Accounts() []common.Address
	PendingNonce(ctx context.Context, addr common.Address) (uint64, bool, error)
}

type JournalReader interface {
	GetByHash(ctx context.Context, hash common.Hash) (*journal.RelayedTx, error)
	GetBySender(ctx context.Context, sender common.Address, limit uint64) ([]journal.RelayedTx, error)
}
