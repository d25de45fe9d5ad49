package relay

import (
	"context"

	"github.com/0xPolygon/cdk-txrelay/journal"
	"github.com/0xPolygon/cdk-txrelay/sequencer"
	"github.com/ethereum/go-ethereum/common"
)

// NonceSequencer serializes nonce assignment and the sends using the nonces
type NonceSequencer interface {
	Sequence(ctx context.Context, addr common.Address, send sequencer.SendFunc) (uint64, error)
	Pending(ctx context.Context, addr common.Address) (uint64, bool, error)
}

// Journaler records relayed transactions
type Journaler interface {
	Save(ctx context.Context, rec *journal.RelayedTx) error
}
