package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// PendingNonce is the local sequencing state of an address
type PendingNonce struct {
	Address common.Address `json:"address"`
	// Next is the next nonce the relay would assign, only meaningful when Known
	Next  hexutil.Uint64 `json:"next"`
	Known bool           `json:"known"`
}
