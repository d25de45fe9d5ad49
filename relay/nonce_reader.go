package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/0xPolygon/cdk-txrelay/transport"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TransportNonceReader reads transaction counts through the relay transport
type TransportNonceReader struct {
	transport transport.Transport
}

// NewTransportNonceReader returns a reader using tr
func NewTransportNonceReader(tr transport.Transport) *TransportNonceReader {
	return &TransportNonceReader{transport: tr}
}

// TransactionCount implements sequencer.NonceReader
func (r *TransportNonceReader) TransactionCount(
	ctx context.Context, addr common.Address, blockTag string,
) (uint64, error) {
	res, err := r.transport.Call(ctx, methodGetTransactionCount, addr.Hex(), blockTag)
	if err != nil {
		return 0, err
	}
	return decodeQuantity(res)
}

func decodeQuantity(raw json.RawMessage) (uint64, error) {
	var q hexutil.Uint64
	if err := json.Unmarshal(raw, &q); err != nil {
		return 0, fmt.Errorf("error decoding quantity %s: %w", string(raw), err)
	}
	return uint64(q), nil
}
