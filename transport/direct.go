package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

var _ Transport = (*DirectTransport)(nil)

// DirectTransport performs one HTTP JSON-RPC request per call
type DirectTransport struct {
	client *gethrpc.Client
	closed atomic.Bool
}

// NewDirect returns a transport ready to be used against the http(s) url.
// Every request is bounded by requestTimeout, 0 means no bound besides the call context.
func NewDirect(url string, requestTimeout time.Duration) (*DirectTransport, error) {
	client, err := gethrpc.DialHTTPWithClient(url, &http.Client{Timeout: requestTimeout})
	if err != nil {
		return nil, fmt.Errorf("error creating http client for %s: %w", url, err)
	}
	return &DirectTransport{
		client: client,
	}, nil
}

// Call implements Transport. The request is aborted when ctx is done.
func (d *DirectTransport) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	if d.closed.Load() {
		return nil, ErrTransportClosed
	}
	var result json.RawMessage
	if err := d.client.CallContext(ctx, &result, method, params...); err != nil {
		return nil, toRPCError(err)
	}
	return result, nil
}

// Close implements Transport
func (d *DirectTransport) Close() error {
	if d.closed.CompareAndSwap(false, true) {
		d.client.Close()
	}
	return nil
}

// toRPCError keeps the error object answered by the endpoint, other errors are returned as is
func toRPCError(err error) error {
	var endpointErr gethrpc.Error
	if !errors.As(err, &endpointErr) {
		return err
	}
	rpcErr := &RPCError{
		Code:    endpointErr.ErrorCode(),
		Message: endpointErr.Error(),
	}
	var dataErr gethrpc.DataError
	if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
		if data, merr := json.Marshal(dataErr.ErrorData()); merr == nil {
			rpcErr.Data = data
		}
	}
	return rpcErr
}
