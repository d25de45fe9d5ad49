package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newJSONRPCServer(t *testing.T, handler func(method string, params json.RawMessage) string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(handler(req.Method, req.Params)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDirectCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		response    string
		expected    string
		expectedErr *RPCError
	}{
		{
			name:     "result",
			response: `{"jsonrpc":"2.0","id":1,"result":"0x5"}`,
			expected: `"0x5"`,
		},
		{
			name:        "rpc error",
			response:    `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"nonce too low"}}`,
			expectedErr: &RPCError{Code: -32000, Message: "nonce too low"},
		},
		{
			name:        "rpc error with data",
			response:    `{"jsonrpc":"2.0","id":1,"error":{"code":3,"message":"execution reverted","data":"0x08c379a0"}}`,
			expectedErr: &RPCError{Code: 3, Message: "execution reverted", Data: json.RawMessage(`"0x08c379a0"`)},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotMethod string
			srv := newJSONRPCServer(t, func(method string, _ json.RawMessage) string {
				gotMethod = method
				return tt.response
			})
			d, err := NewDirect(srv.URL, time.Second)
			require.NoError(t, err)
			res, err := d.Call(context.Background(), "eth_getTransactionCount", "0x01", "latest")
			require.Equal(t, "eth_getTransactionCount", gotMethod)
			if tt.expectedErr != nil {
				var rpcErr *RPCError
				require.True(t, errors.As(err, &rpcErr))
				require.Equal(t, tt.expectedErr.Code, rpcErr.Code)
				require.Equal(t, tt.expectedErr.Message, rpcErr.Message)
				if tt.expectedErr.Data != nil {
					require.JSONEq(t, string(tt.expectedErr.Data), string(rpcErr.Data))
				}
				return
			}
			require.NoError(t, err)
			require.JSONEq(t, tt.expected, string(res))
		})
	}
}

func TestDirectClosed(t *testing.T) {
	d, err := NewDirect("http://127.0.0.1:1", time.Second)
	require.NoError(t, err)
	require.NoError(t, d.Close())
	_, err = d.Call(context.Background(), "eth_chainId")
	require.ErrorIs(t, err, ErrTransportClosed)
}

func TestDirectContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := newJSONRPCServer(t, func(string, json.RawMessage) string {
		<-release
		return `{"jsonrpc":"2.0","id":1,"result":"0x1"}`
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	d, err := NewDirect(srv.URL, time.Minute)
	require.NoError(t, err)
	_, err = d.Call(ctx, "eth_chainId")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDirectRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := newJSONRPCServer(t, func(string, json.RawMessage) string {
		<-release
		return `{"jsonrpc":"2.0","id":1,"result":"0x1"}`
	})
	defer close(release)

	d, err := NewDirect(srv.URL, 50*time.Millisecond)
	require.NoError(t, err)
	start := time.Now()
	_, err = d.Call(context.Background(), "eth_chainId")
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}
