package proxy

import (
	"encoding/json"
	"errors"

	"github.com/0xPolygon/cdk-txrelay/transport"
)

const (
	jsonRPCVersion = "2.0"

	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeInvalidParams  = -32602
	codeDefault        = -32000
)

var nullID = json.RawMessage("null")

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type errorObject struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *errorObject    `json:"error,omitempty"`
}

func newResult(id, result json.RawMessage) response {
	if len(result) == 0 {
		result = nullID
	}
	return response{JSONRPC: jsonRPCVersion, ID: orNull(id), Result: result}
}

func newError(id json.RawMessage, code int, msg string) response {
	return response{
		JSONRPC: jsonRPCVersion,
		ID:      orNull(id),
		Error:   &errorObject{Code: code, Message: msg},
	}
}

// fromError keeps the endpoint errors as they were received
func fromError(id json.RawMessage, err error) response {
	var rpcErr *transport.RPCError
	if errors.As(err, &rpcErr) {
		return response{
			JSONRPC: jsonRPCVersion,
			ID:      orNull(id),
			Error:   &errorObject{Code: rpcErr.Code, Message: rpcErr.Message, Data: rpcErr.Data},
		}
	}
	return newError(id, codeDefault, err.Error())
}

func orNull(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return nullID
	}
	return id
}

// decodeParams accepts positional params only
func decodeParams(raw json.RawMessage) ([]json.RawMessage, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var params []json.RawMessage
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, errors.New("params must be an array")
	}
	return params, nil
}
