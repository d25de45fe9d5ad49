package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/0xPolygon/cdk-txrelay/config/types"
)

// DeploymentType selects how the relay talks to the execution endpoint
type DeploymentType string

const (
	// Direct opens a request/response exchange per call (HTTP)
	Direct DeploymentType = "direct"
	// Streaming keeps a persistent connection open (websocket)
	Streaming DeploymentType = "streaming"
)

var (
	// ErrUnknownDeploymentType is returned when the configured type is not direct or streaming
	ErrUnknownDeploymentType = errors.New("unknown deployment type")
	// ErrTransportClosed is returned by calls issued on, or pending in, a closed transport
	ErrTransportClosed = errors.New("transport closed")
)

// Config is the configuration of the transport towards the execution endpoint
type Config struct {
	// Type is the deployment type: direct (request/response per call) or streaming (persistent connection)
	Type DeploymentType `jsonschema:"enum=direct, enum=streaming" mapstructure:"Type"`
	// URL of the execution endpoint. http(s):// for direct, ws(s):// for streaming
	URL string `mapstructure:"URL"`
	// Origin is the Origin header sent on the websocket handshake
	Origin string `mapstructure:"Origin"`
	// DialTimeout is the maximum time to wait for the streaming connection to be established
	DialTimeout types.Duration `mapstructure:"DialTimeout"`
	// RequestTimeout bounds every direct request, including the ones whose caller gave up
	RequestTimeout types.Duration `mapstructure:"RequestTimeout"`
}

// Transport is the request/response channel to the remote execution endpoint
type Transport interface {
	// Call sends method with the ordered params and returns the raw result.
	// Errors reported by the endpoint are returned as *RPCError.
	Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error)
	// Close releases the underlying connection
	Close() error
}

// Event is an event emitted by a persistent transport
type Event string

const (
	// EventError is emitted when the connection reports an error
	EventError Event = "error"
	// EventEnd is emitted when the connection is terminated
	EventEnd Event = "end"
)

// Listener receives the error attached to an event (nil on a clean termination)
type Listener func(err error)

// EventSource is implemented by transports that surface connection events
type EventSource interface {
	On(event Event, listener Listener)
	RemoveAllListeners(events ...Event)
}

// PendingResetter is implemented by transports that buffer in-flight responses
type PendingResetter interface {
	// ResetPending fails every in-flight call and drops its response slot
	ResetPending()
}

// RPCError is an error object reported by the execution endpoint, kept verbatim
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

// ErrorCode returns the JSON-RPC error code
func (e *RPCError) ErrorCode() int {
	return e.Code
}

// ErrorData returns the raw data attached to the error, if any
func (e *RPCError) ErrorData() interface{} {
	if len(e.Data) == 0 {
		return nil
	}
	return e.Data
}

// New builds the transport for the configured deployment type.
// An unknown type fails before anything is created.
func New(ctx context.Context, cfg Config) (Transport, error) {
	switch cfg.Type {
	case Direct:
		d, err := NewDirect(cfg.URL, cfg.RequestTimeout.Duration)
		if err != nil {
			return nil, err
		}
		return d, nil
	case Streaming:
		dialCtx := ctx
		if cfg.DialTimeout.Duration > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout.Duration)
			defer cancel()
		}
		s, err := DialStreaming(dialCtx, cfg.URL, cfg.Origin)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("transport config error: %w %q", ErrUnknownDeploymentType, string(cfg.Type))
	}
}
