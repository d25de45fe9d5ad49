package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	jsonRPCVersion = "2.0"
	closeWriteWait = time.Second
)

var (
	_ Transport       = (*StreamingTransport)(nil)
	_ EventSource     = (*StreamingTransport)(nil)
	_ PendingResetter = (*StreamingTransport)(nil)
)

type callResult struct {
	result json.RawMessage
	err    error
}

type jsonRPCMessage struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// StreamingTransport multiplexes calls over a single websocket connection.
// Responses are matched to callers by JSON-RPC id.
type StreamingTransport struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu        sync.Mutex
	nextID    uint64
	pending   map[uint64]chan callResult
	listeners map[Event][]Listener
	closed    bool
	done      chan struct{}
}

// DialStreaming opens the websocket connection and starts reading from it
func DialStreaming(ctx context.Context, url, origin string) (*StreamingTransport, error) {
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("error dialing %s: %w", url, err)
	}
	s := &StreamingTransport{
		conn:      conn,
		pending:   make(map[uint64]chan callResult),
		listeners: make(map[Event][]Listener),
		done:      make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// On registers listener for event
func (s *StreamingTransport) On(event Event, listener Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// RemoveAllListeners detaches the listeners of the given events, or of every event if none is given
func (s *StreamingTransport) RemoveAllListeners(events ...Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(events) == 0 {
		s.listeners = make(map[Event][]Listener)
		return
	}
	for _, e := range events {
		delete(s.listeners, e)
	}
}

// ResetPending implements PendingResetter
func (s *StreamingTransport) ResetPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPendingLocked(ErrTransportClosed)
}

// Call implements Transport
func (s *StreamingTransport) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	if params == nil {
		params = []interface{}{}
	}
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("error encoding params of %s: %w", method, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrTransportClosed
	}
	s.nextID++
	id := s.nextID
	resCh := make(chan callResult, 1)
	s.pending[id] = resCh
	s.mu.Unlock()

	idBytes, err := json.Marshal(id)
	if err != nil {
		s.dropPending(id)
		return nil, err
	}
	msg := jsonRPCMessage{
		Version: jsonRPCVersion,
		ID:      idBytes,
		Method:  method,
		Params:  rawParams,
	}
	s.writeMu.Lock()
	err = s.conn.WriteJSON(msg)
	s.writeMu.Unlock()
	if err != nil {
		s.dropPending(id)
		return nil, fmt.Errorf("error writing %s request: %w", method, err)
	}

	select {
	case <-ctx.Done():
		s.dropPending(id)
		return nil, ctx.Err()
	case res := <-resCh:
		return res.result, res.err
	}
}

// Close implements Transport. Pending calls fail with ErrTransportClosed.
func (s *StreamingTransport) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.failPendingLocked(ErrTransportClosed)
	s.mu.Unlock()

	s.writeMu.Lock()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeWriteWait))
	s.writeMu.Unlock()
	return s.conn.Close()
}

// Done is closed once the read loop has terminated
func (s *StreamingTransport) Done() <-chan struct{} {
	return s.done
}

func (s *StreamingTransport) readLoop() {
	defer close(s.done)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.terminate(err)
			return
		}
		var msg jsonRPCMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.emit(EventError, fmt.Errorf("error decoding message: %w", err))
			continue
		}
		var id uint64
		if len(msg.ID) == 0 || json.Unmarshal(msg.ID, &id) != nil {
			// notifications and foreign ids are not ours
			continue
		}
		s.mu.Lock()
		resCh, ok := s.pending[id]
		delete(s.pending, id)
		s.mu.Unlock()
		if !ok {
			continue
		}
		if msg.Error != nil {
			resCh <- callResult{err: msg.Error}
		} else {
			resCh <- callResult{result: msg.Result}
		}
	}
}

func (s *StreamingTransport) terminate(readErr error) {
	s.mu.Lock()
	wasClosed := s.closed
	s.closed = true
	s.failPendingLocked(ErrTransportClosed)
	s.mu.Unlock()

	var endErr error
	if !wasClosed && !websocket.IsCloseError(readErr, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
		!errors.Is(readErr, net.ErrClosed) {
		s.emit(EventError, readErr)
		endErr = readErr
	}
	s.emit(EventEnd, endErr)
}

func (s *StreamingTransport) emit(event Event, err error) {
	s.mu.Lock()
	listeners := make([]Listener, len(s.listeners[event]))
	copy(listeners, s.listeners[event])
	s.mu.Unlock()
	for _, l := range listeners {
		l(err)
	}
}

func (s *StreamingTransport) dropPending(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

func (s *StreamingTransport) failPendingLocked(err error) {
	for id, resCh := range s.pending {
		resCh <- callResult{err: err}
		delete(s.pending, id)
	}
}
