package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// WSStream consumes a websocket quote feed. After Subscribe, the read
// loop keeps the latest quote per symbol and fans out to callbacks;
// Latest serves from that cache.
type WSStream struct {
	url  string
	conn *websocket.Conn
	done chan struct{}

	mu        sync.Mutex
	latest    map[string]Quote
	callbacks []func(Quote)
}

type wsSubscribe struct {
	Op   string   `json:"op"`
	Args []string `json:"args"`
}

func DialWS(url string) (*WSStream, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial quote stream: %w", err)
	}

	s := &WSStream{
		url:    url,
		conn:   conn,
		done:   make(chan struct{}),
		latest: make(map[string]Quote),
	}
	go s.readLoop()
	return s, nil
}

// Subscribe asks the feed to start publishing quotes for symbol.
func (s *WSStream) Subscribe(symbols ...string) error {
	msg := wsSubscribe{Op: "subscribe", Args: symbols}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

// OnQuote registers a callback invoked for every received quote.
func (s *WSStream) OnQuote(fn func(Quote)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

func (s *WSStream) readLoop() {
	defer close(s.done)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var q Quote
		if err := json.Unmarshal(data, &q); err != nil || q.Symbol == "" {
			continue
		}

		s.mu.Lock()
		s.latest[q.Symbol] = q
		cbs := append(([]func(Quote))(nil), s.callbacks...)
		s.mu.Unlock()

		for _, fn := range cbs {
			fn(q)
		}
	}
}

func (s *WSStream) Latest(ctx context.Context, symbol string) (Quote, error) {
	s.mu.Lock()
	q, ok := s.latest[symbol]
	s.mu.Unlock()
	if !ok {
		return Quote{}, fmt.Errorf("no quote received yet for %q", symbol)
	}
	return q, nil
}

func (s *WSStream) Close() error {
	err := s.conn.Close()
	<-s.done
	return err
}
