// Package ingestor runs a lumberjack v2 endpoint that sorts key lists sent
// by Beats, Logstash or any other lumberjack client.
package ingestor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/ChristianF88/radix256/pools"
	"github.com/ChristianF88/radix256/radixsort"
	lj "github.com/elastic/go-lumber/lj"
	srv2 "github.com/elastic/go-lumber/server/v2"
)

var (
	ErrInvalidEvent = errors.New("invalid event")
	ErrInvalidKey   = errors.New("invalid key")
)

// drainTimeout bounds how long Close waits for in-flight batches
const drainTimeout = 5 * time.Second

// Event is one sort request: {"id": "...", "keys": [...]}
type Event struct {
	ID   string
	Keys []uint32
}

type sortedLine struct {
	ID    string   `json:"id"`
	Keys  []uint32 `json:"keys"`
	Count int      `json:"count"`
}

type errorLine struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Stats counts what the service has processed so far
type Stats struct {
	Batches int64
	Events  int64
	Keys    int64
	Invalid int64
}

// --- TCP sort service using go-lumber v2 ---

type SortService struct {
	listener    net.Listener
	readTimeout time.Duration // for server
	server      *srv2.Server
	sink        io.Writer
	done        chan struct{}

	batches atomic.Int64
	events  atomic.Int64
	keys    atomic.Int64
	invalid atomic.Int64
}

// NewSortService listens on addr. Results are written to sink as JSON lines.
func NewSortService(addr string, readTimeout time.Duration, sink io.Writer) (*SortService, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return &SortService{
		listener:    ln,
		readTimeout: readTimeout,
		sink:        sink,
		done:        make(chan struct{}),
	}, nil
}

// Addr returns the address the service listens on.
func (s *SortService) Addr() net.Addr {
	return s.listener.Addr()
}

// Accept starts the lumberjack v2 Server and the goroutine that sorts
// incoming batches.
func (s *SortService) Accept() error {
	srv, err := srv2.NewWithListener(
		s.listener,
		srv2.Timeout(s.readTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create lumberjack server: %w", err)
	}
	s.server = srv

	go func() {
		defer close(s.done)
		for batch := range s.server.ReceiveChan() {
			s.processBatch(batch)
		}
	}()

	return nil
}

// Done is closed once the server stopped delivering batches.
func (s *SortService) Done() <-chan struct{} {
	return s.done
}

func (s *SortService) Stats() Stats {
	return Stats{
		Batches: s.batches.Load(),
		Events:  s.events.Load(),
		Keys:    s.keys.Load(),
		Invalid: s.invalid.Load(),
	}
}

// processBatch writes one line per event and ACKs the batch afterwards, so
// a client only sees the ACK once every result reached the sink.
func (s *SortService) processBatch(batch *lj.Batch) {
	for _, evt := range batch.Events {
		if err := s.handleEvent(evt); err != nil {
			log.Printf("ingestor: write failed: %v", err)
		}
	}
	s.batches.Add(1)
	batch.ACK()
}

func (s *SortService) handleEvent(evt interface{}) error {
	s.events.Add(1)

	buf := pools.Pools.GetBuffer()
	defer pools.Pools.ReturnBuffer(buf)
	enc := json.NewEncoder(buf)

	ev, err := parseEvent(evt)
	if err != nil {
		s.invalid.Add(1)
		if err := enc.Encode(errorLine{ID: ev.ID, Error: err.Error()}); err != nil {
			return err
		}
	} else {
		sorted := radixsort.Sort(ev.Keys)
		s.keys.Add(int64(len(sorted)))
		err := enc.Encode(sortedLine{ID: ev.ID, Keys: sorted, Count: len(sorted)})
		pools.Pools.ReturnKeySlice(sorted)
		if err != nil {
			return err
		}
	}

	_, err = s.sink.Write(buf.Bytes())
	return err
}

// parseEvent converts a decoded lumberjack event into an Event. The returned
// Event carries the ID even when the keys are rejected.
func parseEvent(evt interface{}) (Event, error) {
	m, ok := evt.(map[string]interface{})
	if !ok {
		return Event{}, fmt.Errorf("%w: expected an object, got %T", ErrInvalidEvent, evt)
	}

	var ev Event
	if raw, ok := m["id"]; ok {
		id, ok := raw.(string)
		if !ok {
			return ev, fmt.Errorf("%w: id must be a string", ErrInvalidEvent)
		}
		ev.ID = id
	}

	raw, ok := m["keys"]
	if !ok {
		return ev, fmt.Errorf("%w: missing keys field", ErrInvalidEvent)
	}
	list, ok := raw.([]interface{})
	if !ok {
		return ev, fmt.Errorf("%w: keys must be an array", ErrInvalidEvent)
	}

	keys := pools.Pools.GetKeySlice(len(list))
	for i, v := range list {
		k, err := toKey(v)
		if err != nil {
			pools.Pools.ReturnKeySlice(keys)
			return ev, fmt.Errorf("keys[%d]: %w", i, err)
		}
		keys[i] = k
	}
	ev.Keys = keys
	return ev, nil
}

// toKey accepts any JSON number that is an integer in [0, MaxUint32].
func toKey(v interface{}) (uint32, error) {
	switch n := v.(type) {
	case float64:
		if n < 0 || n > math.MaxUint32 || n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidKey, n)
		}
		return uint32(n), nil
	case json.Number:
		k, err := strconv.ParseUint(n.String(), 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidKey, n)
		}
		return uint32(k), nil
	case int:
		if n < 0 || uint64(n) > math.MaxUint32 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidKey, n)
		}
		return uint32(n), nil
	case int64:
		if n < 0 || n > math.MaxUint32 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidKey, n)
		}
		return uint32(n), nil
	case uint32:
		return n, nil
	case uint64:
		if n > math.MaxUint32 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidKey, n)
		}
		return uint32(n), nil
	default:
		return 0, fmt.Errorf("%w: %v (%T)", ErrInvalidKey, v, v)
	}
}

// Close shuts down the server and listener and waits for the batches that
// were already received.
func (s *SortService) Close() error {
	var err error
	if s.server != nil {
		err = s.server.Close()
	}
	if lerr := s.listener.Close(); lerr != nil && !errors.Is(lerr, net.ErrClosed) && err == nil {
		err = lerr
	}
	if s.server != nil {
		select {
		case <-s.done:
		case <-time.After(drainTimeout):
			err = errors.Join(err, fmt.Errorf("timed out draining batches"))
		}
	}
	return err
}
