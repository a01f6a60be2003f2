// Package sse streams per-user account events over Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/daivaya/internal/identity"
)

// Event types.
const (
	CreditsCharged   = "credits.charged"
	ReadingGenerated = "reading.generated"
)

// Event is delivered to every stream of one user.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type subscription struct {
	user string
	ch   chan []byte
}

type publication struct {
	user  string
	event Event
}

// Broker fans events out to the open streams of each user.
//
// A single loop goroutine owns the subscriber table; public methods talk to
// it over channels.
type Broker struct {
	subscribeCh   chan subscription
	unsubscribeCh chan subscription
	publishCh     chan publication
	countReqCh    chan countReq

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

type countReq struct {
	user string // empty counts every stream
	resp chan int
}

// NewBroker starts the broker loop. Call Close to stop it.
func NewBroker() *Broker {
	b := &Broker{
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan subscription),
		publishCh:     make(chan publication, 256),
		countReqCh:    make(chan countReq),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[string]map[chan []byte]struct{})

	for {
		select {
		case <-b.stopCh:
			for _, set := range clients {
				for ch := range set {
					close(ch)
				}
			}
			return

		case s := <-b.subscribeCh:
			set := clients[s.user]
			if set == nil {
				set = make(map[chan []byte]struct{})
				clients[s.user] = set
			}
			set[s.ch] = struct{}{}

		case s := <-b.unsubscribeCh:
			set := clients[s.user]
			if _, ok := set[s.ch]; ok {
				delete(set, s.ch)
				close(s.ch)
				if len(set) == 0 {
					delete(clients, s.user)
				}
			}

		case p := <-b.publishCh:
			raw, err := encode(p.event)
			if err != nil {
				continue
			}
			for ch := range clients[p.user] {
				select {
				case ch <- raw:
				default:
					// slow stream, drop
				}
			}

		case req := <-b.countReqCh:
			if req.user != "" {
				req.resp <- len(clients[req.user])
				continue
			}
			n := 0
			for _, set := range clients {
				n += len(set)
			}
			req.resp <- n
		}
	}
}

func encode(e Event) ([]byte, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", e.Type, payload), nil
}

// Close stops the loop and closes every stream.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe opens a stream for user.
func (b *Broker) Subscribe(user string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- subscription{user: user, ch: ch}:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe closes a stream opened by Subscribe.
func (b *Broker) Unsubscribe(user string, ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- subscription{user: user, ch: ch}:
	case <-b.stopped:
	}
}

// ClientCount returns the number of open streams of user, or of all users
// when user is empty.
func (b *Broker) ClientCount(user string) int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countReqCh <- countReq{user: user, resp: resp}:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends e to every stream of user. It never blocks on slow readers.
func (b *Broker) Publish(user string, e Event) {
	if b == nil || b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- publication{user: user, event: e}:
	case <-b.stopped:
	}
}

// ServeHTTP streams the events of the authenticated user (GET /events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Streams outlive the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(u.ID)
	defer b.Unsubscribe(u.ID, ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
