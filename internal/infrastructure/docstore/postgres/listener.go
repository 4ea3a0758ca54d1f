package postgres

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/JuanCGomezS/polla-club/internal/infrastructure/docstore"
	"github.com/JuanCGomezS/polla-club/internal/platform/logging"
)

// ErrStoreClosed is returned by Subscribe once Close has shut the listen
// connection down.
var ErrStoreClosed = errors.New("docstore: store is closed")

const (
	notifyChannel = "docstore_changes"

	listenMinReconnect = time.Second
	listenMaxReconnect = 30 * time.Second

	// Safety net for notifications lost while the listen connection was down.
	resyncInterval = time.Minute
)

// notifier multiplexes one LISTEN connection across all subscriptions. The
// migration trigger publishes the changed collection as the notification
// payload, so each event wakes only the subscriptions watching that
// collection.
type notifier struct {
	store     *Store
	listenDSN string
	logger    *logging.Logger

	mu       sync.Mutex
	listener *pq.Listener
	subs     map[*pgSubscription]struct{}
	closed   bool
}

func newNotifier(store *Store, listenDSN string, logger *logging.Logger) *notifier {
	return &notifier{
		store:     store,
		listenDSN: listenDSN,
		logger:    logger,
		subs:      map[*pgSubscription]struct{}{},
	}
}

func (n *notifier) subscribe(ctx context.Context, collection string, filters []docstore.Filter) (docstore.Subscription, error) {
	if err := n.ensureListener(); err != nil {
		return nil, err
	}

	sub := &pgSubscription{
		notifier:   n,
		collection: collection,
		filters:    filters,
		updates:    make(chan []docstore.Document, 1),
	}

	n.mu.Lock()
	n.subs[sub] = struct{}{}
	n.mu.Unlock()

	snapshot, err := n.store.Query(ctx, collection, filters, "")
	if err != nil {
		sub.Close()
		return nil, err
	}
	sub.push(snapshot)
	return sub, nil
}

func (n *notifier) ensureListener() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return ErrStoreClosed
	}
	if n.listener != nil {
		return nil
	}

	listener := pq.NewListener(n.listenDSN, listenMinReconnect, listenMaxReconnect, func(event pq.ListenerEventType, err error) {
		if err != nil {
			n.logger.Warn("docstore listen connection event", "event", int(event), "error", err)
		}
	})
	if err := listener.Listen(notifyChannel); err != nil {
		_ = listener.Close()
		return err
	}

	n.listener = listener
	go n.run(listener)
	return nil
}

func (n *notifier) run(listener *pq.Listener) {
	ticker := time.NewTicker(resyncInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-listener.Notify:
			if !ok {
				return
			}
			if event == nil {
				// Reconnect marker. Notifications may have been missed, so
				// refresh every subscription.
				n.refresh("")
				continue
			}
			n.refresh(event.Extra)
		case <-ticker.C:
			n.refresh("")
		}
	}
}

// refresh re-queries the subscriptions watching collection. An empty
// collection refreshes everything.
func (n *notifier) refresh(collection string) {
	n.mu.Lock()
	targets := make([]*pgSubscription, 0, len(n.subs))
	for sub := range n.subs {
		if collection == "" || sub.collection == collection {
			targets = append(targets, sub)
		}
	}
	n.mu.Unlock()

	for _, sub := range targets {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		snapshot, err := n.store.Query(ctx, sub.collection, sub.filters, "")
		cancel()
		if err != nil {
			n.logger.Warn("docstore subscription refresh failed", "collection", sub.collection, "error", err)
			continue
		}
		sub.push(snapshot)
	}
}

func (n *notifier) drop(sub *pgSubscription) {
	n.mu.Lock()
	delete(n.subs, sub)
	n.mu.Unlock()
}

func (n *notifier) close() {
	n.mu.Lock()
	listener := n.listener
	n.listener = nil
	n.closed = true
	n.mu.Unlock()

	if listener != nil {
		_ = listener.Close()
	}
}

type pgSubscription struct {
	notifier   *notifier
	collection string
	filters    []docstore.Filter
	updates    chan []docstore.Document

	mu     sync.Mutex
	closed bool
}

func (s *pgSubscription) Updates() <-chan []docstore.Document {
	return s.updates
}

func (s *pgSubscription) Err() error {
	return nil
}

func (s *pgSubscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.notifier.drop(s)
	close(s.updates)
}

// push coalesces like the in-memory backend: a lagging receiver sees the
// newest snapshot, not a backlog of stale ones.
func (s *pgSubscription) push(snapshot []docstore.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.updates <- snapshot:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}
