package docstore

import (
	"context"
	"sync"
)

// listener delivers snapshots for one subscription on its own goroutine.
// Wake-ups are coalesced: a burst of writes yields at least one snapshot
// reflecting the last of them.
type listener struct {
	collection string
	deliver    func(ctx context.Context) error
	onErr      func(error)

	kick     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func (l *listener) stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

func (l *listener) stopped() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// Subscribe registers onSnapshot for every change of the query's collection.
// The first snapshot is delivered right away. If a read fails, onError is
// called once and the listener stops. The returned function unsubscribes.
func (s *Store) Subscribe(q Query, onSnapshot func(Snapshot), onError func(error)) func() {
	l := &listener{collection: q.Collection, onErr: onError}
	l.deliver = func(ctx context.Context) error {
		snap, err := s.List(ctx, q)
		if err != nil {
			return err
		}
		if !l.stopped() {
			onSnapshot(snap)
		}
		return nil
	}
	return s.attach(l)
}

// SubscribeDoc registers onSnapshot for every change of the document's
// collection, delivering the document's state each time.
func (s *Store) SubscribeDoc(ref Ref, onSnapshot func(DocSnapshot), onError func(error)) func() {
	l := &listener{collection: ref.Collection, onErr: onError}
	l.deliver = func(ctx context.Context) error {
		snap, err := s.Get(ctx, ref)
		if err != nil {
			return err
		}
		if !l.stopped() {
			onSnapshot(snap)
		}
		return nil
	}
	return s.attach(l)
}

func (s *Store) attach(l *listener) func() {
	l.kick = make(chan struct{}, 1)
	l.done = make(chan struct{})

	s.mu.Lock()
	set, ok := s.listeners[l.collection]
	if !ok {
		set = make(map[*listener]struct{})
		s.listeners[l.collection] = set
	}
	set[l] = struct{}{}
	s.mu.Unlock()

	go s.run(l)
	return func() {
		s.detach(l)
		l.stop()
	}
}

func (s *Store) detach(l *listener) {
	s.mu.Lock()
	if set, ok := s.listeners[l.collection]; ok {
		delete(set, l)
		if len(set) == 0 {
			delete(s.listeners, l.collection)
		}
	}
	s.mu.Unlock()
}

func (s *Store) run(l *listener) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-l.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		if err := l.deliver(ctx); err != nil {
			if l.stopped() {
				return
			}
			s.log.Warn().Err(err).Str("collection", l.collection).Msg("listener stopped")
			if l.onErr != nil {
				l.onErr(err)
			}
			s.detach(l)
			l.stop()
			return
		}
		select {
		case <-l.kick:
		case <-l.done:
			return
		}
	}
}

// notify wakes every listener of collection without blocking.
func (s *Store) notify(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for l := range s.listeners[collection] {
		select {
		case l.kick <- struct{}{}:
		default:
		}
	}
}
