// Package live keeps an always-current read model of the portfolio content.
// A Layer subscribes to the projects, categories, contacts and profile in the
// document store, applies every delivered snapshot on a single goroutine, and
// writes changes back through asynchronous mutators.
package live

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eringen/folio/auth"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/docstore"
)

// DocumentStore is the subset of the document database the layer needs.
type DocumentStore interface {
	Subscribe(q docstore.Query, onSnapshot func(docstore.Snapshot), onError func(error)) func()
	SubscribeDoc(ref docstore.Ref, onSnapshot func(docstore.DocSnapshot), onError func(error)) func()
	Set(ctx context.Context, ref docstore.Ref, v any) error
	Update(ctx context.Context, ref docstore.Ref, partial any) error
	Delete(ctx context.Context, ref docstore.Ref) error
	BatchWrite(ctx context.Context, writes []docstore.Write) error
}

// Authenticator signs one client in and out and reports its state.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (auth.Credential, error)
	SignOut(ctx context.Context) error
	OnAuthStateChanged(fn func(*auth.User)) func()
}

// Snapshot is the read model at one point in time. Slices are never modified
// in place, so a Snapshot may be read without further locking.
type Snapshot struct {
	Projects   []content.Project
	Categories []content.Category
	Contacts   []content.Contact
	Profile    content.Profile
	Loading    bool
}

// Change tells subscribers that a collection was replaced.
type Change struct {
	Collection string
}

// Option configures a Layer.
type Option func(*Layer)

// WithLogger sets the diagnostic logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Layer) {
		l.log = log.With().Str("component", "live").Logger()
	}
}

// WithSeedOnEmpty controls whether an empty store is seeded with the default
// bundle on start. It is enabled by default.
func WithSeedOnEmpty(enabled bool) Option {
	return func(l *Layer) {
		l.seedOnEmpty = enabled
	}
}

// WithClock replaces the time source used for createdAt stamps and the seed
// bundle.
func WithClock(now func() time.Time) Option {
	return func(l *Layer) {
		l.now = now
	}
}

// Layer is the shared read model plus mutators.
type Layer struct {
	store       DocumentStore
	log         zerolog.Logger
	seedOnEmpty bool
	now         func() time.Time

	mu   sync.RWMutex
	snap Snapshot

	events    chan func()
	done      chan struct{}
	loopDone  chan struct{}
	ready     chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
	unsubs    []func()

	// Owned by the loop goroutine.
	initialized   bool
	sawCategories bool
	pending       map[string]bool

	subMu sync.Mutex
	subs  map[chan Change]struct{}

	writeMu  sync.Mutex
	inflight int
	idle     chan struct{}
}

// New returns a Layer over store. Call Start to open the subscriptions.
func New(store DocumentStore, opts ...Option) *Layer {
	l := &Layer{
		store:       store,
		log:         zerolog.Nop(),
		seedOnEmpty: true,
		now:         time.Now,
		snap: Snapshot{
			Profile: content.DefaultProfile(),
			Loading: true,
		},
		events:   make(chan func(), 64),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
		ready:    make(chan struct{}),
		pending: map[string]bool{
			content.CollectionProjects:   true,
			content.CollectionCategories: true,
			content.CollectionContacts:   true,
			content.CollectionSettings:   true,
		},
		subs: make(map[chan Change]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start opens the four subscriptions and starts applying their snapshots.
// Calling Start more than once has no effect.
func (l *Layer) Start() {
	l.startOnce.Do(func() {
		l.unsubs = []func(){
			l.store.Subscribe(docstore.Collection(content.CollectionProjects),
				func(s docstore.Snapshot) { l.enqueue(func() { l.applyProjects(s) }) },
				l.onError(content.CollectionProjects)),
			l.store.Subscribe(docstore.Collection(content.CollectionCategories).OrderBy("order"),
				func(s docstore.Snapshot) { l.enqueue(func() { l.applyCategories(s) }) },
				l.onError(content.CollectionCategories)),
			l.store.Subscribe(docstore.Collection(content.CollectionContacts),
				func(s docstore.Snapshot) { l.enqueue(func() { l.applyContacts(s) }) },
				l.onError(content.CollectionContacts)),
			l.store.SubscribeDoc(docstore.Doc(content.CollectionSettings, content.ProfileDocID),
				func(s docstore.DocSnapshot) { l.enqueue(func() { l.applyProfile(s) }) },
				l.onError(content.CollectionSettings)),
		}

		l.initialized = true
		l.mu.Lock()
		l.snap.Loading = false
		l.mu.Unlock()

		go l.loop()
	})
}

// Close removes the subscriptions and stops the event loop. In-flight writes
// are not interrupted; use Flush to wait for them.
func (l *Layer) Close() {
	l.closeOnce.Do(func() {
		for _, unsub := range l.unsubs {
			unsub()
		}
		close(l.done)
		l.startOnce.Do(func() { close(l.loopDone) })
		<-l.loopDone

		l.subMu.Lock()
		for ch := range l.subs {
			delete(l.subs, ch)
			close(ch)
		}
		l.subMu.Unlock()
	})
}

// Flush waits until every write started so far has finished.
func (l *Layer) Flush(ctx context.Context) error {
	l.writeMu.Lock()
	if l.inflight == 0 {
		l.writeMu.Unlock()
		return nil
	}
	idle := l.idle
	l.writeMu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready is closed once every subscription has delivered its first snapshot
// or failed.
func (l *Layer) Ready() <-chan struct{} {
	return l.ready
}

// Snapshot returns the current read model.
func (l *Layer) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}

// Subscribe returns a channel that receives a Change after every applied
// snapshot. Slow readers miss changes rather than block the layer. The
// returned function unsubscribes and closes the channel.
func (l *Layer) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 16)
	l.subMu.Lock()
	select {
	case <-l.done:
		close(ch)
		l.subMu.Unlock()
		return ch, func() {}
	default:
	}
	l.subs[ch] = struct{}{}
	l.subMu.Unlock()

	return ch, func() {
		l.subMu.Lock()
		defer l.subMu.Unlock()
		if _, ok := l.subs[ch]; ok {
			delete(l.subs, ch)
			close(ch)
		}
	}
}

func (l *Layer) enqueue(fn func()) {
	select {
	case l.events <- fn:
	case <-l.done:
	}
}

func (l *Layer) loop() {
	defer close(l.loopDone)
	for {
		select {
		case fn := <-l.events:
			fn()
		case <-l.done:
			return
		}
	}
}

func (l *Layer) onError(collection string) func(error) {
	return func(err error) {
		l.log.Warn().Err(err).Str("collection", collection).Msg("subscription failed, keeping last snapshot")
		l.enqueue(func() { l.delivered(collection) })
	}
}

// delivered marks the first delivery of collection and closes Ready once all
// four have arrived.
func (l *Layer) delivered(collection string) {
	if !l.pending[collection] {
		return
	}
	delete(l.pending, collection)
	if len(l.pending) == 0 {
		close(l.ready)
	}
}

func (l *Layer) replace(collection string, apply func(*Snapshot)) {
	l.mu.Lock()
	apply(&l.snap)
	l.mu.Unlock()

	l.delivered(collection)
	l.broadcast(Change{Collection: collection})
}

func (l *Layer) broadcast(c Change) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	for ch := range l.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

func (l *Layer) applyProjects(s docstore.Snapshot) {
	projects := make([]content.Project, 0, len(s.Docs))
	for _, d := range s.Docs {
		var p content.Project
		if err := d.DataTo(&p); err != nil {
			l.log.Warn().Err(err).Str("id", d.ID).Msg("skipping malformed project")
			continue
		}
		if p.ID == "" {
			p.ID = d.ID
		}
		projects = append(projects, p)
	}
	l.replace(content.CollectionProjects, func(snap *Snapshot) { snap.Projects = projects })
}

func (l *Layer) applyCategories(s docstore.Snapshot) {
	cats := make([]content.Category, 0, len(s.Docs))
	for _, d := range s.Docs {
		var c content.Category
		if err := d.DataTo(&c); err != nil {
			l.log.Warn().Err(err).Str("id", d.ID).Msg("skipping malformed category")
			continue
		}
		if c.ID == "" {
			c.ID = d.ID
		}
		cats = append(cats, c)
	}
	first := !l.sawCategories
	l.sawCategories = true
	if first && s.Empty() && l.initialized && l.seedOnEmpty {
		l.seed()
	}
	l.replace(content.CollectionCategories, func(snap *Snapshot) { snap.Categories = cats })
}

func (l *Layer) applyContacts(s docstore.Snapshot) {
	contacts := make([]content.Contact, 0, len(s.Docs))
	for _, d := range s.Docs {
		var c content.Contact
		if err := d.DataTo(&c); err != nil {
			l.log.Warn().Err(err).Str("id", d.ID).Msg("skipping malformed contact")
			continue
		}
		if c.ID == "" {
			c.ID = d.ID
		}
		contacts = append(contacts, c)
	}
	l.replace(content.CollectionContacts, func(snap *Snapshot) { snap.Contacts = contacts })
}

// applyProfile keeps the current profile when the document is missing.
func (l *Layer) applyProfile(s docstore.DocSnapshot) {
	if !s.Exists {
		l.delivered(content.CollectionSettings)
		return
	}
	var p content.Profile
	if err := s.DataTo(&p); err != nil {
		l.log.Warn().Err(err).Msg("skipping malformed profile")
		l.delivered(content.CollectionSettings)
		return
	}
	l.replace(content.CollectionSettings, func(snap *Snapshot) { snap.Profile = p })
}

// seed writes the default bundle in one batch. Failures are logged only.
func (l *Layer) seed() *Op {
	l.log.Info().Msg("categories empty, seeding default content")
	return l.write(context.Background(), "seed", docstore.Ref{}, func(ctx context.Context) error {
		return l.store.BatchWrite(ctx, SeedWrites(content.SeedBundle(l.now())))
	})
}

// SeedWrites turns a bundle into batch entries: categories, projects,
// contacts, then the profile.
func SeedWrites(b content.Bundle) []docstore.Write {
	writes := make([]docstore.Write, 0, len(b.Categories)+len(b.Projects)+len(b.Contacts)+1)
	for _, c := range b.Categories {
		writes = append(writes, docstore.Write{Ref: docstore.Doc(content.CollectionCategories, c.ID), Value: c})
	}
	for _, p := range b.Projects {
		writes = append(writes, docstore.Write{Ref: docstore.Doc(content.CollectionProjects, p.ID), Value: p})
	}
	for _, c := range b.Contacts {
		writes = append(writes, docstore.Write{Ref: docstore.Doc(content.CollectionContacts, c.ID), Value: c})
	}
	writes = append(writes, docstore.Write{Ref: docstore.Doc(content.CollectionSettings, content.ProfileDocID), Value: b.Profile})
	return writes
}

// write runs fn on its own goroutine, detached from ctx cancellation.
func (l *Layer) write(ctx context.Context, name string, ref docstore.Ref, fn func(ctx context.Context) error) *Op {
	op := newOp(ref)
	ctx = context.WithoutCancel(ctx)
	l.writeMu.Lock()
	if l.inflight == 0 {
		l.idle = make(chan struct{})
	}
	l.inflight++
	l.writeMu.Unlock()

	go func() {
		defer l.writeDone()
		err := fn(ctx)
		if err != nil {
			l.log.Error().Err(err).Str("op", name).Str("ref", ref.String()).Msg("write failed")
		}
		op.finish(err)
	}()
	return op
}

func (l *Layer) writeDone() {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	l.inflight--
	if l.inflight == 0 {
		close(l.idle)
	}
}

func (l *Layer) prepareProject(p content.Project) content.Project {
	if p.ID == "" {
		p.ID = content.NewID()
	}
	if p.CreatedAt == "" {
		p.CreatedAt = l.now().UTC().Format(time.RFC3339)
	}
	p.Media = content.NormalizeMedia(p.Media)
	return p
}

// AddProject creates or replaces the project. An empty id is generated.
func (l *Layer) AddProject(ctx context.Context, p content.Project) *Op {
	p = l.prepareProject(p)
	ref := docstore.Doc(content.CollectionProjects, p.ID)
	return l.write(ctx, "add project", ref, func(ctx context.Context) error {
		return l.store.Set(ctx, ref, p)
	})
}

// UpdateProject merges p into the existing project. It fails with
// docstore.ErrNotFound when the project does not exist.
func (l *Layer) UpdateProject(ctx context.Context, p content.Project) *Op {
	p.Media = content.NormalizeMedia(p.Media)
	ref := docstore.Doc(content.CollectionProjects, p.ID)
	return l.write(ctx, "update project", ref, func(ctx context.Context) error {
		return l.store.Update(ctx, ref, p)
	})
}

// DeleteProject removes the project.
func (l *Layer) DeleteProject(ctx context.Context, id string) *Op {
	ref := docstore.Doc(content.CollectionProjects, id)
	return l.write(ctx, "delete project", ref, func(ctx context.Context) error {
		return l.store.Delete(ctx, ref)
	})
}

// AddCategory creates or replaces the category. An empty id is generated.
func (l *Layer) AddCategory(ctx context.Context, c content.Category) *Op {
	if c.ID == "" {
		c.ID = content.NewID()
	}
	ref := docstore.Doc(content.CollectionCategories, c.ID)
	return l.write(ctx, "add category", ref, func(ctx context.Context) error {
		return l.store.Set(ctx, ref, c)
	})
}

// UpdateCategory merges c into the existing category.
func (l *Layer) UpdateCategory(ctx context.Context, c content.Category) *Op {
	ref := docstore.Doc(content.CollectionCategories, c.ID)
	return l.write(ctx, "update category", ref, func(ctx context.Context) error {
		return l.store.Update(ctx, ref, c)
	})
}

// DeleteCategory removes the category. Projects referencing it are kept.
func (l *Layer) DeleteCategory(ctx context.Context, id string) *Op {
	ref := docstore.Doc(content.CollectionCategories, id)
	return l.write(ctx, "delete category", ref, func(ctx context.Context) error {
		return l.store.Delete(ctx, ref)
	})
}

// AddContact creates or replaces the contact. An empty id is generated.
func (l *Layer) AddContact(ctx context.Context, c content.Contact) *Op {
	if c.ID == "" {
		c.ID = content.NewID()
	}
	ref := docstore.Doc(content.CollectionContacts, c.ID)
	return l.write(ctx, "add contact", ref, func(ctx context.Context) error {
		return l.store.Set(ctx, ref, c)
	})
}

// UpdateContact merges c into the existing contact.
func (l *Layer) UpdateContact(ctx context.Context, c content.Contact) *Op {
	ref := docstore.Doc(content.CollectionContacts, c.ID)
	return l.write(ctx, "update contact", ref, func(ctx context.Context) error {
		return l.store.Update(ctx, ref, c)
	})
}

// DeleteContact removes the contact.
func (l *Layer) DeleteContact(ctx context.Context, id string) *Op {
	ref := docstore.Doc(content.CollectionContacts, id)
	return l.write(ctx, "delete contact", ref, func(ctx context.Context) error {
		return l.store.Delete(ctx, ref)
	})
}

// UpdateProfile replaces the profile document.
func (l *Layer) UpdateProfile(ctx context.Context, p content.Profile) *Op {
	p.Skills = slices.Clone(p.Skills)
	ref := docstore.Doc(content.CollectionSettings, content.ProfileDocID)
	return l.write(ctx, "update profile", ref, func(ctx context.Context) error {
		return l.store.Set(ctx, ref, p)
	})
}
