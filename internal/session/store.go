// Package session implements the per-session identity store. Each session id
// owns a Store with a single mutable slot holding the current user; every
// identity change is snapshotted to Redis so sessions survive restarts.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chronicle/internal/middleware"
	"chronicle/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Directory is the slice of user persistence the store needs. It is the
// credential directory logins authenticate against and the registry signups
// write into.
type Directory interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// Notifier delivers fire-and-forget toasts to the session's client.
type Notifier interface {
	Publish(ctx context.Context, sid, kind, message string)
}

// AuthWindow is the external surface an in-flight provider flow renders in.
// Closed fires when the surface goes away before the flow completes.
type AuthWindow interface {
	Closed() <-chan struct{}
	Close()
}

// WindowOpener opens an AuthWindow pointed at a provider authorization URL.
type WindowOpener interface {
	Open(ctx context.Context, authURL string) (AuthWindow, error)
}

type headlessWindow struct {
	once sync.Once
	done chan struct{}
}

func (w *headlessWindow) Closed() <-chan struct{} { return w.done }

func (w *headlessWindow) Close() {
	w.once.Do(func() { close(w.done) })
}

// HeadlessOpener is the default WindowOpener. There is no browser to open,
// so the window only closes when the flow itself winds down.
type HeadlessOpener struct{}

func (HeadlessOpener) Open(ctx context.Context, authURL string) (AuthWindow, error) {
	middleware.Logger.InfoContext(ctx, "external auth window requested", "url", authURL)
	return &headlessWindow{done: make(chan struct{})}, nil
}

// Options tunes the store's simulated identity flows.
type Options struct {
	// LoginDelay is the fixed latency asserted before a credential check
	// resolves. The loading flag stays up for its duration.
	LoginDelay time.Duration
	// ProviderDelay is how long the mock external handshake runs before it
	// synthesizes a user.
	ProviderDelay time.Duration
}

// DefaultOptions mirror the latencies of the production mock flows.
func DefaultOptions() Options {
	return Options{
		LoginDelay:    800 * time.Millisecond,
		ProviderDelay: 2 * time.Second,
	}
}

// Manager hands out one Store per session id.
type Manager struct {
	users     Directory
	snapshots SnapshotStore
	notifier  Notifier
	opener    WindowOpener
	providers map[string]Provider
	opts      Options

	mu     sync.Mutex
	stores map[string]*Store
}

// NewManager creates a session manager. notifier and opener may be nil; a nil
// opener falls back to HeadlessOpener.
func NewManager(users Directory, snapshots SnapshotStore, notifier Notifier, opener WindowOpener, providers []Provider, opts Options) *Manager {
	if opener == nil {
		opener = HeadlessOpener{}
	}
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name] = p
	}
	return &Manager{
		users:     users,
		snapshots: snapshots,
		notifier:  notifier,
		opener:    opener,
		providers: byName,
		opts:      opts,
		stores:    make(map[string]*Store),
	}
}

// NewSessionID mints a fresh session id.
func NewSessionID() string {
	return uuid.New().String()
}

// Store returns the store for sid, creating and rehydrating it on first use.
// Concurrent callers for the same fresh sid all wait for the one rehydration.
func (m *Manager) Store(ctx context.Context, sid string) *Store {
	m.mu.Lock()
	s, ok := m.stores[sid]
	if !ok {
		s = &Store{sid: sid, mgr: m}
		m.stores[sid] = s
	}
	m.mu.Unlock()

	s.revive.Do(func() { s.Rehydrate(ctx) })
	return s
}

// Drop forgets the in-memory store for sid. The snapshot is untouched.
func (m *Manager) Drop(sid string) {
	m.mu.Lock()
	delete(m.stores, sid)
	m.mu.Unlock()
}

// Active returns the number of in-memory session stores.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

// Store holds the identity state of one session.
type Store struct {
	sid    string
	mgr    *Manager
	revive sync.Once

	// op serializes identity operations; mu guards the slot for readers.
	op sync.Mutex
	mu sync.Mutex

	user    *models.User
	loading bool
}

// ID returns the session id.
func (s *Store) ID() string { return s.sid }

// Current returns a copy of the current user, or nil when anonymous.
func (s *Store) Current() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Snapshot()
}

// IsAuthenticated reports whether the session has a current user.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Loading reports whether a credential check is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// setCurrent installs user as the session's current identity and persists the
// snapshot. A failed snapshot write is logged, not fatal; the in-memory slot
// is authoritative for the life of the process.
func (s *Store) setCurrent(ctx context.Context, user *models.User) {
	snap := user.Snapshot()
	s.mu.Lock()
	s.user = snap
	s.mu.Unlock()

	if err := s.mgr.snapshots.Save(ctx, s.sid, snap); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to persist session snapshot",
			"session_id", s.sid, "error", err)
	}
}

func (s *Store) notify(ctx context.Context, kind, message string) {
	if s.mgr.notifier == nil {
		return
	}
	s.mgr.notifier.Publish(ctx, s.sid, kind, message)
}

// Login verifies credentials against the directory after the configured
// simulated latency. On mismatch the prior slot state is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	s.op.Lock()
	defer s.op.Unlock()

	s.setLoading(true)
	defer s.setLoading(false)

	if err := sleepContext(ctx, s.mgr.opts.LoginDelay); err != nil {
		return nil, err
	}

	user, err := s.mgr.users.GetByEmail(ctx, email)
	if err != nil {
		s.notify(ctx, "error", "Something went wrong. Please try again.")
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		s.notify(ctx, "error", "Invalid email or password")
		return nil, models.NewInvalidCredentialsError()
	}

	s.setCurrent(ctx, user)
	s.notify(ctx, "success", fmt.Sprintf("Welcome back, %s!", user.Name))
	return s.Current(), nil
}

// Signup registers a new account and makes it the current user.
func (s *Store) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	s.op.Lock()
	defer s.op.Unlock()

	s.setLoading(true)
	defer s.setLoading(false)

	existing, err := s.mgr.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.notify(ctx, "error", "An account with that email already exists")
		return nil, models.NewDuplicateEmailError(email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     models.RoleUser,
		Avatar:   "https://i.pravatar.cc/150?u=" + email,
	}
	if err := s.mgr.users.Create(ctx, user); err != nil {
		s.notify(ctx, "error", "Something went wrong. Please try again.")
		return nil, err
	}

	s.setCurrent(ctx, user)
	s.notify(ctx, "success", fmt.Sprintf("Welcome, %s!", user.Name))
	return s.Current(), nil
}

// SignupWithProvider runs the mock external-auth handshake. It opens an auth
// window and waits on whichever settles first: the handshake timer (success),
// the window closing, or ctx ending (both cancel the flow).
func (s *Store) SignupWithProvider(ctx context.Context, providerName string) (*models.User, error) {
	provider, ok := s.mgr.providers[providerName]
	if !ok {
		return nil, models.NewValidationError(fmt.Sprintf("Unknown auth provider %q", providerName))
	}

	s.op.Lock()
	defer s.op.Unlock()

	s.setLoading(true)
	defer s.setLoading(false)

	window, err := s.mgr.opener.Open(ctx, provider.AuthURL())
	if err != nil {
		s.notify(ctx, "error", "Could not open the authentication window")
		return nil, models.NewAuthCancelledError(provider.Name, err)
	}
	defer window.Close()

	timer := time.NewTimer(s.mgr.opts.ProviderDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-window.Closed():
		s.notify(ctx, "error", "Authentication was cancelled")
		return nil, models.NewAuthCancelledError(provider.Name, nil)
	case <-ctx.Done():
		return nil, models.NewAuthCancelledError(provider.Name, ctx.Err())
	}

	user := provider.SyntheticUser()
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user.Password = string(hash)

	if err := s.mgr.users.Create(ctx, user); err != nil {
		s.notify(ctx, "error", "Something went wrong. Please try again.")
		return nil, err
	}

	s.setCurrent(ctx, user)
	s.notify(ctx, "success", fmt.Sprintf("Signed in with %s", provider.DisplayName()))
	return s.Current(), nil
}

// Logout clears the slot, deletes the persisted snapshot, and evicts the
// store from the manager. Logging out an anonymous session is a successful
// no-op.
func (s *Store) Logout(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.Lock()
	wasAuthenticated := s.user != nil
	s.user = nil
	s.mu.Unlock()

	if err := s.mgr.snapshots.Delete(ctx, s.sid); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to delete session snapshot",
			"session_id", s.sid, "error", err)
	}
	s.mgr.Drop(s.sid)
	if wasAuthenticated {
		s.notify(ctx, "success", "You have been signed out")
	}
	return nil
}

// UserPatch carries the mutable profile fields. Nil fields are left as-is.
type UserPatch struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
	Bio    *string `json:"bio"`
}

// UpdateUser applies patch to the current user, writes it through to the
// directory, and re-persists the snapshot. Anonymous sessions are a silent
// no-op returning nil.
func (s *Store) UpdateUser(ctx context.Context, patch UserPatch) (*models.User, error) {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.Lock()
	current := s.user
	s.mu.Unlock()
	if current == nil {
		return nil, nil
	}

	// Patch the directory record, not the session snapshot. The snapshot has
	// the password hash stripped; writing it through would erase the stored
	// credential and lock the user out.
	record, err := s.mgr.users.GetByID(ctx, current.ID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		record.Name = *patch.Name
	}
	if patch.Avatar != nil {
		record.Avatar = *patch.Avatar
	}
	if patch.Bio != nil {
		record.Bio = *patch.Bio
	}

	if err := s.mgr.users.Update(ctx, record); err != nil {
		s.notify(ctx, "error", "Could not save your profile")
		return nil, err
	}

	s.setCurrent(ctx, record)
	s.notify(ctx, "success", "Profile updated")
	return s.Current(), nil
}

// Rehydrate restores the slot from the persisted snapshot. Read failures
// leave the session anonymous.
func (s *Store) Rehydrate(ctx context.Context) {
	user, err := s.mgr.snapshots.Load(ctx, s.sid)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to rehydrate session",
			"session_id", s.sid, "error", err)
		return
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
