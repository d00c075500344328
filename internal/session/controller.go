// Package session owns the state of one client session: its mode, signed-in
// user and loaded collections, and the transitions between them.
package session

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/wealthsense/internal/advice"
	"github.com/dvloznov/wealthsense/internal/auth"
	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/logger"
	"github.com/dvloznov/wealthsense/internal/store"
	"github.com/dvloznov/wealthsense/internal/store/memory"
	"github.com/dvloznov/wealthsense/internal/summary"
	"golang.org/x/sync/errgroup"
)

// Backend bundles the production collaborators. Both fields must be set for
// production mode to be available.
type Backend struct {
	Store store.Store
	Auth  *auth.Service
}

func (b *Backend) configured() bool {
	return b != nil && b.Store != nil && b.Auth != nil
}

// Controller holds the state of one session. It is safe for concurrent use.
type Controller struct {
	backend *Backend
	advisor *advice.Advisor

	mu          sync.Mutex
	state       State
	store       store.Store
	authSession *auth.Session
	unsubscribe func()
	generation  int
}

// NewController creates a controller with no mode selected. Call SwitchMode
// before use. backend may be nil, in which case production mode falls back
// to demo.
func NewController(backend *Backend, advisor *advice.Advisor) *Controller {
	return &Controller{backend: backend, advisor: advisor}
}

// SwitchMode moves the session to mode. Demo mode signs in the demo user over
// fresh fixture data. Production mode starts signed out and follows the auth
// session; when no backend is configured it falls back to demo and sets
// FallbackNotice.
func (c *Controller) SwitchMode(ctx context.Context, mode Mode) error {
	log := logger.FromContext(ctx)

	switch mode {
	case ModeDemo, ModeProduction:
	default:
		return fmt.Errorf("SwitchMode: %w: %q", ErrUnknownMode, mode)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.detachLocked()

	if mode == ModeProduction && !c.backend.configured() {
		log.Warn().Msg("Production backend not configured, falling back to demo mode")
		c.enterDemoLocked(ctx)
		c.state.Notice = FallbackNotice
		return nil
	}

	if mode == ModeDemo {
		c.enterDemoLocked(ctx)
		return nil
	}

	c.store = c.backend.Store
	c.authSession = c.backend.Auth.NewSession()
	gen := c.generation
	c.unsubscribe = c.authSession.OnAuthStateChanged(func(ctx context.Context, user *domain.UserProfile) {
		c.onAuthStateChanged(ctx, gen, user)
	})
	c.state = State{Mode: ModeProduction, Accounts: []domain.Account{}, Transactions: []domain.Transaction{}}
	log.Info().Msg("Switched to production mode")
	return nil
}

// detachLocked drops the auth subscription of the previous mode and
// invalidates any in-flight listener.
func (c *Controller) detachLocked() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.authSession = nil
	c.generation++
}

func (c *Controller) enterDemoLocked(ctx context.Context) {
	log := logger.FromContext(ctx)

	demo := memory.NewDemoStore()
	accounts, err := demo.ListAccounts(ctx, domain.DemoUser.UID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list demo accounts")
	}
	txs, err := demo.ListTransactions(ctx, domain.DemoUser.UID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list demo transactions")
	}

	user := domain.DemoUser
	c.store = demo
	c.state = State{
		Mode:         ModeDemo,
		User:         &user,
		Accounts:     accounts,
		Transactions: txs,
	}
}

func (c *Controller) onAuthStateChanged(ctx context.Context, gen int, user *domain.UserProfile) {
	log := logger.FromContext(ctx)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.state.User = user
	c.state.Accounts = []domain.Account{}
	c.state.Transactions = []domain.Transaction{}
	c.state.Notice = ""
	c.mu.Unlock()

	if user == nil {
		log.Info().Msg("Signed out")
		return
	}

	log.Info().Str("user_id", user.UID).Msg("Signed in, loading data")
	if err := c.Reload(ctx); err != nil {
		log.Error().Err(err).Str("user_id", user.UID).Msg("Failed to load user data")
	}
}

// Reload fetches accounts and transactions of the current user concurrently
// and replaces the loaded collections. Either fetch failing fails the whole
// load; the error is also recorded as the session notice.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.state.User == nil {
		c.mu.Unlock()
		return fmt.Errorf("Reload: %w", ErrSignedOut)
	}
	uid := c.state.User.UID
	st := c.store
	gen := c.generation
	c.mu.Unlock()

	var (
		accounts []domain.Account
		txs      []domain.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = st.ListAccounts(gctx, uid)
		if err != nil {
			return fmt.Errorf("listing accounts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		txs, err = st.ListTransactions(gctx, uid)
		if err != nil {
			return fmt.Errorf("listing transactions: %w", err)
		}
		return nil
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	// A sign-out or mode switch raced with the load.
	if gen != c.generation || c.state.User == nil || c.state.User.UID != uid {
		return nil
	}
	if err != nil {
		c.state.Notice = err.Error()
		return fmt.Errorf("Reload: %w", err)
	}
	c.state.Accounts = accounts
	c.state.Transactions = txs
	c.state.Notice = ""
	return nil
}

// SignIn authenticates against the production backend. Data loading happens
// in the auth listener; a load failure is reported through the notice.
func (c *Controller) SignIn(ctx context.Context, email, password string) (domain.UserProfile, error) {
	sess, err := c.productionSession()
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("SignIn: %w", err)
	}
	return sess.SignIn(ctx, email, password)
}

// Register creates a production user and signs it in.
func (c *Controller) Register(ctx context.Context, email, password string) (domain.UserProfile, error) {
	sess, err := c.productionSession()
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("Register: %w", err)
	}
	return sess.Register(ctx, email, password)
}

// SignOut signs the production user out. In demo mode it only clears the user.
func (c *Controller) SignOut(ctx context.Context) {
	c.mu.Lock()
	sess := c.authSession
	if sess == nil {
		c.state.User = nil
		c.state.Notice = ""
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	// The listener clears the state.
	sess.SignOut(ctx)
}

func (c *Controller) productionSession() (*auth.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Mode != ModeProduction || c.authSession == nil {
		return nil, ErrNotProduction
	}
	return c.authSession, nil
}

// Close drops the auth subscription.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detachLocked()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Report computes the dashboard figures over the loaded collections.
func (c *Controller) Report(r summary.Range) summary.Report {
	s := c.Snapshot()
	return summary.Build(s.Accounts, s.Transactions, r)
}

// Series buckets the loaded transactions by day.
func (c *Controller) Series(end civil.Date, days int) []summary.DayBucket {
	s := c.Snapshot()
	return summary.DailySeries(s.Transactions, end, days)
}

// Ledger annotates the loaded transactions for display.
func (c *Controller) Ledger() []summary.Entry {
	s := c.Snapshot()
	return summary.Ledger(s.Accounts, s.Transactions)
}

// Advice asks the advisor about the loaded collections.
func (c *Controller) Advice(ctx context.Context) (string, error) {
	s := c.Snapshot()
	if s.User == nil {
		return "", fmt.Errorf("Advice: %w", ErrSignedOut)
	}
	text, err := c.advisor.Advise(ctx, s.Transactions, s.Accounts)
	if err != nil {
		return "", fmt.Errorf("Advice: %w", err)
	}
	return text, nil
}
