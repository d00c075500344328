package auth

import (
	"context"
	"sync"

	"github.com/dvloznov/wealthsense/internal/domain"
)

// Listener receives the signed-in profile, or nil after sign-out.
type Listener func(ctx context.Context, user *domain.UserProfile)

// Session tracks the signed-in user of one client. Listeners are called
// synchronously, in subscription order, on every change.
type Session struct {
	svc *Service

	mu        sync.Mutex
	current   *domain.UserProfile
	listeners map[int]Listener
	order     []int
	nextID    int
}

// SignIn authenticates and makes the user current.
func (s *Session) SignIn(ctx context.Context, email, password string) (domain.UserProfile, error) {
	user, err := s.svc.Authenticate(ctx, email, password)
	if err != nil {
		return domain.UserProfile{}, err
	}
	s.set(ctx, &user)
	return user, nil
}

// Register creates an account and signs it in.
func (s *Session) Register(ctx context.Context, email, password string) (domain.UserProfile, error) {
	user, err := s.svc.Register(ctx, email, password)
	if err != nil {
		return domain.UserProfile{}, err
	}
	s.set(ctx, &user)
	return user, nil
}

// SignOut clears the current user. Signing out while signed out still
// notifies listeners.
func (s *Session) SignOut(ctx context.Context) {
	s.set(ctx, nil)
}

// Current returns the signed-in user, if any.
func (s *Session) Current() (domain.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return domain.UserProfile{}, false
	}
	return *s.current, true
}

// OnAuthStateChanged subscribes fn to changes and returns a function that
// removes the subscription.
func (s *Session) OnAuthStateChanged(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *Session) set(ctx context.Context, user *domain.UserProfile) {
	s.mu.Lock()
	s.current = user
	fns := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	// Listeners may call back into the session, so the lock is released first.
	for _, fn := range fns {
		var arg *domain.UserProfile
		if user != nil {
			u := *user
			arg = &u
		}
		fn(ctx, arg)
	}
}
