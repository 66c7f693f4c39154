package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flicky/aqua-storefront/internal/identity"
	"github.com/flicky/aqua-storefront/internal/kv"
	"github.com/flicky/aqua-storefront/internal/model"
)

const localAdminID = "local-admin"

// Session is one browsing session: a cart and, after sign-in, a staff user.
// Its state is guarded by the owning Store's lock.
type Session struct {
	id    string
	store *Store

	cart     []model.CartItem
	user     *model.User
	identity *identity.Identity
	lastUsed time.Time
}

// Session returns the session with id, registering it and loading its
// persisted cart on first use. Callers that only read should use Cart or
// LookupSession, which never register anything.
func (s *Store) Session(ctx context.Context, id string) *Session {
	if sess, ok := s.LookupSession(id); ok {
		return sess
	}

	cart := s.loadCart(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := &Session{id: id, store: s, cart: cart, lastUsed: time.Now()}
	s.sessions[id] = sess
	return sess
}

// LookupSession returns an existing session without creating one.
func (s *Store) LookupSession(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if ok {
		sess.lastUsed = time.Now()
	}
	return sess, ok
}

// Cart returns the cart of session id, read from the persisted copy when the
// session is not registered.
func (s *Store) Cart(ctx context.Context, id string) []model.CartItem {
	if sess, ok := s.LookupSession(id); ok {
		return sess.Cart()
	}
	return s.loadCart(ctx, id)
}

// PruneSessions drops signed-out sessions not used since cutoff and returns
// how many were dropped. Their carts stay persisted and reload on next use.
func (s *Store) PruneSessions(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if sess.user == nil && sess.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Sessions reports how many sessions are registered.
func (s *Store) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) loadCart(ctx context.Context, id string) []model.CartItem {
	var cart []model.CartItem
	if _, err := kv.LoadJSON(ctx, s.kv, keyCartPrefix+id, &cart); err != nil {
		s.log.Warn("load cart", "session_id", id, "error", err)
	}
	return validCart(cart)
}

// holdLocked registers sess again after it was released or pruned.
func (s *Store) holdLocked(sess *Session) {
	if _, ok := s.sessions[sess.id]; !ok {
		s.sessions[sess.id] = sess
	}
}

// releaseLocked unregisters sess once it holds neither cart lines nor a user.
func (s *Store) releaseLocked(sess *Session) {
	if len(sess.cart) == 0 && sess.user == nil && s.sessions[sess.id] == sess {
		delete(s.sessions, sess.id)
	}
}

func (sess *Session) ID() string { return sess.id }

func (sess *Session) Cart() []model.CartItem {
	sess.store.mu.Lock()
	defer sess.store.mu.Unlock()
	out := make([]model.CartItem, len(sess.cart))
	copy(out, sess.cart)
	return out
}

// AddToCart increments the line for p or adds it with quantity one.
func (sess *Session) AddToCart(ctx context.Context, p model.Product) {
	sess.mutateCart(ctx, func(cart []model.CartItem) []model.CartItem {
		for i := range cart {
			if cart[i].ID == p.ID {
				cart[i].Quantity++
				return cart
			}
		}
		return append(cart, model.CartItem{Product: p, Quantity: 1})
	})
}

func (sess *Session) RemoveFromCart(ctx context.Context, productID string) {
	sess.mutateCart(ctx, func(cart []model.CartItem) []model.CartItem {
		kept := cart[:0]
		for _, item := range cart {
			if item.ID != productID {
				kept = append(kept, item)
			}
		}
		return kept
	})
}

// UpdateCartQuantity replaces a line's quantity. A quantity of zero or
// less removes the line.
func (sess *Session) UpdateCartQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		sess.RemoveFromCart(ctx, productID)
		return
	}
	sess.mutateCart(ctx, func(cart []model.CartItem) []model.CartItem {
		for i := range cart {
			if cart[i].ID == productID {
				cart[i].Quantity = quantity
			}
		}
		return cart
	})
}

func (sess *Session) ClearCart(ctx context.Context) {
	sess.mutateCart(ctx, func([]model.CartItem) []model.CartItem { return nil })
}

// TakeCart empties the cart and returns what it held, in one step. An empty
// cart is left untouched.
func (sess *Session) TakeCart(ctx context.Context) []model.CartItem {
	var taken []model.CartItem
	sess.mutateCart(ctx, func(cart []model.CartItem) []model.CartItem {
		taken = cart
		return nil
	})
	if len(taken) == 0 {
		return nil
	}
	return taken
}

func (sess *Session) mutateCart(ctx context.Context, fn func([]model.CartItem) []model.CartItem) {
	s := sess.store
	s.mu.Lock()
	was := len(sess.cart)
	work := make([]model.CartItem, len(sess.cart))
	copy(work, sess.cart)
	sess.cart = fn(work)
	sess.lastUsed = time.Now()
	if was == 0 && len(sess.cart) == 0 {
		s.releaseLocked(sess)
		s.mu.Unlock()
		return
	}
	snapshot := make([]model.CartItem, len(sess.cart))
	copy(snapshot, sess.cart)
	s.holdLocked(sess)
	s.releaseLocked(sess)
	s.mu.Unlock()

	if err := kv.SaveJSON(ctx, s.kv, keyCartPrefix+sess.id, snapshot); err != nil {
		s.log.Error("persist cart", "session_id", sess.id, "error", err)
	}
	s.emit(Event{Kind: EventCart, SessionID: sess.id})
}

func (sess *Session) User() *model.User {
	sess.store.mu.Lock()
	defer sess.store.mu.Unlock()
	if sess.user == nil {
		return nil
	}
	u := *sess.user
	return &u
}

// SignIn checks the credentials with the identity provider in remote mode,
// or against the fallback pair in local mode. Every signed-in user is an admin.
func (sess *Session) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	s := sess.store

	user, id, err := s.authenticate(ctx, email, password)
	if err != nil {
		s.mu.Lock()
		s.releaseLocked(sess)
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	sess.user = &user
	sess.identity = id
	sess.lastUsed = time.Now()
	s.holdLocked(sess)
	s.mu.Unlock()
	s.emit(Event{Kind: EventSession, SessionID: sess.id})

	out := user
	return &out, nil
}

func (s *Store) authenticate(ctx context.Context, email, password string) (model.User, *identity.Identity, error) {
	switch m := s.mode.(type) {
	case Remote:
		got, err := m.Identity.SignIn(ctx, email, password)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidCredentials) {
				return model.User{}, nil, ErrInvalidCredentials
			}
			return model.User{}, nil, fmt.Errorf("sign in: %w", err)
		}
		return model.User{ID: got.UID, Email: got.Email, IsAdmin: true}, got, nil
	case Local:
		if !m.Credentials.Match(email, password) {
			return model.User{}, nil, ErrInvalidCredentials
		}
		return model.User{ID: localAdminID, Email: email, IsAdmin: true}, nil, nil
	}
	return model.User{}, nil, fmt.Errorf("unknown store mode %T", s.mode)
}

// SignOut clears the user. Errors from the remote sign-out are discarded.
func (sess *Session) SignOut(ctx context.Context) {
	s := sess.store
	s.mu.Lock()
	id := sess.identity
	sess.user = nil
	sess.identity = nil
	s.releaseLocked(sess)
	s.mu.Unlock()

	if r, ok := s.mode.(Remote); ok && id != nil {
		if err := r.Identity.SignOut(ctx, id); err != nil {
			s.log.Debug("remote sign out", "session_id", sess.id, "error", err)
		}
	}
	s.emit(Event{Kind: EventSession, SessionID: sess.id})
}

func validCart(cart []model.CartItem) []model.CartItem {
	out := cart[:0]
	for _, item := range cart {
		if item.Quantity > 0 && item.ID != "" {
			out = append(out, item)
		}
	}
	return out
}
