// Package session owns the live broker sessions for all authenticated
// accounts. Sessions are established at bootstrap (or by an external
// login surface) and only looked up by the replication engine; a missing
// session is a normal, recoverable condition.
package session

import (
	"context"
	"sync"

	"main/internal/adapter"
	"main/pkg/exception"
)

// Broker is the minimal broker surface a session delegates to.
type Broker interface {
	PlaceOrder(ctx context.Context, intent adapter.ChildOrderIntent) (orderID string, err error)
	CancelOrder(ctx context.Context, orderID, clientCode string) (message string, err error)
	OrderBook(ctx context.Context, clientCode string) ([]adapter.MasterOrder, error)
}

// Session is a live authenticated handle to one brokerage account.
type Session struct {
	name   string
	userID string
	broker Broker
}

func NewSession(name, userID string, broker Broker) (*Session, error) {
	if broker == nil {
		return nil, exception.ErrSessionNilBroker
	}
	return &Session{name: name, userID: userID, broker: broker}, nil
}

// Name returns the account display name.
func (s *Session) Name() string { return s.name }

// UserID returns the broker user id.
func (s *Session) UserID() string { return s.userID }

func (s *Session) PlaceOrder(ctx context.Context, intent adapter.ChildOrderIntent) (string, error) {
	return s.broker.PlaceOrder(ctx, intent)
}

func (s *Session) CancelOrder(ctx context.Context, orderID string) (string, error) {
	return s.broker.CancelOrder(ctx, orderID, s.userID)
}

func (s *Session) OrderBook(ctx context.Context) ([]adapter.MasterOrder, error) {
	return s.broker.OrderBook(ctx, s.userID)
}

// Directory indexes live sessions by display name and broker user id.
type Directory struct {
	mu     sync.RWMutex
	byUser map[string]*Session
	byName map[string]*Session
}

func NewDirectory() *Directory {
	return &Directory{
		byUser: make(map[string]*Session),
		byName: make(map[string]*Session),
	}
}

// Register adds a session, replacing any previous one for the same account.
func (d *Directory) Register(s *Session) {
	if s == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byUser[s.userID] = s
	d.byName[s.name] = s
}

// Remove drops a session by user id.
func (d *Directory) Remove(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.byUser[userID]; ok {
		delete(d.byName, s.name)
		delete(d.byUser, userID)
	}
}

// ByUserID looks a session up by broker user id.
func (d *Directory) ByUserID(userID string) (*Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.byUser[userID]
	return s, ok
}

// ByName looks a session up by account display name.
func (d *Directory) ByName(name string) (*Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.byName[name]
	return s, ok
}

// Len returns the number of live sessions.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byUser)
}
