package session

import (
	"context"
	"testing"

	"main/internal/adapter"
	"main/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBroker struct {
	lastClientCode string
	lastOrderID    string
}

func (b *stubBroker) PlaceOrder(_ context.Context, intent adapter.ChildOrderIntent) (string, error) {
	b.lastClientCode = intent.ClientCode
	return "ORD-1", nil
}

func (b *stubBroker) CancelOrder(_ context.Context, orderID, clientCode string) (string, error) {
	b.lastOrderID = orderID
	b.lastClientCode = clientCode
	return "ok", nil
}

func (b *stubBroker) OrderBook(_ context.Context, clientCode string) ([]adapter.MasterOrder, error) {
	b.lastClientCode = clientCode
	return nil, nil
}

func TestNewSessionRequiresBroker(t *testing.T) {
	_, err := NewSession("Alice", "C1", nil)
	assert.ErrorIs(t, err, exception.ErrSessionNilBroker)
}

func TestSessionBindsClientCode(t *testing.T) {
	broker := &stubBroker{}
	s, err := NewSession("Alice", "C1", broker)
	require.NoError(t, err)

	_, err = s.OrderBook(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "C1", broker.lastClientCode)

	_, err = s.CancelOrder(t.Context(), "ORD-9")
	require.NoError(t, err)
	assert.Equal(t, "ORD-9", broker.lastOrderID)
	assert.Equal(t, "C1", broker.lastClientCode)
}

func TestDirectoryRegisterLookupRemove(t *testing.T) {
	dir := NewDirectory()
	broker := &stubBroker{}

	alice, err := NewSession("Alice", "C1", broker)
	require.NoError(t, err)
	bob, err := NewSession("Bob", "C2", broker)
	require.NoError(t, err)

	dir.Register(alice)
	dir.Register(bob)
	assert.Equal(t, 2, dir.Len())

	got, ok := dir.ByUserID("C1")
	require.True(t, ok)
	assert.Equal(t, "Alice", got.Name())

	got, ok = dir.ByName("Bob")
	require.True(t, ok)
	assert.Equal(t, "C2", got.UserID())

	_, ok = dir.ByUserID("C9")
	assert.False(t, ok)

	dir.Remove("C1")
	assert.Equal(t, 1, dir.Len())
	_, ok = dir.ByUserID("C1")
	assert.False(t, ok)
	_, ok = dir.ByName("Alice")
	assert.False(t, ok)
}

func TestDirectoryRegisterReplaces(t *testing.T) {
	dir := NewDirectory()

	first, err := NewSession("Alice", "C1", &stubBroker{})
	require.NoError(t, err)
	second, err := NewSession("Alice", "C1", &stubBroker{})
	require.NoError(t, err)

	dir.Register(first)
	dir.Register(second)
	assert.Equal(t, 1, dir.Len())

	got, ok := dir.ByUserID("C1")
	require.True(t, ok)
	assert.Same(t, second, got)
}
