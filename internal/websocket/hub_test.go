package websocket

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id          string
	workspaceID int32
	messages    [][]byte
	mu          sync.Mutex
	closed      bool
}

func newMockClient(id string, workspaceID int32) *mockClient {
	return &mockClient{
		id:          id,
		workspaceID: workspaceID,
		messages:    make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) WorkspaceID() int32 {
	return m.workspaceID
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func waitForMessages(t *testing.T, client *mockClient, count int) [][]byte {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if messages := client.GetMessages(); len(messages) >= count {
			return messages
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %d messages", count)
	return nil
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	client1 := newMockClient("client-1", 1)
	client2 := newMockClient("client-2", 1)
	client3 := newMockClient("client-3", 2)

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	assert.Equal(t, 2, hub.ClientCount(1))
	assert.Equal(t, 1, hub.ClientCount(2))
	assert.Equal(t, 0, hub.ClientCount(999))

	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount(1))

	hub.Unregister(client2)
	hub.Unregister(client3)
	assert.Equal(t, 0, hub.ClientCount(1))
	assert.Equal(t, 0, hub.ClientCount(2))
}

func TestHub_Broadcast_WorkspaceIsolation(t *testing.T) {
	hub := NewHub()

	client1a := newMockClient("client-1a", 1)
	client1b := newMockClient("client-1b", 1)
	client2 := newMockClient("client-2", 2)

	hub.Register(client1a)
	hub.Register(client1b)
	hub.Register(client2)

	event := BudgetCreated(map[string]interface{}{"id": 42})
	hub.Broadcast(1, event)

	messages1a := waitForMessages(t, client1a, 1)
	messages1b := waitForMessages(t, client1b, 1)

	var decoded Event
	require.NoError(t, json.Unmarshal(messages1a[0], &decoded))
	assert.Equal(t, "budget.created", decoded.Type)
	assert.Equal(t, EntityTypeBudget, decoded.Entity)
	assert.Len(t, messages1b, 1)

	// Workspace 2 must not receive workspace 1's events
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, client2.GetMessages())
}

func TestHub_Broadcast_EmptyWorkspace(t *testing.T) {
	hub := NewHub()

	// Broadcasting to a workspace with no clients must not panic
	hub.Broadcast(7, BudgetDeleted(map[string]interface{}{"id": 1}))
}

func TestHub_Publish_ImplementsEventPublisher(t *testing.T) {
	hub := NewHub()
	client := newMockClient("client-1", 1)
	hub.Register(client)

	var publisher EventPublisher = hub
	publisher.Publish(1, BudgetUpdated(map[string]interface{}{"id": 3}))

	messages := waitForMessages(t, client, 1)

	var decoded Event
	require.NoError(t, json.Unmarshal(messages[0], &decoded))
	assert.Equal(t, "budget.updated", decoded.Type)
}

func TestHub_ConcurrentRegisterBroadcast(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			client := newMockClient(string(rune('a'+n)), int32(n%3))
			hub.Register(client)
			hub.Broadcast(int32(n%3), BudgetCreated(map[string]interface{}{"n": n}))
			hub.Unregister(client)
		}(i)
	}
	wg.Wait()
}
