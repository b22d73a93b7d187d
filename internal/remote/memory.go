package remote

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store used in tests and offline development
// runs. SetFailing simulates a network outage: every operation returns
// ErrUnavailable until the flag is cleared.
type Memory struct {
	mu      sync.Mutex
	docs    map[string]map[string]json.RawMessage
	failing bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string]json.RawMessage)}
}

// SetFailing toggles simulated unavailability.
func (m *Memory) SetFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = failing
}

func (m *Memory) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, ErrUnavailable
	}

	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (m *Memory) Set(ctx context.Context, collection, id string, doc json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return ErrUnavailable
	}

	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]json.RawMessage)
	}
	m.docs[collection][id] = cloneDoc(doc)
	return nil
}

func (m *Memory) Add(ctx context.Context, collection string, doc json.RawMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return "", ErrUnavailable
	}

	id := uuid.NewString()

	var data map[string]any
	if err := json.Unmarshal(doc, &data); err != nil {
		return "", err
	}
	data["id"] = id
	stored, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]json.RawMessage)
	}
	m.docs[collection][id] = stored
	return id, nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return ErrUnavailable
	}

	delete(m.docs[collection], id)
	return nil
}

func (m *Memory) ListOwned(ctx context.Context, collection, ownerID string) ([]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, ErrUnavailable
	}

	var docs []json.RawMessage
	for _, doc := range m.docs[collection] {
		var probe struct {
			OwnerID string `json:"ownerId"`
		}
		if err := json.Unmarshal(doc, &probe); err != nil {
			continue
		}
		if probe.OwnerID == ownerID {
			docs = append(docs, cloneDoc(doc))
		}
	}
	return docs, nil
}

func cloneDoc(doc json.RawMessage) json.RawMessage {
	out := make(json.RawMessage, len(doc))
	copy(out, doc)
	return out
}
