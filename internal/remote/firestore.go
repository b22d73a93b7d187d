package remote

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore implements Store over a Cloud Firestore client.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore wraps an existing Firestore client.
func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

// Get retrieves a single document.
func (f *Firestore) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	snap, err := f.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return encodeData(snap.Data())
}

// Set writes a document under an explicit id, replacing any previous
// contents.
func (f *Firestore) Set(ctx context.Context, collection, id string, doc json.RawMessage) error {
	data, err := decodeDoc(doc)
	if err != nil {
		return err
	}
	if _, err := f.client.Collection(collection).Doc(id).Set(ctx, data); err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}
	return nil
}

// Add writes a document under a store-issued id and returns that id. The
// id is written into the document itself so reads carry it.
func (f *Firestore) Add(ctx context.Context, collection string, doc json.RawMessage) (string, error) {
	data, err := decodeDoc(doc)
	if err != nil {
		return "", err
	}

	ref := f.client.Collection(collection).NewDoc()
	data["id"] = ref.ID
	if _, err := ref.Set(ctx, data); err != nil {
		return "", fmt.Errorf("failed to add document: %w", err)
	}
	return ref.ID, nil
}

// Delete removes a document. Firestore treats deleting an absent
// document as success, matching the idempotence contract.
func (f *Firestore) Delete(ctx context.Context, collection, id string) error {
	if _, err := f.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// ListOwned returns every document in collection whose ownerId equals
// ownerID. No OrderBy clause: ordering is a client-side concern.
func (f *Firestore) ListOwned(ctx context.Context, collection, ownerID string) ([]json.RawMessage, error) {
	iter := f.client.Collection(collection).Where("ownerId", "==", ownerID).Documents(ctx)
	defer iter.Stop()

	var docs []json.RawMessage
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate documents: %w", err)
		}

		doc, err := encodeData(snap.Data())
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func decodeDoc(doc json.RawMessage) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal(doc, &data); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return data, nil
}

func encodeData(data map[string]any) (json.RawMessage, error) {
	doc, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return doc, nil
}
