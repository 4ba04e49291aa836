package object

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Archiver writes generated documents as JSON under generations/<kind>/<id>.json.
type Archiver struct {
	store ObjectStore
}

// NewArchiver returns an Archiver; a nil store makes every call a no-op.
func NewArchiver(store ObjectStore) *Archiver {
	return &Archiver{store: store}
}

// Archive stores doc and returns its key.
func (a *Archiver) Archive(ctx context.Context, kind, id string, doc any) (string, error) {
	if a == nil || a.store == nil {
		return "", nil
	}
	key, err := Key("generations", kind, id+".json")
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", kind, err)
	}
	if _, err := a.store.SaveWithKey(ctx, key, "application/json", bytes.NewReader(payload)); err != nil {
		return "", err
	}
	return key, nil
}
