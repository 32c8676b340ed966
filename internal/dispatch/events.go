package dispatch

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ordena-app/ordena-backend/pkg/db/models"
	"github.com/ordena-app/ordena-backend/pkg/enums"
)

// DocumentEvent is the change-feed envelope published for every document write
// the engine observes. Before is empty on creates; both snapshots are present
// on updates.
type DocumentEvent struct {
	EventID    string                   `json:"eventId"`
	Collection enums.DocumentCollection `json:"collection"`
	Kind       enums.DocumentEventKind  `json:"kind"`
	OccurredAt time.Time                `json:"occurredAt"`
	Before     json.RawMessage          `json:"before,omitempty"`
	After      json.RawMessage          `json:"after,omitempty"`
}

func decodeOrder(raw json.RawMessage) (*models.Order, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("order snapshot missing")
	}
	var order models.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decode order snapshot: %w", err)
	}
	return &order, nil
}

func decodeBusiness(raw json.RawMessage) (*models.Business, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("business snapshot missing")
	}
	var business models.Business
	if err := json.Unmarshal(raw, &business); err != nil {
		return nil, fmt.Errorf("decode business snapshot: %w", err)
	}
	return &business, nil
}

func decodeCheckoutProgress(raw json.RawMessage) (*models.CheckoutProgress, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("checkout snapshot missing")
	}
	var progress models.CheckoutProgress
	if err := json.Unmarshal(raw, &progress); err != nil {
		return nil, fmt.Errorf("decode checkout snapshot: %w", err)
	}
	return &progress, nil
}
