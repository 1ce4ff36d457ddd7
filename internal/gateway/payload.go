package gateway

import (
	"encoding/json"
	"fmt"
)

// DecodePayload unmarshals a successful JSON payload. A body that cannot be
// decoded is reported like any other failed exchange.
func DecodePayload(operation string, raw json.RawMessage, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return &RequestFailedError{
			Operation: operation,
			Status:    0,
			Message:   fmt.Sprintf("Error %s. Please try again.", operation),
			Err:       fmt.Errorf("decode %s response: %w", operation, err),
		}
	}
	return nil
}
