package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// AccountSnapshot is the serialized account state used to carry a paper
// trading session across process restarts.
type AccountSnapshot struct {
	SavedAt        time.Time         `json:"saved_at"`
	InitialCapital float64           `json:"initial_capital"`
	Cash           float64           `json:"cash"`
	Position       *PositionSnapshot `json:"position,omitempty"`
	OpensByDay     map[string]int    `json:"opens_by_day,omitempty"`
}

// PositionSnapshot is the open position inside an AccountSnapshot.
type PositionSnapshot struct {
	Side       string    `json:"side"`
	Quantity   int       `json:"quantity"`
	EntryPrice float64   `json:"entry_price"`
	EntryTime  time.Time `json:"entry_time"`
	StopLoss   *float64  `json:"stop_loss,omitempty"`

	// commission already charged for the open leg, so the eventual
	// Trade reports the full round-trip commission after a restart
	OpenCommission float64 `json:"open_commission"`
}

func SaveAccountSnapshot(path string, s AccountSnapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal account snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write account snapshot: %w", err)
	}
	return nil
}

func LoadAccountSnapshot(path string) (AccountSnapshot, error) {
	var s AccountSnapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read account snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse account snapshot: %w", err)
	}
	return s, nil
}
