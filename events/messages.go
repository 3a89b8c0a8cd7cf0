package events

import (
	"encoding/json"
	"time"

	"github.com/warp/budget-engine/budget"
)

// PeriodArchivedMessage announces a freshly frozen period. It carries only
// the snapshot identity and headline figures; consumers fetch the frozen
// lines from the API when they need detail.
type PeriodArchivedMessage struct {
	BudgetID  string    `json:"budget_id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	LineCount int       `json:"line_count"`
	Total     int64     `json:"total"` // Signed sum in minor units
	Timestamp time.Time `json:"timestamp"`
}

// NewPeriodArchivedMessage builds the announcement for an archived period.
func NewPeriodArchivedMessage(ap *budget.ArchivedPeriod) *PeriodArchivedMessage {
	return &PeriodArchivedMessage{
		BudgetID:  string(ap.BudgetID),
		Year:      ap.Period.Year,
		Month:     int(ap.Period.Month),
		LineCount: len(ap.Lines),
		Total:     int64(ap.Total()),
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *PeriodArchivedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PeriodArchivedMessageFromJSON creates a message from JSON bytes.
func PeriodArchivedMessageFromJSON(data []byte) (*PeriodArchivedMessage, error) {
	var msg PeriodArchivedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
