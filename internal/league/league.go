package league

import (
	"encoding/json"
	"time"
)

// UpcomingLimit caps how many fixtures the match list shows.
const UpcomingLimit = 10

// Team represents a club referenced by a fixture.
type Team struct {
	ID   int
	Name string
}

// Match represents an upcoming fixture between two teams.
type Match struct {
	ID         int
	Date       time.Time
	Home, Away *Team
}

// Prediction is the brain's answer for a single match. Payload is kept as
// received and never decoded.
type Prediction struct {
	Status  int
	Payload json.RawMessage
}
