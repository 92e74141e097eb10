// internal/league/logic.go
package league

import (
	"fmt"
	"strconv"
)

const kickoffLayout = "Mon 02 Jan 2006"

// Fixture returns the "Home vs Away" label shown on the match list.
func (m *Match) Fixture() string {
	return fmt.Sprintf("%s vs %s", m.Home.Name, m.Away.Name)
}

// Kickoff formats the match date for display.
func (m *Match) Kickoff() string {
	return m.Date.Format(kickoffLayout)
}

// PredictPath is the proxy route the page calls for this match.
func (m *Match) PredictPath() string {
	return "/api/predict/" + strconv.Itoa(m.ID)
}
