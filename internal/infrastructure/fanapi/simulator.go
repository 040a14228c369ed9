package fanapi

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"
)

// Simulator stands in for the aggregator when FANAPI_ENABLED is off.
// Balances are a pure function of the team, the connected account and
// the current day, so repeated syncs see a slow deterministic accrual
// instead of random jitter.
type Simulator struct {
	now func() time.Time
}

func NewSimulator() *Simulator {
	return &Simulator{now: time.Now}
}

var simulatorEpoch = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

func (s *Simulator) FetchPointsBalance(_ context.Context, teamID string, credentials map[string]any) (int, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return 0, fmt.Errorf("team id is required")
	}

	seed := fnv.New64a()
	_, _ = seed.Write([]byte(teamID))
	_, _ = seed.Write([]byte{0})
	_, _ = seed.Write([]byte(accountRef(credentials)))
	sum := seed.Sum64()

	base := int(sum % 4000)
	dailyRate := int(sum>>32%40) + 5

	days := int(s.now().UTC().Sub(simulatorEpoch).Hours() / 24)
	if days < 0 {
		days = 0
	}

	return base + days*dailyRate, nil
}

func accountRef(credentials map[string]any) string {
	for _, key := range []string{"account_ref", "account_id", "email", "username"} {
		if value, ok := credentials[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.ToLower(strings.TrimSpace(value))
		}
	}
	return "anonymous"
}
