package team

import (
	"fmt"
	"time"
)

// Sport enumerates the leagues whose teams can be connected.
type Sport string

const (
	SportNBA Sport = "NBA"
	SportNFL Sport = "NFL"
	SportMLB Sport = "MLB"
	SportNHL Sport = "NHL"
	SportMLS Sport = "MLS"
)

func (s Sport) Valid() bool {
	switch s {
	case SportNBA, SportNFL, SportMLB, SportNHL, SportMLS:
		return true
	default:
		return false
	}
}

// Team is a catalog entry for a real sports club.
type Team struct {
	ID             string
	Name           string
	Code           string
	Sport          Sport
	City           string
	LogoURL        string
	PrimaryColor   string
	SecondaryColor string
	CreatedAt      time.Time
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.Code == "" {
		return fmt.Errorf("team code is required")
	}
	if !t.Sport.Valid() {
		return fmt.Errorf("invalid sport %q", t.Sport)
	}

	return nil
}

// Connection links a user to a team fan account. One row per
// (user, team) pair; PointsBalance never goes negative.
type Connection struct {
	ID             string
	UserID         string
	TeamID         string
	PointsBalance  int
	ConnectedAt    time.Time
	LastSyncedAt   *time.Time
	APICredentials map[string]any
}

func (c Connection) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("connection user id is required")
	}
	if c.TeamID == "" {
		return fmt.Errorf("connection team id is required")
	}
	if c.PointsBalance < 0 {
		return fmt.Errorf("connection points balance cannot be negative")
	}

	return nil
}

// ConnectedTeam is a connection joined with its team catalog row, the
// shape list endpoints return.
type ConnectedTeam struct {
	Connection Connection
	Team       Team
}
