package memory

import (
	"time"

	"github.com/pointsrally/pointsrally/internal/domain/reward"
	"github.com/pointsrally/pointsrally/internal/domain/team"
)

func intPtr(v int) *int { return &v }

func SeedTeams() []team.Team {
	createdAt := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	return []team.Team{
		{ID: "nba-lal", Name: "Los Angeles Lakers", Code: "LAL", Sport: team.SportNBA, City: "Los Angeles", PrimaryColor: "#552583", SecondaryColor: "#FDB927", CreatedAt: createdAt},
		{ID: "nba-bos", Name: "Boston Celtics", Code: "BOS", Sport: team.SportNBA, City: "Boston", PrimaryColor: "#007A33", SecondaryColor: "#BA9653", CreatedAt: createdAt},
		{ID: "nba-gsw", Name: "Golden State Warriors", Code: "GSW", Sport: team.SportNBA, City: "San Francisco", PrimaryColor: "#1D428A", SecondaryColor: "#FFC72C", CreatedAt: createdAt},
		{ID: "nfl-kc", Name: "Kansas City Chiefs", Code: "KC", Sport: team.SportNFL, City: "Kansas City", PrimaryColor: "#E31837", SecondaryColor: "#FFB81C", CreatedAt: createdAt},
		{ID: "nfl-phi", Name: "Philadelphia Eagles", Code: "PHI", Sport: team.SportNFL, City: "Philadelphia", PrimaryColor: "#004C54", SecondaryColor: "#A5ACAF", CreatedAt: createdAt},
		{ID: "mlb-nyy", Name: "New York Yankees", Code: "NYY", Sport: team.SportMLB, City: "New York", PrimaryColor: "#003087", SecondaryColor: "#E4002C", CreatedAt: createdAt},
		{ID: "mlb-lad", Name: "Los Angeles Dodgers", Code: "LAD", Sport: team.SportMLB, City: "Los Angeles", PrimaryColor: "#005A9C", SecondaryColor: "#A5ACAF", CreatedAt: createdAt},
		{ID: "nhl-tor", Name: "Toronto Maple Leafs", Code: "TOR", Sport: team.SportNHL, City: "Toronto", PrimaryColor: "#00205B", SecondaryColor: "#FFFFFF", CreatedAt: createdAt},
		{ID: "mls-mia", Name: "Inter Miami CF", Code: "MIA", Sport: team.SportMLS, City: "Miami", PrimaryColor: "#F7B5CD", SecondaryColor: "#231F20", CreatedAt: createdAt},
	}
}

func SeedRewards() []reward.Reward {
	createdAt := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	return []reward.Reward{
		{ID: "rw-cap", Name: "Team Snapback Cap", Description: "Embroidered snapback in team colors", Category: "merchandise", PointsCost: 500, Availability: reward.AvailabilityAvailable, CreatedAt: createdAt},
		{ID: "rw-jersey", TeamID: "nba-lal", Name: "Lakers Replica Jersey", Description: "Official replica home jersey", Category: "merchandise", PointsCost: 2500, Availability: reward.AvailabilityLimited, Stock: intPtr(25), CreatedAt: createdAt},
		{ID: "rw-tickets", TeamID: "nba-bos", Name: "Celtics Game Tickets", Description: "Pair of lower-bowl tickets", Category: "experiences", PointsCost: 7500, Availability: reward.AvailabilityLimited, Stock: intPtr(4), CreatedAt: createdAt},
		{ID: "rw-meet", TeamID: "nfl-kc", Name: "Chiefs Meet and Greet", Description: "Pre-game sideline meet and greet", Category: "experiences", PointsCost: 12000, Availability: reward.AvailabilityLimited, Stock: intPtr(2), CreatedAt: createdAt},
		{ID: "rw-giftcard", Name: "Stadium Concessions Credit", Description: "Fifty dollar concession credit", Category: "giftcards", PointsCost: 1000, Availability: reward.AvailabilityAvailable, CreatedAt: createdAt},
		{ID: "rw-scarf", TeamID: "mls-mia", Name: "Inter Miami Supporter Scarf", Description: "Limited supporter section scarf", Category: "merchandise", PointsCost: 800, Availability: reward.AvailabilitySoldOut, Stock: intPtr(0), CreatedAt: createdAt},
	}
}
