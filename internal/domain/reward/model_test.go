package reward

import (
	"testing"
	"time"
)

func TestRedemptionStatus_CanTransitionTo(t *testing.T) {
	allowed := []struct{ from, to RedemptionStatus }{
		{StatusPending, StatusProcessing},
		{StatusPending, StatusCompleted},
		{StatusPending, StatusFailed},
		{StatusPending, StatusCancelled},
		{StatusProcessing, StatusCompleted},
		{StatusProcessing, StatusFailed},
		{StatusProcessing, StatusCancelled},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to RedemptionStatus }{
		{StatusProcessing, StatusPending},
		{StatusCompleted, StatusProcessing},
		{StatusCompleted, StatusFailed},
		{StatusFailed, StatusCompleted},
		{StatusCancelled, StatusPending},
		{StatusPending, StatusPending},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestReward_ExpiredAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	open := Reward{}
	if open.ExpiredAt(now) {
		t.Fatal("reward without expiry should never expire")
	}

	past := now.Add(-time.Hour)
	expired := Reward{ExpiresAt: &past}
	if !expired.ExpiredAt(now) {
		t.Fatal("reward with past expiry should be expired")
	}

	future := now.Add(time.Hour)
	live := Reward{ExpiresAt: &future}
	if live.ExpiredAt(now) {
		t.Fatal("reward with future expiry should not be expired")
	}
}
