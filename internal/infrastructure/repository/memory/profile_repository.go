package memory

import (
	"context"
	"strings"

	"github.com/pointsrally/pointsrally/internal/domain/profile"
)

type ProfileRepository struct {
	store *Store
}

func (r *ProfileRepository) GetByID(_ context.Context, userID string) (profile.Profile, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.profiles[userID]
	return p, ok, nil
}

func (r *ProfileRepository) GetByEmail(_ context.Context, email string) (profile.Profile, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, p := range r.store.profiles {
		if strings.ToLower(p.Email) == email {
			return p, true, nil
		}
	}

	return profile.Profile{}, false, nil
}

func (r *ProfileRepository) Create(_ context.Context, p profile.Profile) (profile.Profile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := p.Validate(); err != nil {
		return profile.Profile{}, err
	}
	if existing, ok := r.store.profiles[p.ID]; ok {
		return existing, nil
	}

	r.store.profiles[p.ID] = p
	return p, nil
}

func (r *ProfileRepository) Update(_ context.Context, userID string, update profile.Update) (profile.Profile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.profiles[userID]
	if !ok {
		return profile.Profile{}, errProfileMissing(userID)
	}

	if update.DisplayName != nil {
		p.DisplayName = *update.DisplayName
	}
	if update.PhotoURL != nil {
		p.PhotoURL = *update.PhotoURL
	}
	if update.Bio != nil {
		p.Bio = *update.Bio
	}
	if update.Preferences != nil {
		p.Preferences = update.Preferences
	}
	p.UpdatedAt = r.store.now().UTC()

	r.store.profiles[userID] = p
	return p, nil
}

// Delete removes the profile and cascades to connections, transactions
// and redemptions, matching the postgres foreign-key cascade.
func (r *ProfileRepository) Delete(_ context.Context, userID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.profiles[userID]; !ok {
		return false, nil
	}

	delete(r.store.profiles, userID)
	delete(r.store.connections, userID)

	transactions := r.store.transactions[:0]
	for _, item := range r.store.transactions {
		if item.UserID != userID {
			transactions = append(transactions, item)
		}
	}
	r.store.transactions = transactions

	redemptions := r.store.redemptions[:0]
	for _, item := range r.store.redemptions {
		if item.UserID != userID {
			redemptions = append(redemptions, item)
		}
	}
	r.store.redemptions = redemptions

	return true, nil
}
