package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truekea/truekea-api/internal/carbon"
	"github.com/truekea/truekea-api/internal/config"
	"github.com/truekea/truekea-api/internal/model"
	"github.com/truekea/truekea-api/internal/repository"
	"github.com/truekea/truekea-api/internal/utils"
)

// In-memory fakes for the store interfaces.

type fakeUsers struct{ users []model.User }

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

type fakeCategories struct{ cats []model.Category }

func (f *fakeCategories) ListAll(context.Context) ([]model.Category, error) {
	return f.cats, nil
}

type fakeItems struct{ items []model.Item }

func (f *fakeItems) ListByCategoryIDs(_ context.Context, ids []uint64) ([]model.Item, error) {
	want := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Item
	for _, it := range f.items {
		if want[it.CategoryID] {
			out = append(out, it)
		}
	}
	return out, nil
}

type fakePrefs struct{ byUser map[uint64][]uint64 }

func (f *fakePrefs) CategoryIDsByUser(_ context.Context, userID uint64) ([]uint64, error) {
	return f.byUser[userID], nil
}

type fakeTokens struct{ active map[string]uint64 }

func newFakeTokens() *fakeTokens { return &fakeTokens{active: map[string]uint64{}} }

func (f *fakeTokens) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
	f.active[hash] = userID
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	uid, ok := f.active[hash]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return uid, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	delete(f.active, hash)
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	for h, uid := range f.active {
		if uid == userID {
			delete(f.active, h)
		}
	}
	return nil
}

func testConfig() config.Config {
	return config.Config{
		AccessSecret:   "access-secret",
		RefreshSecret:  "refresh-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
		BcryptCost:     4,
	}
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := utils.HashPassword(plain, 4)
	require.NoError(t, err)
	return h
}

// newTestFlow wires an AuthFlow over in-memory stores: two categories
// (Books at 2 kg, Tech at 15 kg), one item in each, and a single active
// user whose preferences are configurable per test.
func newTestFlow(t *testing.T, prefIDs []uint64) (*AuthFlow, *fakeTokens) {
	t.Helper()

	cats := &fakeCategories{cats: []model.Category{
		{ID: 1, Name: "Books", CO2: 2},
		{ID: 2, Name: "Tech", CO2: 15},
	}}
	items := &fakeItems{items: []model.Item{
		{ID: 10, Title: "Paperback novel", CategoryID: 1, OwnerID: 99, Value: 5},
		{ID: 11, Title: "Used laptop", CategoryID: 2, OwnerID: 98, Value: 120},
	}}
	users := &fakeUsers{users: []model.User{{
		ID:           1,
		Name:         "Ana",
		Email:        "ana@example.com",
		PasswordHash: mustHash(t, "secret123"),
		RoleID:       model.RoleUserID,
		Status:       model.StatusActive,
	}}}
	prefs := &fakePrefs{byUser: map[uint64][]uint64{}}
	if len(prefIDs) > 0 {
		prefs.byUser[1] = prefIDs
	}

	agg := carbon.NewAggregator(cats)
	require.NoError(t, agg.Reload(context.Background()))

	tokens := newFakeTokens()
	return NewAuthFlow(testConfig(), users, cats, items, prefs, tokens, agg), tokens
}

func TestAuthenticateWithPreferences(t *testing.T) {
	flow, tokens := newTestFlow(t, []uint64{1, 2})

	res, err := flow.Authenticate(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), res.User.ID)
	assert.Equal(t, model.StatusActive, res.User.Status)
	assert.NotEmpty(t, res.Access.Token)
	assert.NotEmpty(t, res.Refresh.Token)

	// The access token's subject is the authenticated user.
	sub, _, err := utils.VerifyToken(testConfig().AccessSecret, res.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, sub)

	// Preferences are set, so no onboarding fallback is offered.
	assert.Empty(t, res.FallbackCategories)

	require.Len(t, res.InitialItems, 2)
	byID := map[uint64]FeedEntry{}
	for _, e := range res.InitialItems {
		byID[e.ItemID] = e
		// Per-item semantics: no quantity multiplier.
		assert.Equal(t, e.CO2Unit, e.CO2Total)
	}
	assert.Equal(t, "Books", byID[10].CategoryName)
	assert.Equal(t, 2.0, byID[10].CO2Unit)
	assert.Equal(t, "Tech", byID[11].CategoryName)
	assert.Equal(t, 15.0, byID[11].CO2Unit)

	assert.Equal(t, 17.0, res.CO2.TotalCO2)
	assert.Equal(t, 0.77, res.CO2.TreesNeeded)
	assert.Equal(t, 85.0, res.CO2.CarKilometers)
	assert.Equal(t, 1700.0, res.CO2.LightBulbHours)
	assert.Equal(t, 68.0, res.CO2.FlightMinutes)

	// The refresh token is stored hashed, never raw.
	_, raw := tokens.active[res.Refresh.Token]
	assert.False(t, raw)
	_, hashed := tokens.active[utils.HashRefreshRaw(res.Refresh.Token)]
	assert.True(t, hashed)
}

func TestAuthenticateNoPreferences(t *testing.T) {
	flow, _ := newTestFlow(t, nil)

	res, err := flow.Authenticate(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)

	// Without preferences the whole catalog is offered for onboarding and
	// also seeds the feed.
	require.Len(t, res.FallbackCategories, 2)
	assert.Equal(t, "Books", res.FallbackCategories[0].Name)
	assert.Equal(t, "Tech", res.FallbackCategories[1].Name)
	assert.Len(t, res.InitialItems, 2)
	assert.Equal(t, 17.0, res.CO2.TotalCO2)
}

func TestAuthenticateRejections(t *testing.T) {
	flow, _ := newTestFlow(t, nil)
	ctx := context.Background()

	_, err := flow.Authenticate(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = flow.Authenticate(ctx, "ana@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	flow, _ := newTestFlow(t, nil)
	flow.users.(*fakeUsers).users[0].Status = model.StatusInactive

	// Deactivated accounts fail identically to bad passwords.
	_, err := flow.Authenticate(context.Background(), "ana@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotation(t *testing.T) {
	flow, tokens := newTestFlow(t, nil)
	ctx := context.Background()

	res, err := flow.Authenticate(ctx, "ana@example.com", "secret123")
	require.NoError(t, err)

	pair, err := flow.Refresh(ctx, res.Refresh.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access.Token)
	assert.NotEqual(t, res.Refresh.Token, pair.Refresh.Token)

	// The consumed token is revoked; replaying it must fail.
	_, err = flow.Refresh(ctx, res.Refresh.Token)
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	// The rotated token is live.
	_, ok := tokens.active[utils.HashRefreshRaw(pair.Refresh.Token)]
	assert.True(t, ok)
}

func TestRefreshRejectsForeignToken(t *testing.T) {
	flow, _ := newTestFlow(t, nil)
	ctx := context.Background()

	// Signed with the right secret but never stored server-side.
	stray, err := utils.NewRefreshToken(testConfig().RefreshSecret, 1, 30)
	require.NoError(t, err)
	_, err = flow.Refresh(ctx, stray.Token)
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	// Signed with the wrong secret entirely.
	forged, err := utils.NewRefreshToken("other-secret", 1, 30)
	require.NoError(t, err)
	_, err = flow.Refresh(ctx, forged.Token)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefreshExpired(t *testing.T) {
	flow, tokens := newTestFlow(t, nil)
	ctx := context.Background()

	expired, err := utils.NewRefreshToken(testConfig().RefreshSecret, 1, -1)
	require.NoError(t, err)
	tokens.active[utils.HashRefreshRaw(expired.Token)] = 1

	_, err = flow.Refresh(ctx, expired.Token)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestLogout(t *testing.T) {
	flow, tokens := newTestFlow(t, nil)
	ctx := context.Background()

	res, err := flow.Authenticate(ctx, "ana@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, flow.Logout(ctx, res.Refresh.Token))
	assert.Empty(t, tokens.active)

	// Logging out twice with the same token fails.
	assert.ErrorIs(t, flow.Logout(ctx, res.Refresh.Token), ErrInvalidRefresh)
}

func TestLogoutAll(t *testing.T) {
	flow, tokens := newTestFlow(t, nil)
	ctx := context.Background()

	// Two live sessions for the same user.
	_, err := flow.Authenticate(ctx, "ana@example.com", "secret123")
	require.NoError(t, err)
	_, err = flow.Authenticate(ctx, "ana@example.com", "secret123")
	require.NoError(t, err)
	require.Len(t, tokens.active, 2)

	require.NoError(t, flow.LogoutAll(ctx, 1))
	assert.Empty(t, tokens.active)
}
