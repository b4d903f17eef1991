// Package service contains the authentication workflow: credential
// verification, token issuance and assembly of the personalized initial
// feed with its CO2 breakdown.  The workflow talks to storage through
// small interfaces so tests can run against in-memory fakes.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/truekea/truekea-api/internal/carbon"
	"github.com/truekea/truekea-api/internal/config"
	"github.com/truekea/truekea-api/internal/model"
	"github.com/truekea/truekea-api/internal/repository"
	"github.com/truekea/truekea-api/internal/utils"
)

// Domain errors.  ErrInvalidCredentials covers both unknown email and
// wrong password so responses never leak whether an account exists.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)

// UserStore is the slice of the user repository the workflow needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// CategoryStore lists the full category catalog.
type CategoryStore interface {
	ListAll(ctx context.Context) ([]model.Category, error)
}

// ItemStore fetches items for a set of category ids.
type ItemStore interface {
	ListByCategoryIDs(ctx context.Context, categoryIDs []uint64) ([]model.Item, error)
}

// PreferenceStore returns a user's preferred category ids.
type PreferenceStore interface {
	CategoryIDsByUser(ctx context.Context, userID uint64) ([]uint64, error)
}

// TokenStore persists refresh token hashes for server-side revocation.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// UserSummary is the sanitized user view returned at login.  It never
// carries the password hash.
type UserSummary struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	RoleID uint8  `json:"role_id"`
	Status string `json:"status"`
}

// FeedEntry is one item of the initial feed with its CO2 breakdown.
// CO2Total equals CO2Unit here: the login feed uses the per-item
// footprint with no quantity multiplier.
type FeedEntry struct {
	ItemID       uint64  `json:"item_id"`
	Title        string  `json:"title"`
	CategoryID   uint64  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	CO2Unit      float64 `json:"co2_unit"`
	CO2Total     float64 `json:"co2_total"`
}

// CategoryOption is a catalog row offered for onboarding when the user
// has no stored preferences.
type CategoryOption struct {
	ID   uint64  `json:"id"`
	Name string  `json:"name"`
	CO2  float64 `json:"co2"`
}

// LoginResult is the composite response of a successful authentication.
type LoginResult struct {
	User               UserSummary          `json:"user"`
	Access             utils.Token          `json:"-"`
	Refresh            utils.Token          `json:"-"`
	FallbackCategories []CategoryOption     `json:"fallback_categories"`
	InitialItems       []FeedEntry          `json:"initial_items"`
	CO2                carbon.Equivalencies `json:"co2_summary"`
}

// TokenPair is the result of a refresh rotation.
type TokenPair struct {
	Access  utils.Token
	Refresh utils.Token
}

// AuthFlow orchestrates credential checks, token issuance and feed
// seeding.  It holds no mutable state of its own; the carbon aggregator
// snapshot is read-only from this side.
type AuthFlow struct {
	cfg    config.Config
	users  UserStore
	cats   CategoryStore
	items  ItemStore
	prefs  PreferenceStore
	tokens TokenStore
	agg    *carbon.Aggregator
}

// NewAuthFlow wires the workflow with its collaborators.
func NewAuthFlow(cfg config.Config, users UserStore, cats CategoryStore, items ItemStore, prefs PreferenceStore, tokens TokenStore, agg *carbon.Aggregator) *AuthFlow {
	return &AuthFlow{cfg: cfg, users: users, cats: cats, items: items, prefs: prefs, tokens: tokens, agg: agg}
}

// Authenticate verifies credentials, issues an access/refresh pair and
// assembles the initial personalized feed.
//
// Preference policy: when the user has no stored preferences, the full
// category catalog is returned as fallback (for onboarding) and all of
// its category ids seed the feed; otherwise the preference ids alone
// filter items and the fallback list stays empty.  Per-item CO2 comes
// from the aggregator snapshot; unresolved category names contribute 0.
func (f *AuthFlow) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := f.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	// bcrypt comparison is constant-time; inactive accounts fail the same
	// way as bad passwords so account state cannot be probed.
	if !utils.VerifyPassword(u.PasswordHash, password) || u.Status != model.StatusActive {
		return nil, ErrInvalidCredentials
	}

	pair, err := f.issuePair(ctx, u.ID, u.RoleID)
	if err != nil {
		return nil, err
	}

	prefIDs, err := f.prefs.CategoryIDsByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	var (
		fallback []CategoryOption
		feedIDs  []uint64
		nameByID map[uint64]string
	)
	if len(prefIDs) == 0 {
		// No preferences: offer the whole catalog and seed from it.
		cats, err := f.cats.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		fallback = make([]CategoryOption, 0, len(cats))
		nameByID = make(map[uint64]string, len(cats))
		for _, c := range cats {
			fallback = append(fallback, CategoryOption{ID: c.ID, Name: c.Name, CO2: c.CO2})
			nameByID[c.ID] = c.Name
			feedIDs = append(feedIDs, c.ID)
		}
	} else {
		feedIDs = prefIDs
		snap := f.agg.Snapshot()
		nameByID = make(map[uint64]string)
		for _, e := range snap.Entries() {
			nameByID[e.CategoryID] = e.Name
		}
	}

	items, err := f.items.ListByCategoryIDs(ctx, feedIDs)
	if err != nil {
		return nil, err
	}

	snap := f.agg.Snapshot()
	entries := make([]FeedEntry, 0, len(items))
	var total float64
	for _, it := range items {
		name := nameByID[it.CategoryID] // "" when unresolved
		unit := snap.PerItemFootprint(name)
		entries = append(entries, FeedEntry{
			ItemID:       it.ID,
			Title:        it.Title,
			CategoryID:   it.CategoryID,
			CategoryName: name,
			CO2Unit:      unit,
			CO2Total:     unit, // per-item semantics, no quantity multiplier
		})
		total += unit
	}

	return &LoginResult{
		User: UserSummary{
			ID:     u.ID,
			Name:   u.Name,
			Email:  u.Email,
			RoleID: u.RoleID,
			Status: u.Status,
		},
		Access:             pair.Access,
		Refresh:            pair.Refresh,
		FallbackCategories: fallback,
		InitialItems:       entries,
		CO2:                carbon.EquivalenciesFor(total),
	}, nil
}

// Refresh validates a refresh token by signature, expiry and the stored
// hash, then rotates it: the old token is revoked and a brand-new pair
// is issued for the same subject.
func (f *AuthFlow) Refresh(ctx context.Context, raw string) (*TokenPair, error) {
	uid, _, err := utils.VerifyToken(f.cfg.RefreshSecret, raw)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	hash := utils.HashRefreshRaw(raw)
	storedUID, err := f.tokens.ValidateRefresh(ctx, hash)
	if err != nil || storedUID != uid {
		return nil, ErrInvalidRefresh
	}
	if err := f.tokens.RevokeByHash(ctx, hash); err != nil {
		return nil, err
	}
	u, err := f.users.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return f.issuePair(ctx, u.ID, u.RoleID)
}

// Logout revokes a single session identified by its refresh token.
func (f *AuthFlow) Logout(ctx context.Context, raw string) error {
	hash := utils.HashRefreshRaw(raw)
	if _, err := f.tokens.ValidateRefresh(ctx, hash); err != nil {
		return ErrInvalidRefresh
	}
	return f.tokens.RevokeByHash(ctx, hash)
}

// LogoutAll revokes every active session of a user.
func (f *AuthFlow) LogoutAll(ctx context.Context, userID uint64) error {
	return f.tokens.RevokeAllForUser(ctx, userID)
}

func (f *AuthFlow) issuePair(ctx context.Context, userID uint64, roleID uint8) (*TokenPair, error) {
	access, err := utils.NewAccessToken(f.cfg.AccessSecret, userID, roleName(roleID), f.cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(f.cfg.RefreshSecret, userID, f.cfg.RefreshTTLDays)
	if err != nil {
		return nil, err
	}
	if err := f.tokens.StoreRefresh(ctx, userID, utils.HashRefreshRaw(refresh.Token), refresh.Exp); err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// roleName maps the two seeded role ids to the claim value carried in
// access tokens.  Unknown ids fall back to USER.
func roleName(roleID uint8) string {
	if roleID == model.RoleAdminID {
		return model.RoleAdmin
	}
	return model.RoleUser
}
