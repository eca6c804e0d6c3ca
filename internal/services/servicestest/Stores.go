package servicestest

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adhvyk/ar-studio/webserver/internal/models/asset"
	"github.com/adhvyk/ar-studio/webserver/internal/models/experience"
	"github.com/adhvyk/ar-studio/webserver/internal/models/scene"
	"github.com/adhvyk/ar-studio/webserver/internal/models/user"
)

// clock returns strictly increasing times so ordering by timestamp is deterministic.
type clock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur.IsZero() {
		c.cur = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

// Experiences mirrors experience.ExperienceManager.
type Experiences struct {
	mu    sync.Mutex
	clock clock
	items map[primitive.ObjectID]experience.Experience
}

func NewExperiences() *Experiences {
	return &Experiences{items: map[primitive.ObjectID]experience.Experience{}}
}

func (m *Experiences) CreateExperience(ctx context.Context, userID primitive.ObjectID, title, description string) (*experience.Experience, error) {
	if title == "" {
		return nil, experience.ErrTitleRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.now()
	exp := experience.Experience{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: description,
		UserID:      userID,
		Config:      scene.NewDocument(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.items[exp.ID] = exp
	return copyExperience(exp), nil
}

func (m *Experiences) GetExperience(ctx context.Context, id primitive.ObjectID) (*experience.Experience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.items[id]
	if !ok {
		return nil, experience.ErrExperienceNotFound
	}
	return copyExperience(exp), nil
}

func (m *Experiences) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]experience.Experience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]experience.Experience, 0)
	for _, exp := range m.items {
		if exp.UserID == userID {
			out = append(out, *copyExperience(exp))
		}
	}
	slices.SortFunc(out, func(a, b experience.Experience) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out, nil
}

func (m *Experiences) UpdateExperience(ctx context.Context, id primitive.ObjectID, update experience.Update) (*experience.Experience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.items[id]
	if !ok {
		return nil, experience.ErrExperienceNotFound
	}
	if update.Title != nil && *update.Title != "" {
		exp.Title = *update.Title
	}
	if update.Description != nil && *update.Description != "" {
		exp.Description = *update.Description
	}
	if update.Config != nil {
		exp.Config = scene.Document{Objects: slices.Clone(update.Config.Objects)}
	}
	exp.UpdatedAt = m.clock.now()
	m.items[id] = exp
	return copyExperience(exp), nil
}

func (m *Experiences) SetPublished(ctx context.Context, id primitive.ObjectID, published bool) (*experience.Experience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.items[id]
	if !ok {
		return nil, experience.ErrExperienceNotFound
	}
	exp.IsPublished = published
	exp.UpdatedAt = m.clock.now()
	m.items[id] = exp
	return copyExperience(exp), nil
}

func copyExperience(exp experience.Experience) *experience.Experience {
	exp.Config.Objects = slices.Clone(exp.Config.Objects)
	if exp.Config.Objects == nil {
		exp.Config.Objects = []scene.ObjectRecord{}
	}
	return &exp
}

// Users mirrors user.UserManager.
type Users struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]user.User
}

func NewUsers() *Users {
	return &Users{items: map[primitive.ObjectID]user.User{}}
}

// Add stores u as is, for seeding admins and other fixtures.
func (m *Users) Add(u *user.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.items[u.ID] = *u
}

func (m *Users) GenerateUser(ctx context.Context, name, email, password string) (*user.User, error) {
	if _, err := m.GetUserByEmail(ctx, email); err == nil {
		return nil, user.ErrEmailTaken
	}
	u := &user.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Role:      user.RoleUser,
		CreatedAt: time.Now().UTC(),
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	m.Add(u)
	return u, nil
}

func (m *Users) GetUserByID(ctx context.Context, userID primitive.ObjectID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (m *Users) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.items {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

// Assets mirrors asset.AssetManager.
type Assets struct {
	mu    sync.Mutex
	clock clock
	items map[primitive.ObjectID]asset.Asset
}

func NewAssets() *Assets {
	return &Assets{items: map[primitive.ObjectID]asset.Asset{}}
}

func (m *Assets) CreateAsset(ctx context.Context, a *asset.Asset) error {
	if !asset.IsValidType(a.Type) {
		return asset.ErrInvalidAssetType
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = primitive.NewObjectID()
	a.Status = asset.StatusPending
	a.CreatedAt = m.clock.now()
	m.items[a.ID] = *a
	return nil
}

func (m *Assets) GetAsset(ctx context.Context, id primitive.ObjectID) (*asset.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, asset.ErrAssetNotFound
	}
	return &a, nil
}

func (m *Assets) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]asset.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]asset.Asset, 0)
	for _, a := range m.items {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b asset.Asset) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return out, nil
}

func (m *Assets) DeleteAsset(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return asset.ErrAssetNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *Assets) SetStatusByKey(ctx context.Context, key, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.items {
		if a.Key == key {
			a.Status = status
			m.items[id] = a
			return nil
		}
	}
	return asset.ErrAssetNotFound
}

// Put stores a as is, for fixtures such as records without a key.
func (m *Assets) Put(a asset.Asset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	m.items[a.ID] = a
}
