package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
)

// MemoryUserStore is an in-memory UserStore used by handler tests.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (s *MemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryUserStore) UpdateByID(_ context.Context, id primitive.ObjectID, upd UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Password != nil {
		u.Password = *upd.Password
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	s.users[id] = u
	return &u, nil
}

func (s *MemoryUserStore) FindAll(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID.Hex() < users[j].ID.Hex() })
	return users, nil
}

func (s *MemoryUserStore) IncrementPosts(_ context.Context, id primitive.ObjectID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Posts += delta
	s.users[id] = u
	return nil
}

type memoryPost struct {
	models.Post
	seq int64 // insertion order, tiebreaker for equal timestamps
}

// MemoryPostStore is an in-memory PostStore used by handler tests.
type MemoryPostStore struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]memoryPost
	seq   int64
}

func NewMemoryPostStore() *MemoryPostStore {
	return &MemoryPostStore{posts: make(map[primitive.ObjectID]memoryPost)}
}

func (s *MemoryPostStore) Create(_ context.Context, post *models.Post) error {
	if !models.ValidCategory(post.Category) {
		return ErrInvalidCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	now := time.Now().UnixMilli()
	post.CreatedAt = now
	post.UpdatedAt = now

	s.seq++
	s.posts[post.ID] = memoryPost{Post: *post, seq: s.seq}
	return nil
}

func (s *MemoryPostStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	post := p.Post
	return &post, nil
}

func (s *MemoryPostStore) FindAll(_ context.Context) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.collect(func(memoryPost) bool { return true }, func(a, b memoryPost) bool {
		if a.UpdatedAt != b.UpdatedAt {
			return a.UpdatedAt > b.UpdatedAt
		}
		return a.seq > b.seq
	}), nil
}

func (s *MemoryPostStore) FindByCreator(_ context.Context, creator primitive.ObjectID) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.collect(func(p memoryPost) bool { return p.Creator == creator }, byCreatedDesc), nil
}

func (s *MemoryPostStore) FindByCategory(_ context.Context, category string) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.collect(func(p memoryPost) bool { return p.Category == category }, byCreatedDesc), nil
}

func byCreatedDesc(a, b memoryPost) bool {
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt > b.CreatedAt
	}
	return a.seq > b.seq
}

func (s *MemoryPostStore) collect(keep func(memoryPost) bool, less func(a, b memoryPost) bool) []models.Post {
	var matched []memoryPost
	for _, p := range s.posts {
		if keep(p) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return less(matched[i], matched[j]) })

	posts := make([]models.Post, len(matched))
	for i, p := range matched {
		posts[i] = p.Post
	}
	return posts
}

func (s *MemoryPostStore) UpdateByID(_ context.Context, id primitive.ObjectID, upd PostUpdate) (*models.Post, error) {
	if upd.Category != nil && !models.ValidCategory(*upd.Category) {
		return nil, ErrInvalidCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Thumbnail != nil {
		p.Thumbnail = *upd.Thumbnail
	}
	p.UpdatedAt = time.Now().UnixMilli()
	s.seq++
	p.seq = s.seq
	s.posts[id] = p

	post := p.Post
	return &post, nil
}

func (s *MemoryPostStore) DeleteByID(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return false, nil
	}
	delete(s.posts, id)
	return true, nil
}
