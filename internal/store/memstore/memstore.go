// Package memstore keeps every record in process memory. It backs tests and
// STORE_DRIVER=memory runs.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"yarn-backend/internal/models"
	"yarn-backend/internal/store"
)

type Store struct {
	mu         sync.RWMutex
	categories map[string]models.YarnCategory
	parties    map[string]models.Party
	inEntries  map[string]models.InEntry
	exEntries  map[string]models.ExEntry
	roles      map[string]models.Role
	users      map[string]models.User
	auditLogs  []models.AuditLog
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		categories: make(map[string]models.YarnCategory),
		parties:    make(map[string]models.Party),
		inEntries:  make(map[string]models.InEntry),
		exEntries:  make(map[string]models.ExEntry),
		roles:      make(map[string]models.Role),
		users:      make(map[string]models.User),
	}
}

func (s *Store) Close(context.Context) error { return nil }

// Categories

func (s *Store) CreateCategory(_ context.Context, c *models.YarnCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.categories {
		if other.Name == c.Name {
			return store.ErrDuplicate
		}
	}
	store.Prepare(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) UpdateCategory(_ context.Context, c *models.YarnCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return store.ErrNotFound
	}
	for id, other := range s.categories {
		if id != c.ID && other.Name == c.Name {
			return store.ErrDuplicate
		}
	}
	c.UpdatedAt = time.Now().UTC()
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) GetCategory(_ context.Context, id string) (models.YarnCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return models.YarnCategory{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListCategories(context.Context) ([]models.YarnCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]models.YarnCategory, 0, len(s.categories))
	for _, c := range s.categories {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) CategoryInUse(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.inEntries {
		if e.CategoryID == id {
			return true, nil
		}
	}
	for _, e := range s.exEntries {
		if e.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

// Parties

func (s *Store) CreateParty(_ context.Context, p *models.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	store.Prepare(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	s.parties[p.ID] = *p
	return nil
}

func (s *Store) UpdateParty(_ context.Context, p *models.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parties[p.ID]; !ok {
		return store.ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	s.parties[p.ID] = *p
	return nil
}

func (s *Store) GetParty(_ context.Context, id string) (models.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parties[id]
	if !ok {
		return models.Party{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListParties(context.Context) ([]models.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]models.Party, 0, len(s.parties))
	for _, p := range s.parties {
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (s *Store) DeleteParty(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parties[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.parties, id)
	return nil
}

func (s *Store) PartyInUse(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.inEntries {
		if e.PartyID == id {
			return true, nil
		}
	}
	return false, nil
}

// Entries

func (s *Store) CreateInEntry(_ context.Context, e *models.InEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	store.Prepare(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	s.inEntries[e.ID] = *e
	return nil
}

func (s *Store) UpdateInEntry(_ context.Context, e *models.InEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inEntries[e.ID]; !ok {
		return store.ErrNotFound
	}
	e.UpdatedAt = time.Now().UTC()
	s.inEntries[e.ID] = *e
	return nil
}

func (s *Store) GetInEntry(_ context.Context, id string) (models.InEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.inEntries[id]
	if !ok {
		return models.InEntry{}, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) ListInEntries(_ context.Context, f store.EntryFilter) ([]models.InEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]models.InEntry, 0)
	for _, e := range s.inEntries {
		if f.Matches(e.CategoryID, e.LotNo, e.EntryDate) {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return entryLess(res[i].EntryDate, res[i].CreatedAt, res[j].EntryDate, res[j].CreatedAt)
	})
	return res, nil
}

func (s *Store) CreateExEntry(_ context.Context, e *models.ExEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	store.Prepare(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	s.exEntries[e.ID] = *e
	return nil
}

func (s *Store) GetExEntry(_ context.Context, id string) (models.ExEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.exEntries[id]
	if !ok {
		return models.ExEntry{}, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) ListExEntries(_ context.Context, f store.EntryFilter) ([]models.ExEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]models.ExEntry, 0)
	for _, e := range s.exEntries {
		if f.Matches(e.CategoryID, e.LotNo, e.EntryDate) {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return entryLess(res[i].EntryDate, res[i].CreatedAt, res[j].EntryDate, res[j].CreatedAt)
	})
	return res, nil
}

func entryLess(dateA, createdA, dateB, createdB time.Time) bool {
	if !dateA.Equal(dateB) {
		return dateA.Before(dateB)
	}
	return createdA.Before(createdB)
}

// Roles

func (s *Store) CreateRole(_ context.Context, r *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.roles {
		if other.Name == r.Name {
			return store.ErrDuplicate
		}
	}
	store.Prepare(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	s.roles[r.ID] = *r
	return nil
}

func (s *Store) UpdateRole(_ context.Context, r *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[r.ID]; !ok {
		return store.ErrNotFound
	}
	for id, other := range s.roles {
		if id != r.ID && other.Name == r.Name {
			return store.ErrDuplicate
		}
	}
	r.UpdatedAt = time.Now().UTC()
	s.roles[r.ID] = *r
	return nil
}

func (s *Store) GetRole(_ context.Context, id string) (models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[id]
	if !ok {
		return models.Role{}, store.ErrNotFound
	}
	return r, nil
}

func (s *Store) GetRoleByName(_ context.Context, name string) (models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return models.Role{}, store.ErrNotFound
}

func (s *Store) ListRoles(context.Context) ([]models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]models.Role, 0, len(s.roles))
	for _, r := range s.roles {
		res = append(res, r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (s *Store) DeleteRole(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.roles, id)
	return nil
}

func (s *Store) RoleInUse(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if !u.IsDeleted && u.RoleID != nil && *u.RoleID == id {
			return true, nil
		}
	}
	return false, nil
}

// Users

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	store.Prepare(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	s.users[u.ID] = *u
	return nil
}

func (s *Store) UpdateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	for id, other := range s.users {
		if id != u.ID && other.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (s *Store) ListUsers(context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		if !u.IsDeleted {
			res = append(res, u)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Email < res[j].Email })
	return res, nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) CountUsers(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

// Audit

func (s *Store) WriteAuditLog(_ context.Context, l *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = store.NewID()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, *l)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, f store.AuditFilter) ([]models.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]models.AuditLog, 0)
	for i := len(s.auditLogs) - 1; i >= 0; i-- {
		l := s.auditLogs[i]
		if f.EntityType != "" && l.EntityType != f.EntityType {
			continue
		}
		if f.EntityID != "" && l.EntityID != f.EntityID {
			continue
		}
		res = append(res, l)
		if f.Limit > 0 && len(res) == f.Limit {
			break
		}
	}
	return res, nil
}
