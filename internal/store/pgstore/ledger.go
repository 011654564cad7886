package pgstore

import (
	"context"

	"yarn-backend/internal/models"
	"yarn-backend/internal/store"
)

func (s *Store) CreateCategory(ctx context.Context, c *models.YarnCategory) error {
	store.Prepare(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return translate(s.db.WithContext(ctx).Create(c).Error, "create category")
}

func (s *Store) UpdateCategory(ctx context.Context, c *models.YarnCategory) error {
	res := s.db.WithContext(ctx).Model(c).Select("*").Omit("created_at", "created_by").Updates(c)
	return affected(res, "update category")
}

func (s *Store) GetCategory(ctx context.Context, id string) (models.YarnCategory, error) {
	var c models.YarnCategory
	err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return c, translate(err, "get category")
}

func (s *Store) ListCategories(ctx context.Context) ([]models.YarnCategory, error) {
	var res []models.YarnCategory
	err := s.db.WithContext(ctx).Order("name asc").Find(&res).Error
	return res, translate(err, "list categories")
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.YarnCategory{}, "id = ?", id)
	return affected(res, "delete category")
}

func (s *Store) CategoryInUse(ctx context.Context, id string) (bool, error) {
	db := s.db.WithContext(ctx)
	used, err := exists(db.Model(&models.InEntry{}).Where("category_id = ?", id))
	if err != nil || used {
		return used, translate(err, "category in use")
	}
	used, err = exists(db.Model(&models.ExEntry{}).Where("category_id = ?", id))
	return used, translate(err, "category in use")
}

func (s *Store) CreateParty(ctx context.Context, p *models.Party) error {
	store.Prepare(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return translate(s.db.WithContext(ctx).Create(p).Error, "create party")
}

func (s *Store) UpdateParty(ctx context.Context, p *models.Party) error {
	res := s.db.WithContext(ctx).Model(p).Select("*").Omit("created_at", "created_by").Updates(p)
	return affected(res, "update party")
}

func (s *Store) GetParty(ctx context.Context, id string) (models.Party, error) {
	var p models.Party
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return p, translate(err, "get party")
}

func (s *Store) ListParties(ctx context.Context) ([]models.Party, error) {
	var res []models.Party
	err := s.db.WithContext(ctx).Order("name asc").Find(&res).Error
	return res, translate(err, "list parties")
}

func (s *Store) DeleteParty(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Party{}, "id = ?", id)
	return affected(res, "delete party")
}

func (s *Store) PartyInUse(ctx context.Context, id string) (bool, error) {
	used, err := exists(s.db.WithContext(ctx).Model(&models.InEntry{}).Where("party_id = ?", id))
	return used, translate(err, "party in use")
}

func (s *Store) CreateInEntry(ctx context.Context, e *models.InEntry) error {
	store.Prepare(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	return translate(s.db.WithContext(ctx).Create(e).Error, "create in entry")
}

func (s *Store) UpdateInEntry(ctx context.Context, e *models.InEntry) error {
	res := s.db.WithContext(ctx).Model(e).Select("*").Omit("created_at", "created_by").Updates(e)
	return affected(res, "update in entry")
}

func (s *Store) GetInEntry(ctx context.Context, id string) (models.InEntry, error) {
	var e models.InEntry
	err := s.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return e, translate(err, "get in entry")
}

func (s *Store) ListInEntries(ctx context.Context, f store.EntryFilter) ([]models.InEntry, error) {
	var res []models.InEntry
	err := s.db.WithContext(ctx).Scopes(entryScope(f)).Find(&res).Error
	return res, translate(err, "list in entries")
}

func (s *Store) CreateExEntry(ctx context.Context, e *models.ExEntry) error {
	store.Prepare(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	return translate(s.db.WithContext(ctx).Create(e).Error, "create ex entry")
}

func (s *Store) GetExEntry(ctx context.Context, id string) (models.ExEntry, error) {
	var e models.ExEntry
	err := s.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return e, translate(err, "get ex entry")
}

func (s *Store) ListExEntries(ctx context.Context, f store.EntryFilter) ([]models.ExEntry, error) {
	var res []models.ExEntry
	err := s.db.WithContext(ctx).Scopes(entryScope(f)).Find(&res).Error
	return res, translate(err, "list ex entries")
}
