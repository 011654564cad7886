package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"yarn-backend/internal/models"
	"yarn-backend/internal/store"
)

func (s *Store) CreateCategory(ctx context.Context, c *models.YarnCategory) error {
	store.Prepare(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return insert(ctx, s.col(colCategories), c, "create category")
}

func (s *Store) UpdateCategory(ctx context.Context, c *models.YarnCategory) error {
	c.UpdatedAt = time.Now().UTC()
	return replace(ctx, s.col(colCategories), c.ID, c, "update category")
}

func (s *Store) GetCategory(ctx context.Context, id string) (models.YarnCategory, error) {
	var c models.YarnCategory
	err := findOne(ctx, s.col(colCategories), bson.M{"_id": id}, &c, "get category")
	return c, err
}

func (s *Store) ListCategories(ctx context.Context) ([]models.YarnCategory, error) {
	return findAll[models.YarnCategory](ctx, s.col(colCategories), bson.M{}, byName, "list categories")
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return deleteOne(ctx, s.col(colCategories), id, "delete category")
}

func (s *Store) CategoryInUse(ctx context.Context, id string) (bool, error) {
	used, err := exists(ctx, s.col(colInEntries), bson.M{"categoryId": id}, "category in use")
	if err != nil || used {
		return used, err
	}
	return exists(ctx, s.col(colExEntries), bson.M{"categoryId": id}, "category in use")
}

func (s *Store) CreateParty(ctx context.Context, p *models.Party) error {
	store.Prepare(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return insert(ctx, s.col(colParties), p, "create party")
}

func (s *Store) UpdateParty(ctx context.Context, p *models.Party) error {
	p.UpdatedAt = time.Now().UTC()
	return replace(ctx, s.col(colParties), p.ID, p, "update party")
}

func (s *Store) GetParty(ctx context.Context, id string) (models.Party, error) {
	var p models.Party
	err := findOne(ctx, s.col(colParties), bson.M{"_id": id}, &p, "get party")
	return p, err
}

func (s *Store) ListParties(ctx context.Context) ([]models.Party, error) {
	return findAll[models.Party](ctx, s.col(colParties), bson.M{}, byName, "list parties")
}

func (s *Store) DeleteParty(ctx context.Context, id string) error {
	return deleteOne(ctx, s.col(colParties), id, "delete party")
}

func (s *Store) PartyInUse(ctx context.Context, id string) (bool, error) {
	return exists(ctx, s.col(colInEntries), bson.M{"partyId": id}, "party in use")
}

func (s *Store) CreateInEntry(ctx context.Context, e *models.InEntry) error {
	store.Prepare(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	return insert(ctx, s.col(colInEntries), e, "create in entry")
}

func (s *Store) UpdateInEntry(ctx context.Context, e *models.InEntry) error {
	e.UpdatedAt = time.Now().UTC()
	return replace(ctx, s.col(colInEntries), e.ID, e, "update in entry")
}

func (s *Store) GetInEntry(ctx context.Context, id string) (models.InEntry, error) {
	var e models.InEntry
	err := findOne(ctx, s.col(colInEntries), bson.M{"_id": id}, &e, "get in entry")
	return e, err
}

func (s *Store) ListInEntries(ctx context.Context, f store.EntryFilter) ([]models.InEntry, error) {
	return findAll[models.InEntry](ctx, s.col(colInEntries), entryFilter(f), byEntryDate, "list in entries")
}

func (s *Store) CreateExEntry(ctx context.Context, e *models.ExEntry) error {
	store.Prepare(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	return insert(ctx, s.col(colExEntries), e, "create ex entry")
}

func (s *Store) GetExEntry(ctx context.Context, id string) (models.ExEntry, error) {
	var e models.ExEntry
	err := findOne(ctx, s.col(colExEntries), bson.M{"_id": id}, &e, "get ex entry")
	return e, err
}

func (s *Store) ListExEntries(ctx context.Context, f store.EntryFilter) ([]models.ExEntry, error) {
	return findAll[models.ExEntry](ctx, s.col(colExEntries), entryFilter(f), byEntryDate, "list ex entries")
}
