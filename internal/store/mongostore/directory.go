package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"yarn-backend/internal/models"
	"yarn-backend/internal/store"
)

func (s *Store) CreateRole(ctx context.Context, r *models.Role) error {
	store.Prepare(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	return insert(ctx, s.col(colRoles), r, "create role")
}

func (s *Store) UpdateRole(ctx context.Context, r *models.Role) error {
	r.UpdatedAt = time.Now().UTC()
	return replace(ctx, s.col(colRoles), r.ID, r, "update role")
}

func (s *Store) GetRole(ctx context.Context, id string) (models.Role, error) {
	var r models.Role
	err := findOne(ctx, s.col(colRoles), bson.M{"_id": id}, &r, "get role")
	return r, err
}

func (s *Store) GetRoleByName(ctx context.Context, name string) (models.Role, error) {
	var r models.Role
	err := findOne(ctx, s.col(colRoles), bson.M{"name": name}, &r, "get role by name")
	return r, err
}

func (s *Store) ListRoles(ctx context.Context) ([]models.Role, error) {
	return findAll[models.Role](ctx, s.col(colRoles), bson.M{}, byName, "list roles")
}

func (s *Store) DeleteRole(ctx context.Context, id string) error {
	return deleteOne(ctx, s.col(colRoles), id, "delete role")
}

func (s *Store) RoleInUse(ctx context.Context, id string) (bool, error) {
	return exists(ctx, s.col(colUsers), bson.M{"roleId": id, "isDeleted": false}, "role in use")
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	store.Prepare(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return insert(ctx, s.col(colUsers), u, "create user")
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()
	return replace(ctx, s.col(colUsers), u.ID, u, "update user")
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := findOne(ctx, s.col(colUsers), bson.M{"_id": id}, &u, "get user")
	return u, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := findOne(ctx, s.col(colUsers), bson.M{"email": email}, &u, "get user by email")
	return u, err
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "email", Value: 1}})
	return findAll[models.User](ctx, s.col(colUsers), bson.M{"isDeleted": false}, opts, "list users")
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return deleteOne(ctx, s.col(colUsers), id, "delete user")
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	n, err := s.col(colUsers).CountDocuments(ctx, bson.M{})
	return n, translate(err, "count users")
}
