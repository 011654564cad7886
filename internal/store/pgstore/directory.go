package pgstore

import (
	"context"

	"yarn-backend/internal/models"
	"yarn-backend/internal/store"
)

func (s *Store) CreateRole(ctx context.Context, r *models.Role) error {
	store.Prepare(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	return translate(s.db.WithContext(ctx).Create(r).Error, "create role")
}

func (s *Store) UpdateRole(ctx context.Context, r *models.Role) error {
	res := s.db.WithContext(ctx).Model(r).Select("*").Omit("created_at", "created_by").Updates(r)
	return affected(res, "update role")
}

func (s *Store) GetRole(ctx context.Context, id string) (models.Role, error) {
	var r models.Role
	err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error
	return r, translate(err, "get role")
}

func (s *Store) GetRoleByName(ctx context.Context, name string) (models.Role, error) {
	var r models.Role
	err := s.db.WithContext(ctx).First(&r, "name = ?", name).Error
	return r, translate(err, "get role by name")
}

func (s *Store) ListRoles(ctx context.Context) ([]models.Role, error) {
	var res []models.Role
	err := s.db.WithContext(ctx).Order("name asc").Find(&res).Error
	return res, translate(err, "list roles")
}

func (s *Store) DeleteRole(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Role{}, "id = ?", id)
	return affected(res, "delete role")
}

func (s *Store) RoleInUse(ctx context.Context, id string) (bool, error) {
	used, err := exists(s.db.WithContext(ctx).Model(&models.User{}).
		Where("role_id = ? AND is_deleted = ?", id, false))
	return used, translate(err, "role in use")
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	store.Prepare(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return translate(s.db.WithContext(ctx).Create(u).Error, "create user")
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	res := s.db.WithContext(ctx).Model(u).Select("*").Omit("created_at").Updates(u)
	return affected(res, "update user")
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error
	return u, translate(err, "get user")
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, "email = ?", email).Error
	return u, translate(err, "get user by email")
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var res []models.User
	err := s.db.WithContext(ctx).Where("is_deleted = ?", false).Order("email asc").Find(&res).Error
	return res, translate(err, "list users")
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	return affected(res, "delete user")
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, translate(err, "count users")
}
