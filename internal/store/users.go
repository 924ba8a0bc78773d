package store

import (
	"context"
	"time"

	"boarddash/internal/models"

	"gorm.io/gorm"
)

// UserRepository is the only path to the users table.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, search string, page, size int) (Page[models.User], error)
	Recent(ctx context.Context, n int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	SetActive(ctx context.Context, id uint, active bool) error
	UpdateProfile(ctx context.Context, id uint, firstName, lastName, email string) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	LoginTimesBetween(ctx context.Context, from, to time.Time) ([]time.Time, error)
	CountActiveSince(ctx context.Context, since time.Time) (int64, error)
}

// userSearchColumns 搜索白名单
var userSearchColumns = []string{"username", "email", "first_name", "last_name"}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(conn *gorm.DB) UserRepository {
	return &userRepository{db: conn}
}

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// List returns users newest first, optionally filtered by a substring of
// username, email, first or last name.
func (r *userRepository) List(ctx context.Context, search string, page, size int) (Page[models.User], error) {
	base := r.db.WithContext(ctx).Model(&models.User{}).Scopes(containsScope(search, userSearchColumns...))
	return Paginate[models.User](base, page, size, "date_joined DESC, id DESC")
}

func (r *userRepository) Recent(ctx context.Context, n int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("date_joined DESC, id DESC").Limit(n).Find(&users).Error
	return users, err
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

func (r *userRepository) SetActive(ctx context.Context, id uint, active bool) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uint, firstName, lastName, email string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"first_name": firstName,
		"last_name":  lastName,
		"email":      email,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", at.UTC()).Error
}

// LoginTimesBetween returns every last_login in [from, to). Bucketing is left
// to the caller so it can happen in the configured time zone.
func (r *userRepository) LoginTimesBetween(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("last_login IS NOT NULL AND last_login >= ? AND last_login < ?", from.UTC(), to.UTC()).
		Pluck("last_login", &times).Error
	return times, err
}

func (r *userRepository) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("last_login IS NOT NULL AND last_login >= ?", since.UTC()).
		Count(&n).Error
	return n, err
}
