package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/acquisitions/users-api/internal/core/domain"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint conflict.
const uniqueViolation = "23505"

// publicColumns excludes the password hash.
var publicColumns = []string{"id", "name", "email", "role", "created_at", "updated_at"}

// userRecord is the GORM model for the users table created by the migrations.
type userRecord struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	Name      string    `gorm:"size:255;not null"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:users_email_unique"`
	Password  string    `gorm:"column:password;size:255;not null"`
	Role      string    `gorm:"size:16;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (userRecord) TableName() string { return "users" }

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.Password,
		Role:         domain.Role(r.Role),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

// UserRepository implements ports.UserRepository on top of GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&rec).Error; err != nil {
		return nil, translateError("find user by email", err)
	}
	return rec.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if !isUUID(id) {
		return nil, domain.ErrUserNotFound
	}
	var rec userRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		return nil, translateError("find user by id", err)
	}
	return rec.toDomain(), nil
}

func (r *UserRepository) Insert(ctx context.Context, nu domain.NewUser) (*domain.User, error) {
	now := time.Now().UTC()
	rec := userRecord{
		ID:        uuid.NewString(),
		Name:      nu.Name,
		Email:     nu.Email,
		Password:  nu.PasswordHash,
		Role:      string(nu.Role),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, translateError("insert user", err)
	}
	return rec.toDomain().WithoutPassword(), nil
}

func (r *UserRepository) Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	if !isUUID(id) {
		return nil, domain.ErrUserNotFound
	}

	values := map[string]any{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		values["name"] = *upd.Name
	}
	if upd.Email != nil {
		values["email"] = *upd.Email
	}
	if upd.Role != nil {
		values["role"] = string(*upd.Role)
	}

	var rec userRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userRecord{}).Where("id = ?", id).Updates(values)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Select(publicColumns).Where("id = ?", id).Take(&rec).Error
	})
	if err != nil {
		return nil, translateError("update user", err)
	}
	return rec.toDomain(), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) (string, error) {
	if !isUUID(id) {
		return "", domain.ErrUserNotFound
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&userRecord{})
	if res.Error != nil {
		return "", translateError("delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", domain.ErrUserNotFound
	}
	return id, nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]*domain.User, error) {
	var recs []userRecord
	if err := r.db.WithContext(ctx).Select(publicColumns).Order("created_at ASC").Find(&recs).Error; err != nil {
		return nil, translateError("list users", err)
	}
	users := make([]*domain.User, len(recs))
	for i, rec := range recs {
		users[i] = rec.toDomain()
	}
	return users, nil
}

// translateError maps store signals onto domain errors; anything else is
// wrapped with the operation name.
func translateError(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrUserNotFound
	case isUniqueViolation(err):
		return domain.ErrUserExists
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
