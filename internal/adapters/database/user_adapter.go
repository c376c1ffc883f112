package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	"github.com/moysha/servicecatalog/internal/infrastructure/clients/postgres"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

// UserAdapter reads the user directory table
type UserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	query, args, err := a.db.From("users").
		Select("id", "email", "role", "banned_till").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	user := &entities.User{}
	var bannedTill sql.NullTime
	err = a.client.Conn(ctx).QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.Email, &user.Role, &bannedTill)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundErrorf("user with id %s not found", id)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	if bannedTill.Valid {
		t := bannedTill.Time.In(time.UTC)
		user.BannedTill = &t
	}
	return user, nil
}
