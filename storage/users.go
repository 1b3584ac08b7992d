package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ferreirogomes/tpf/models"
)

const usersCollection = "users"

// UsersRepository guarda os usuários da plataforma.
type UsersRepository struct {
	docs *Collection[models.User]
}

func NewUsersRepository(db *sqlx.DB) *UsersRepository {
	return &UsersRepository{docs: NewCollection[models.User](db, usersCollection)}
}

func (r *UsersRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	if user.ID == "" {
		return models.User{}, fmt.Errorf("usuário sem id")
	}
	return r.docs.Create(ctx, user.ID, user)
}

func (r *UsersRepository) FindByID(ctx context.Context, id string) (models.User, bool, error) {
	return r.docs.FindByID(ctx, id)
}

// FindByPublicKey busca o usuário pelo endereço da carteira, sem diferenciar maiúsculas.
func (r *UsersRepository) FindByPublicKey(ctx context.Context, publicKey string) (models.User, bool, error) {
	return r.docs.FindOneBy(ctx, "publicKey", publicKey)
}

func (r *UsersRepository) Update(ctx context.Context, id string, patch map[string]interface{}) (models.User, error) {
	return r.docs.Update(ctx, id, patch)
}

// TouchLogin registra o horário do último login.
func (r *UsersRepository) TouchLogin(ctx context.Context, id string, at time.Time) (models.User, error) {
	return r.docs.Update(ctx, id, map[string]interface{}{"lastLoginAt": at.UTC()})
}

func (r *UsersRepository) List(ctx context.Context) ([]models.User, error) {
	return r.docs.List(ctx)
}
