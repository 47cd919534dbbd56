package ports

import (
	"context"
	"errors"

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
)

var ErrCredentialsNotFound = errors.New("credentials not found")

type CredentialStore interface {
	// Load возвращает ErrCredentialsNotFound, если сессии нет
	Load(ctx context.Context, sessionName string) (*domain.Credentials, error)
	Save(ctx context.Context, creds domain.Credentials) error
	// List отсортирован по LastUsed, свежие первыми
	List(ctx context.Context) ([]domain.Credentials, error)
	// Delete удаляет только локальные данные, не сам аккаунт
	Delete(ctx context.Context, sessionName string) error
}
