package ports

import (
	"context"
	"errors"
	"fmt"
)

// Словарь ошибок gateway. Адаптеры обязаны сводить свои ошибки к нему.
var (
	ErrAlreadyMember    = errors.New("already a participant")
	ErrInvalidOrExpired = errors.New("invite expired or channel private")
	ErrBanned           = errors.New("banned in channel")
	// ErrNotAvailable: метаданные получить нельзя (только для ResolvePublic).
	ErrNotAvailable = errors.New("metadata not available")
)

// FloodWaitError возвращается, когда провайдер требует подождать Seconds секунд.
type FloodWaitError struct {
	Seconds int
}

func (e *FloodWaitError) Error() string {
	return fmt.Sprintf("flood wait: retry after %d seconds", e.Seconds)
}

// ChatInfo: best-effort метаданные группы.
type ChatInfo struct {
	Title       string
	MemberCount int
	HasCount    bool
}

// SessionGateway определяет возможности авторизованной сессии Telegram.
// Реализуется адаптером TDLib; в тестах, фейками.
type SessionGateway interface {
	// ResolvePublic ищет публичный чат и возвращает название и число участников
	ResolvePublic(ctx context.Context, username string) (ChatInfo, error)
	// JoinPublic вступает в публичный канал/группу по username
	JoinPublic(ctx context.Context, username string) error
	// ImportInvite вступает по invite hash; title пустой, если провайдер его не вернул
	ImportInvite(ctx context.Context, hash string) (title string, err error)
}

// Session: открытая сессия аккаунта, которую нужно закрыть после прогона.
type Session interface {
	SessionGateway
	Close()
}
