package domain

import (
	"fmt"
	"sort"
	"time"
)

// Credentials хранит данные аккаунта.
type Credentials struct {
	SessionName string     `json:"session_name" validate:"required"`
	// api_id/api_hash могут быть пустыми: тогда берутся из конфига приложения
	APIID       int32      `json:"api_id" validate:"gte=0"`
	APIHash     string     `json:"api_hash"`
	Phone       string     `json:"phone,omitempty"`
	FirstName   string     `json:"first_name,omitempty"`
	Username    string     `json:"username,omitempty"`
	LastUsed    *time.Time `json:"last_used,omitempty"`
}

func (c Credentials) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid credentials for %q: %w", c.SessionName, err)
	}
	return nil
}

// ValidateAPI проверяет, что с этими данными можно логиниться в TDLib.
func (c Credentials) ValidateAPI() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := validate.Var(c.APIID, "gt=0"); err != nil {
		return fmt.Errorf("credentials for %q: api_id is required: %w", c.SessionName, err)
	}
	if err := validate.Var(c.APIHash, "required"); err != nil {
		return fmt.Errorf("credentials for %q: api_hash is required: %w", c.SessionName, err)
	}
	return nil
}

// SortByLastUsed: свежие первыми, без LastUsed в конце.
func SortByLastUsed(creds []Credentials) {
	sort.SliceStable(creds, func(i, j int) bool {
		a, b := creds[i].LastUsed, creds[j].LastUsed
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
