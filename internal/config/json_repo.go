package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
	"github.com/larriantoniy/tg_group_joiner/internal/ports"
)

// JSONCredentialStore хранит аккаунты как <baseDir>/<session>/config.json,
// рядом с базой TDLib этой же сессии.
type JSONCredentialStore struct {
	baseDir string // "./sessions"
}

func NewJSONCredentialStore(baseDir string) *JSONCredentialStore {
	return &JSONCredentialStore{baseDir: baseDir}
}

func (r *JSONCredentialStore) Load(ctx context.Context, sessionName string) (*domain.Credentials, error) {
	raw, err := LoadRawSessionConfig(r.baseDir, sessionName)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ports.ErrCredentialsNotFound
	}
	if err != nil {
		return nil, err
	}
	creds := raw.ToCredentials(sessionName)
	return &creds, nil
}

// Save обновляет только поля аккаунта; proxy и прочее в файле сохраняются.
func (r *JSONCredentialStore) Save(ctx context.Context, creds domain.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	raw, err := LoadRawSessionConfig(r.baseDir, creds.SessionName)
	if errors.Is(err, os.ErrNotExist) {
		raw = &RawSessionConfig{}
	} else if err != nil {
		return err
	}
	raw.ApplyCredentials(creds)

	dir := filepath.Join(r.baseDir, creds.SessionName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	// пишем через временный файл, чтобы не оставить половину json
	path := SessionConfigPath(r.baseDir, creds.SessionName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func (r *JSONCredentialStore) List(ctx context.Context) ([]domain.Credentials, error) {
	entries, err := os.ReadDir(r.baseDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]domain.Credentials, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		raw, err := LoadRawSessionConfig(r.baseDir, e.Name())
		if err != nil {
			// каталог без config.json, не наша сессия
			continue
		}
		out = append(out, raw.ToCredentials(e.Name()))
	}

	domain.SortByLastUsed(out)
	return out, nil
}

// Delete удаляет каталог сессии целиком (config.json и базу TDLib).
func (r *JSONCredentialStore) Delete(ctx context.Context, sessionName string) error {
	if sessionName == "" || sessionName != filepath.Base(sessionName) {
		return fmt.Errorf("invalid session name %q", sessionName)
	}
	dir := filepath.Join(r.baseDir, sessionName)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return ports.ErrCredentialsNotFound
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	return nil
}
