package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const sessionConfigFile = "config.json"

func SessionConfigPath(baseDir, sessionName string) string {
	return filepath.Join(baseDir, sessionName, sessionConfigFile)
}

// LoadRawSessionConfig читает <baseDir>/<session>/config.json.
// Отсутствие файла отдаётся как ошибка, обёрнутая над os.ErrNotExist.
func LoadRawSessionConfig(baseDir, sessionName string) (*RawSessionConfig, error) {
	path := SessionConfigPath(baseDir, sessionName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var cfg RawSessionConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	// подстрахуемся: если в json другое имя
	if cfg.SessionFile == "" {
		cfg.SessionFile = sessionName
	}
	return &cfg, nil
}
