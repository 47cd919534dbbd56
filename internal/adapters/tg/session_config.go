package tg

import (
	"github.com/zelenin/go-tdlib/client"

	"github.com/larriantoniy/tg_group_joiner/internal/config"
)

// tdParams собирает параметры TDLib; пустые поля устройства заполняются дефолтами.
func tdParams(c *config.RawSessionConfig, apiID int32, apiHash string, dbDir, filesDir string) *client.SetTdlibParametersRequest {
	lang := c.LangCode
	if lang == "" {
		lang = "en"
	}

	systemVersion := c.SDK
	if systemVersion == "" {
		systemVersion = "Windows 10"
	}

	appVersion := c.AppVersion
	if appVersion == "" {
		appVersion = "2.0"
	}

	deviceModel := c.Device
	if deviceModel == "" {
		deviceModel = "Desktop"
	}

	return &client.SetTdlibParametersRequest{
		UseTestDc:           false,
		DatabaseDirectory:   dbDir,
		FilesDirectory:      filesDir,
		UseFileDatabase:     true,
		UseChatInfoDatabase: true,
		UseMessageDatabase:  true,
		UseSecretChats:      false,
		ApiId:               apiID,
		ApiHash:             apiHash,
		SystemLanguageCode:  lang,
		DeviceModel:         deviceModel,
		SystemVersion:       systemVersion,
		ApplicationVersion:  appVersion,
	}
}
