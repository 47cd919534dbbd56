package config

import (
	"fmt"
	"time"

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
)

type ProxyConfig struct {
	Enabled  bool
	Server   string
	Port     int32
	Username string
	Password string
}

type RawSessionConfig struct {
	SessionFile string `json:"session_file"`
	Phone       string `json:"phone"`
	UserID      int64  `json:"user_id"`
	FirstName   string `json:"first_name,omitempty"`
	Username    string `json:"username,omitempty"`

	AppID   int32  `json:"app_id"`
	AppHash string `json:"app_hash"`

	SDK        string `json:"sdk"`         // условно: SystemVersion
	AppVersion string `json:"app_version"` // ApplicationVersion
	Device     string `json:"device"`      // DeviceModel
	LangCode   string `json:"lang_code"`   // SystemLanguageCode
	SystemLang string `json:"system_lang_code"`
	LangPack   string `json:"lang_pack"`

	Proxy []any `json:"proxy"` // [type, host, port, useAuth, user, pass]

	LastUsed *time.Time `json:"last_used,omitempty"`
}

func (c *RawSessionConfig) ToCredentials(sessionName string) domain.Credentials {
	return domain.Credentials{
		SessionName: sessionName,
		APIID:       c.AppID,
		APIHash:     c.AppHash,
		Phone:       c.Phone,
		FirstName:   c.FirstName,
		Username:    c.Username,
		LastUsed:    c.LastUsed,
	}
}

// ApplyCredentials переносит данные аккаунта, не трогая proxy и параметры устройства.
func (c *RawSessionConfig) ApplyCredentials(creds domain.Credentials) {
	if c.SessionFile == "" {
		c.SessionFile = creds.SessionName
	}
	c.AppID = creds.APIID
	c.AppHash = creds.APIHash
	c.Phone = creds.Phone
	c.FirstName = creds.FirstName
	c.Username = creds.Username
	c.LastUsed = creds.LastUsed
}

func (c *RawSessionConfig) ToProxyConfig() (*ProxyConfig, error) {
	if len(c.Proxy) == 0 {
		return nil, nil
	}
	if len(c.Proxy) < 6 {
		return nil, fmt.Errorf("invalid proxy length: %d", len(c.Proxy))
	}

	// type := c.Proxy[0] (3, условно socks5, но нам не важно)
	host, _ := c.Proxy[1].(string)

	// port может прийти как float64 из json.Unmarshal
	var port int32
	switch v := c.Proxy[2].(type) {
	case float64:
		port = int32(v)
	case int:
		port = int32(v)
	default:
		return nil, fmt.Errorf("invalid proxy port type %T", c.Proxy[2])
	}

	useAuth, _ := c.Proxy[3].(bool)
	user, _ := c.Proxy[4].(string)
	pass, _ := c.Proxy[5].(string)

	if host == "" || port == 0 {
		return nil, nil
	}

	p := &ProxyConfig{
		Enabled: true,
		Server:  host,
		Port:    port,
	}
	if useAuth {
		p.Username = user
		p.Password = pass
	}
	return p, nil
}
