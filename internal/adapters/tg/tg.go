package tg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zelenin/go-tdlib/client"

	"github.com/larriantoniy/tg_group_joiner/internal/config"
	"github.com/larriantoniy/tg_group_joiner/internal/domain"
	"github.com/larriantoniy/tg_group_joiner/internal/ports"
)

// InviteLinkPrefix: TDLib принимает инвайт только полной ссылкой.
const InviteLinkPrefix = "https://t.me/+"

var _ ports.Session = (*TelegramClient)(nil)

// TelegramClient реализует ports.Session через go-tdlib
type TelegramClient struct {
	client *client.Client
	logger *slog.Logger
	selfId int64
}

type ClientMode int

const (
	ClientModeRuntime ClientMode = iota // боевой режим: GetMe, лог self_id и т.д.
	ClientModeAuth                      // режим авторизации: промпты в консоли
)

// Account описывает залогиненный аккаунт.
type Account struct {
	ID        int64
	FirstName string
	Username  string
	Phone     string
}

func NewClient(
	creds *domain.Credentials,
	baseDir string, // "./sessions"
	log *slog.Logger,
	mode ClientMode,
) (*TelegramClient, error) {
	rawCfg, err := config.LoadRawSessionConfig(baseDir, creds.SessionName)
	if errors.Is(err, os.ErrNotExist) {
		// креды могли прийти из redis, тогда параметры устройства по умолчанию
		rawCfg = &config.RawSessionConfig{SessionFile: creds.SessionName}
	} else if err != nil {
		return nil, err
	}

	sessionDir := filepath.Join(baseDir, rawCfg.SessionFile)
	dbDir := filepath.Join(sessionDir, "database")
	filesDir := filepath.Join(sessionDir, "files")

	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := os.MkdirAll(filesDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir files dir: %w", err)
	}

	if _, err := client.SetLogVerbosityLevel(&client.SetLogVerbosityLevelRequest{
		NewVerbosityLevel: 1,
	}); err != nil {
		log.Error("TDLib SetLogVerbosityLevel", "error", err)
	}

	params := tdParams(rawCfg, creds.APIID, creds.APIHash, dbDir, filesDir)

	proxyCfg, err := rawCfg.ToProxyConfig()
	if err != nil {
		log.Error("parse proxy from json", "error", err)
	}

	checkNetwork(log)
	if err := checkProxy(log, proxyCfg); err != nil {
		log.Error("proxy check", "error", err)
	}

	var opts []client.Option
	if proxyCfg != nil && proxyCfg.Enabled {
		opts = append(opts, client.WithProxy(&client.AddProxyRequest{
			Server: proxyCfg.Server,
			Port:   proxyCfg.Port,
			Enable: true,
			Type: &client.ProxyTypeSocks5{
				Username: proxyCfg.Username,
				Password: proxyCfg.Password,
			},
		}))
	}

	authorizer := client.ClientAuthorizer(params)

	// в AUTH-режиме CliInteractor спрашивает телефон/код/пароль в консоли
	if mode == ClientModeAuth {
		go client.CliInteractor(authorizer)
	}

	tdCli, err := client.NewClient(authorizer, opts...)
	if err != nil {
		log.Error("TDLib NewClient error", "session", rawCfg.SessionFile, "error", err)
		return nil, err
	}

	me, err := tdCli.GetMe()
	if err != nil {
		log.Error("GetMe failed", "session", rawCfg.SessionFile, "error", err)
		tdCli.Close()
		return nil, err
	}

	log.Info("TDLib client initialized and authorized",
		"self_id", me.Id,
		"session", rawCfg.SessionFile,
		"mode", mode,
	)

	return &TelegramClient{
		client: tdCli,
		logger: log,
		selfId: me.Id,
	}, nil
}

func (t *TelegramClient) Close() {
	t.client.Close()
}

// Me возвращает данные залогиненного аккаунта (для сохранения в CredentialStore).
func (t *TelegramClient) Me() (Account, error) {
	me, err := t.client.GetMe()
	if err != nil {
		return Account{}, err
	}
	acc := Account{ID: me.Id, FirstName: me.FirstName, Phone: me.PhoneNumber}
	if me.Usernames != nil && len(me.Usernames.ActiveUsernames) > 0 {
		acc.Username = me.Usernames.ActiveUsernames[0]
	}
	return acc, nil
}

// ResolvePublic: название и число участников до вступления. Любая ошибка превращается в ErrNotAvailable.
func (t *TelegramClient) ResolvePublic(ctx context.Context, username string) (ports.ChatInfo, error) {
	if err := ctx.Err(); err != nil {
		return ports.ChatInfo{}, err
	}

	chat, err := t.client.SearchPublicChat(&client.SearchPublicChatRequest{
		Username: username,
	})
	if err != nil {
		return ports.ChatInfo{}, fmt.Errorf("%w: %v", ports.ErrNotAvailable, err)
	}

	info := ports.ChatInfo{Title: chat.Title}

	switch ct := chat.Type.(type) {
	case *client.ChatTypeSupergroup:
		full, err := t.client.GetSupergroupFullInfo(&client.GetSupergroupFullInfoRequest{
			SupergroupId: ct.SupergroupId,
		})
		if err != nil {
			t.logger.Debug("GetSupergroupFullInfo failed", "chat_id", chat.Id, "error", err)
			break
		}
		info.MemberCount = int(full.MemberCount)
		info.HasCount = true
	case *client.ChatTypeBasicGroup:
		full, err := t.client.GetBasicGroupFullInfo(&client.GetBasicGroupFullInfoRequest{
			BasicGroupId: ct.BasicGroupId,
		})
		if err != nil {
			t.logger.Debug("GetBasicGroupFullInfo failed", "chat_id", chat.Id, "error", err)
			break
		}
		info.MemberCount = len(full.Members)
		info.HasCount = true
	}

	return info, nil
}

// JoinPublic подписывается на публичный канал по его username
func (t *TelegramClient) JoinPublic(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	chat, err := t.client.SearchPublicChat(&client.SearchPublicChatRequest{
		Username: username,
	})
	if err != nil {
		t.logger.Debug("SearchPublicChat failed", "username", username, "error", err)
		return classifyError(err)
	}

	// JoinChat на чат, где мы уже есть, проходит молча, проверяем заранее
	if t.isChatMember(chat.Id) {
		return ports.ErrAlreadyMember
	}

	if _, err := t.client.JoinChat(&client.JoinChatRequest{
		ChatId: chat.Id,
	}); err != nil {
		t.logger.Debug("JoinChat failed", "chat_id", chat.Id, "error", err)
		return classifyError(err)
	}

	return nil
}

// ImportInvite вступает по invite hash и возвращает название чата.
func (t *TelegramClient) ImportInvite(ctx context.Context, hash string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	chat, err := t.client.JoinChatByInviteLink(&client.JoinChatByInviteLinkRequest{
		InviteLink: InviteLinkPrefix + hash,
	})
	if err != nil {
		t.logger.Debug("JoinChatByInviteLink failed", "hash", hash, "error", err)
		return "", classifyError(err)
	}
	if chat == nil {
		return "", nil
	}
	return chat.Title, nil
}

func (t *TelegramClient) isChatMember(chatID int64) bool {
	member, err := t.client.GetChatMember(&client.GetChatMemberRequest{
		ChatId:   chatID,
		MemberId: &client.MessageSenderUser{UserId: t.selfId},
	})
	if err != nil {
		t.logger.Debug("GetChatMember failed, assuming not a member", "chat_id", chatID, "error", err)
		return false
	}

	return isMemberStatus(member.Status)
}

// isMemberStatus: restricted тоже участник, если IsMember.
func isMemberStatus(status client.ChatMemberStatus) bool {
	switch st := status.(type) {
	case *client.ChatMemberStatusMember, *client.ChatMemberStatusAdministrator, *client.ChatMemberStatusCreator:
		return true
	case *client.ChatMemberStatusRestricted:
		return st.IsMember
	default:
		return false
	}
}
