// Package tgtest — записывающий фейк Telegram API для тестов обработчиков.
package tgtest

import (
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrNoMember возвращается GetChatMember для неизвестного участника.
var ErrNoMember = errors.New("tgtest: chat member not found")

type memberKey struct {
	chatID int64
	userID int64
}

// FakeAPI запоминает все отправленные сообщения и запросы.
type FakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
	members  map[memberKey]tgbotapi.ChatMember

	// RequestErr, если задан, возвращается из Request.
	RequestErr error
}

func New() *FakeAPI {
	return &FakeAPI{members: make(map[memberKey]tgbotapi.ChatMember)}
}

func (f *FakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *FakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, c)
	if f.RequestErr != nil {
		return nil, f.RequestErr
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *FakeAPI) GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.members[memberKey{config.ChatID, config.UserID}]
	if !ok {
		return tgbotapi.ChatMember{}, ErrNoMember
	}
	return m, nil
}

// SetMember регистрирует участника чата со статусом creator/administrator/member/...
func (f *FakeAPI) SetMember(chatID int64, user tgbotapi.User, status string, canRestrict bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := user
	f.members[memberKey{chatID, user.ID}] = tgbotapi.ChatMember{
		User:               &u,
		Status:             status,
		CanRestrictMembers: canRestrict,
	}
}

// Texts возвращает тексты отправленных сообщений по порядку.
func (f *FakeAPI) Texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Text)
	}
	return out
}

// LastText — текст последнего сообщения или "".
func (f *FakeAPI) LastText() string {
	texts := f.Texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// Sent возвращает копию отправленных сообщений.
func (f *FakeAPI) Sent() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

// Restrictions возвращает все вызовы restrictChatMember.
func (f *FakeAPI) Restrictions() []tgbotapi.RestrictChatMemberConfig {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []tgbotapi.RestrictChatMemberConfig
	for _, r := range f.requests {
		if rc, ok := r.(tgbotapi.RestrictChatMemberConfig); ok {
			out = append(out, rc)
		}
	}
	return out
}

// Requests возвращает копию всех запросов.
func (f *FakeAPI) Requests() []tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), f.requests...)
}
