// Package filters отсекает апдейты из чатов, где бот работать не должен.
package filters

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// EventKind — вид апдейта.
type EventKind string

const (
	KindMessage       EventKind = "message"
	KindEditedMessage EventKind = "edited_message"
	KindCallback      EventKind = "callback_query"
	KindChatMember    EventKind = "chat_member"
	KindMyChatMember  EventKind = "my_chat_member"
	KindOther         EventKind = "other"
)

// Event — вид апдейта и чат, к которому он относится.
type Event struct {
	Kind    EventKind
	ChatID  int64
	HasChat bool
}

// Classify определяет вид апдейта и достаёт id чата.
// У callback без сообщения (inline-режим) чата нет.
func Classify(u tgbotapi.Update) Event {
	switch {
	case u.Message != nil:
		return fromMessage(KindMessage, u.Message)
	case u.EditedMessage != nil:
		return fromMessage(KindEditedMessage, u.EditedMessage)
	case u.CallbackQuery != nil:
		return fromMessage(KindCallback, u.CallbackQuery.Message)
	case u.ChatMember != nil:
		return Event{Kind: KindChatMember, ChatID: u.ChatMember.Chat.ID, HasChat: true}
	case u.MyChatMember != nil:
		return Event{Kind: KindMyChatMember, ChatID: u.MyChatMember.Chat.ID, HasChat: true}
	default:
		return Event{Kind: KindOther}
	}
}

func fromMessage(kind EventKind, m *tgbotapi.Message) Event {
	if m == nil || m.Chat == nil {
		return Event{Kind: kind}
	}
	return Event{Kind: kind, ChatID: m.Chat.ID, HasChat: true}
}

// ChatFilter пропускает только апдейты из разрешённых чатов.
// Пустой список — пропускает всё.
type ChatFilter struct {
	allowed map[int64]struct{}
}

func NewChatFilter(allowed []int64) *ChatFilter {
	f := &ChatFilter{}
	if len(allowed) == 0 {
		return f
	}
	f.allowed = make(map[int64]struct{}, len(allowed))
	for _, id := range allowed {
		f.allowed[id] = struct{}{}
	}
	return f
}

// Allow решает, обрабатывать ли апдейт. Отказ ничего никому не отправляет.
func (f *ChatFilter) Allow(ev Event) bool {
	if f.allowed == nil {
		return true
	}

	logger := log.WithFields(log.Fields{
		"component": "ChatFilter",
		"kind":      ev.Kind,
		"chat_id":   ev.ChatID,
	})

	if !ev.HasChat {
		logger.Debug("deny: update without chat")
		return false
	}
	if _, ok := f.allowed[ev.ChatID]; !ok {
		logger.Debug("deny: chat not in allow-list")
		return false
	}
	return true
}

// Restricted — задан ли список разрешённых чатов.
func (f *ChatFilter) Restricted() bool {
	return f.allowed != nil
}
