// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: интерфейс Telegram API, отправка ответов, русская плюрализация.
package common

import (
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// TelegramAPI — часть *tgbotapi.BotAPI, которой пользуются обработчики.
// В тестах подменяется записывающим фейком.
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Reply отвечает на сообщение в HTML-режиме.
// Текст должен быть уже экранирован там, где в него попадают имена.
func Reply(api TelegramAPI, to *tgbotapi.Message, text string) {
	msg := tgbotapi.NewMessage(to.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyToMessageID = to.MessageID
	if _, err := api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", to.Chat.ID).Error("Ошибка отправки ответа")
	}
}

// SendText отправляет сообщение в чат без привязки к исходному.
func SendText(api TelegramAPI, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// FirstNameOr возвращает имя пользователя или запасной вариант.
func FirstNameOr(u *tgbotapi.User, fallback string) string {
	if u == nil || u.FirstName == "" {
		return fallback
	}
	return u.FirstName
}

// UserName возвращает имя, а если его нет — username.
// Пример: UserName(&User{UserName: "ivan"}) → "ivan"
func UserName(u *tgbotapi.User) string {
	if u == nil {
		return "пользователь"
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.UserName != "" {
		return u.UserName
	}
	return "пользователь"
}

// Escape экранирует текст для ParseMode HTML.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Truncate обрезает строку до n символов (рун), добавляя многоточие.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// FallbackName — имя для пользователя, о котором ничего не известно.
func FallbackName(userID int64) string {
	return fmt.Sprintf("User %d", userID)
}
