package tgtest

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var msgID int

// Message собирает групповое сообщение от пользователя.
func Message(chatID int64, from tgbotapi.User, text string) *tgbotapi.Message {
	msgID++
	u := from
	return &tgbotapi.Message{
		MessageID: msgID,
		From:      &u,
		Chat:      &tgbotapi.Chat{ID: chatID, Type: "supergroup", Title: "test"},
		Date:      int(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Unix()),
		Text:      text,
	}
}

// Reply делает msg ответом на сообщение автора to.
func Reply(msg *tgbotapi.Message, to tgbotapi.User) *tgbotapi.Message {
	orig := Message(msg.Chat.ID, to, "исходное сообщение")
	msg.ReplyToMessage = orig
	return msg
}
