// Package admin проверяет права участников чата и ограничивает их (мут).
// models.go описывает статусы участников и наборы разрешений.
package admin

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Статусы участника чата в Bot API
const (
	StatusCreator       = "creator"
	StatusAdministrator = "administrator"
	StatusMember        = "member"
	StatusRestricted    = "restricted"
	StatusLeft          = "left"
	StatusKicked        = "kicked"
)

// Границы ручного мута (часы)
const (
	DefaultMuteHours = 1
	MinMuteHours     = 1
	MaxMuteHours     = 24
)

// mutedPermissions — ничего нельзя.
func mutedPermissions() *tgbotapi.ChatPermissions {
	return &tgbotapi.ChatPermissions{}
}

// fullPermissions — всё, что можно вернуть через restrictChatMember.
func fullPermissions() *tgbotapi.ChatPermissions {
	return &tgbotapi.ChatPermissions{
		CanSendMessages:       true,
		CanSendMediaMessages:  true,
		CanSendPolls:          true,
		CanSendOtherMessages:  true,
		CanAddWebPagePreviews: true,
		CanChangeInfo:         true,
		CanInviteUsers:        true,
		CanPinMessages:        true,
	}
}
