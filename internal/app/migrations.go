package app

import (
	"gorm.io/gorm"

	"serotonyl.ru/moderator-bot/internal/db"
	"serotonyl.ru/moderator-bot/internal/features/greetings"
	"serotonyl.ru/moderator-bot/internal/features/karma"
	"serotonyl.ru/moderator-bot/internal/features/members"
	"serotonyl.ru/moderator-bot/internal/features/warnings"
)

// Migrations — версии схемы по порядку. Новые добавлять только в конец.
func Migrations() []db.Migration {
	return []db.Migration{
		{Version: 1, Name: "users_chats", Up: autoMigrate(&members.User{}, &members.Chat{})},
		{Version: 2, Name: "karma", Up: autoMigrate(&karma.Karma{}, &karma.Transaction{})},
		{Version: 3, Name: "warnings", Up: autoMigrate(&warnings.Warning{})},
		{Version: 4, Name: "greetings", Up: autoMigrate(&greetings.Greeting{})},
	}
}

func autoMigrate(models ...any) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		return tx.AutoMigrate(models...)
	}
}
