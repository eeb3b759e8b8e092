//go:build ignore

// generate_hash.go — утилита для генерации Argon2id хеша пароля веб-админки.
// Запуск: go run scripts/generate_hash.go ваш_пароль
//
// Результат вставьте в .env как WEBADMIN_PASSWORD_HASH.
package main

import (
	"fmt"
	"os"

	"serotonyl.ru/moderator-bot/internal/webadmin"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Использование: go run scripts/generate_hash.go <пароль>")
		os.Exit(1)
	}

	hash, err := webadmin.HashPassword(os.Args[1])
	if err != nil {
		fmt.Printf("Ошибка генерации хеша: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Хеш пароля (вставьте в .env как WEBADMIN_PASSWORD_HASH):")
	// в .env знак $ надо экранировать или брать значение в одинарные кавычки
	fmt.Printf("'%s'\n", hash)
}
