// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота и веб-админки.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки выбора цели команды
var (
	// ErrNoTarget — команда без ответа на сообщение и без @username
	ErrNoTarget = errors.New("не указан пользователь")
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrSelfAction — попытка применить команду к самому себе
	ErrSelfAction = errors.New("нельзя применить команду к самому себе")
	// ErrTargetIsBot — цель команды бот
	ErrTargetIsBot = errors.New("нельзя применить команду к боту")
)

// Ошибки прав
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrBotCannotRestrict — у бота нет права ограничивать участников
	ErrBotCannotRestrict = errors.New("у бота нет прав для ограничения участников")
)

// Ошибки веб-админки
var (
	// ErrItemNotFound — элемент коллекции не найден по id
	ErrItemNotFound = errors.New("элемент не найден")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
)
