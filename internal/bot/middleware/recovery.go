package middleware

import (
	"fmt"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/moderator-bot/internal/metrics"
)

// RecoverFromPanic ставится через defer в начале обработки апдейта.
// Паника одного апдейта не роняет бота: апдейт считается отброшенным.
func RecoverFromPanic(updateID int) {
	r := recover()
	if r == nil {
		return
	}
	metrics.RecordDropped("panic")
	log.WithFields(log.Fields{
		"component": "panic_recovery",
		"update_id": updateID,
		"panic":     fmt.Sprint(r),
		"stack":     string(debug.Stack()),
	}).Error("ПАНИКА в обработчике апдейта, восстановлено")
}
