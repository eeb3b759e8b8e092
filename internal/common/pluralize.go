// Package common — pluralize.go содержит вспомогательные функции
// для правильного склонения русских числительных.
package common

import "fmt"

// pluralize выбирает форму слова для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → one (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → few (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → many (0, 5-20, 25-30, 100, ...)
func pluralize(n int, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	lastDigit := n % 10
	lastTwoDigits := n % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return one
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return few
	}
	return many
}

// PluralizeHours возвращает правильную форму слова «час».
//
//	PluralizeHours(1)  → "час"
//	PluralizeHours(3)  → "часа"
//	PluralizeHours(12) → "часов"
//	PluralizeHours(21) → "час"
func PluralizeHours(n int) string {
	return pluralize(n, "час", "часа", "часов")
}

// FormatHours создаёт строку вида "3 часа".
func FormatHours(n int) string {
	return fmt.Sprintf("%d %s", n, PluralizeHours(n))
}
