// Package karma — detector.go определяет, есть ли в сообщении благодарность.
package karma

import "strings"

// keywords — слова благодарности. Ищутся подстрокой, поэтому короткие формы
// («спс», «thank») покрывают и длинные.
var keywords = []string{
	"спасибо",
	"спс",
	"спасиб",
	"спасибочки",
	"спасибо большое",
	"большое спасибо",
	"огромное спасибо",
	"спасибо огромное",
	"благодарю",
	"благодарствую",
	"благодарность",
	"благодарный",
	"thx",
	"thanks",
	"thank you",
	"thank",
	"thanks a lot",
	"thank you very much",
	"мерси",
	"дякую",
	"дякуємо",
	"дякую тобі",
	"респект",
	"респект и уважуха",
	"уважуха",
	"красавчик",
	"красава",
	"молодец",
	"молодчина",
}

// IsThankYou проверяет, содержит ли текст благодарность. Регистр не важен.
func IsThankYou(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
