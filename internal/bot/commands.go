package bot

import (
	"strings"
)

// commandAliases сводит русские и английские имена к одному.
var commandAliases = map[string]string{
	"start":  "start",
	"help":   "help",
	"помощь": "help",
	"karma":  "karma",
	"карма":  "karma",
	"top":    "top",
	"топ":    "top",
	"warn":   "warn",
	"варн":   "warn",
	"warns":  "warns",
	"варны":  "warns",
	"unwarn": "unwarn",
	"анварн": "unwarn",
	"mute":   "mute",
	"мут":    "mute",
	"unmute": "unmute",
	"размут": "unmute",
}

func (b *Bot) helpText() string {
	var sb strings.Builder
	sb.WriteString("🤖 <b>Бот-модератор</b>\n\n")
	if b.cfg.FeatureKarmaEnabled {
		sb.WriteString("<b>Карма</b>\n")
		sb.WriteString("/karma [@user] — показать карму\n")
		sb.WriteString("/top — топ по карме\n")
		sb.WriteString("Ответьте «спасибо» на сообщение, чтобы начислить карму.\n\n")
	}
	if b.cfg.FeatureModerationEnabled {
		sb.WriteString("<b>Модерация</b> (для администраторов)\n")
		sb.WriteString("/warn [@user] [причина] — выдать предупреждение\n")
		sb.WriteString("/warns [@user] — количество предупреждений\n")
		sb.WriteString("/unwarn [@user] — снять предупреждение\n")
		sb.WriteString("/mute [@user] [часы] — замутить (1–24 ч)\n")
		sb.WriteString("/unmute [@user] — снять мут\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// CommandParser разбирает команды с префиксами / и !.
type CommandParser struct {
	validPrefixes []string
	botUsername   string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser(botUsername string) *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"/", "!"},
		botUsername:   strings.ToLower(botUsername),
	}
}

// ParseCommand разбирает текст на команду и аргументы.
// Команда, адресованная другому боту (/top@other_bot), командой не считается.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	if name, addressee, found := strings.Cut(command, "@"); found {
		if p.botUsername != "" && addressee != p.botUsername {
			return "", nil, false
		}
		command = name
	}
	if command == "" {
		return "", nil, false
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
