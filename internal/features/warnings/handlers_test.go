package warnings

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"serotonyl.ru/moderator-bot/internal/config"
	"serotonyl.ru/moderator-bot/internal/db/dbtest"
	"serotonyl.ru/moderator-bot/internal/features/admin"
	"serotonyl.ru/moderator-bot/internal/features/members"
	"serotonyl.ru/moderator-bot/internal/tgtest"
)

const botID = int64(999)

var (
	mod      = tgbotapi.User{ID: 1, FirstName: "Mod"}
	violator = tgbotapi.User{ID: target, FirstName: "Петя", UserName: "petya"}
	someone  = tgbotapi.User{ID: 7, FirstName: "Кто-то"}
)

func newHandlerEnv(t *testing.T, botCanRestrict bool) (*Handler, *tgtest.FakeAPI) {
	t.Helper()
	gdb := dbtest.Open(t, &Warning{}, &members.User{}, &members.Chat{})
	cfg := &config.Config{WarnLimit: 2, MuteHours: 24}

	api := tgtest.New()
	api.SetMember(chat, mod, admin.StatusAdministrator, true)
	api.SetMember(chat, violator, admin.StatusMember, false)
	api.SetMember(chat, tgbotapi.User{ID: botID, IsBot: true}, admin.StatusAdministrator, botCanRestrict)

	ms := members.NewService(members.NewRepository(gdb))
	if err := ms.EnsureUser(context.Background(), &violator); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}

	h := NewHandler(NewService(NewRepository(gdb), cfg), admin.NewService(api, botID), ms, api, cfg)
	return h, api
}

func TestHandleWarnEscalates(t *testing.T) {
	ctx := context.Background()
	h, api := newHandlerEnv(t, true)

	h.HandleWarn(ctx, tgtest.Reply(tgtest.Message(chat, mod, "/warn флуд"), violator), []string{"флуд"})
	first := api.LastText()
	for _, part := range []string{"👤 Пользователь: Петя", "📝 Причина: флуд", "<b>1 из 2</b>", "Осталось предупреждений: <b>1</b>"} {
		if !strings.Contains(first, part) {
			t.Errorf("first warn reply lacks %q:\n%s", part, first)
		}
	}
	if len(api.Restrictions()) != 0 {
		t.Fatal("muted before the limit")
	}

	msg := tgtest.Message(chat, mod, "/warn @petya")
	h.HandleWarn(ctx, msg, []string{"@petya"})
	second := api.LastText()
	if !strings.Contains(second, "🔇 Лимит предупреждений достигнут!") ||
		!strings.Contains(second, "🔇 Пользователь получил мут на 24 часа.") {
		t.Errorf("second warn reply:\n%s", second)
	}

	r := api.Restrictions()
	if len(r) != 1 {
		t.Fatalf("restrictions = %d, want 1", len(r))
	}
	if want := msg.Time().Unix() + 24*3600; r[0].UntilDate != want || r[0].UserID != target {
		t.Errorf("restriction = %+v, want user %d until %d", r[0], target, want)
	}
}

func TestHandleWarnWithoutBotRights(t *testing.T) {
	ctx := context.Background()
	h, api := newHandlerEnv(t, false)

	for i := 0; i < 2; i++ {
		h.HandleWarn(ctx, tgtest.Reply(tgtest.Message(chat, mod, "/warn"), violator), nil)
	}

	if got := api.LastText(); !strings.HasSuffix(got, "⚠️ У бота нет прав для ограничения участников.") {
		t.Errorf("reply = %q", got)
	}
	if n, _ := h.service.Count(ctx, target, chat); n != 2 {
		t.Errorf("warnings = %d, want 2", n)
	}
}

func TestHandleWarnMuteFailureKeepsWarning(t *testing.T) {
	ctx := context.Background()
	h, api := newHandlerEnv(t, true)
	api.RequestErr = errors.New("user is an administrator of the chat")

	for i := 0; i < 2; i++ {
		h.HandleWarn(ctx, tgtest.Reply(tgtest.Message(chat, mod, "/warn"), violator), nil)
	}

	if got := api.LastText(); !strings.Contains(got, "⚠️ Не удалось замутить пользователя:") {
		t.Errorf("reply = %q", got)
	}
	if n, _ := h.service.Count(ctx, target, chat); n != 2 {
		t.Errorf("warnings = %d, want 2", n)
	}
}

func TestHandleWarnRejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		msg  *tgbotapi.Message
		want string
	}{
		{"not admin", tgtest.Reply(tgtest.Message(chat, someone, "/warn"), violator), "❌ Эта команда доступна только администраторам!"},
		{"no target", tgtest.Message(chat, mod, "/warn"), warnUsage},
		{"self", tgtest.Reply(tgtest.Message(chat, mod, "/warn"), mod), "❌ Нельзя выдать предупреждение самому себе!"},
		{"bot", tgtest.Reply(tgtest.Message(chat, mod, "/warn"), tgbotapi.User{ID: 55, IsBot: true}), "❌ Нельзя выдать предупреждение боту!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, api := newHandlerEnv(t, true)
			h.HandleWarn(ctx, tt.msg, nil)
			if got := api.LastText(); got != tt.want {
				t.Errorf("reply = %q, want %q", got, tt.want)
			}
			if n, _ := h.service.Count(ctx, target, chat); n != 0 {
				t.Errorf("warning stored on rejection")
			}
		})
	}
}

func TestHandleWarnsAndUnwarn(t *testing.T) {
	ctx := context.Background()
	h, api := newHandlerEnv(t, true)

	h.HandleWarn(ctx, tgtest.Reply(tgtest.Message(chat, mod, "/warn"), violator), nil)

	h.HandleWarns(ctx, tgtest.Reply(tgtest.Message(chat, someone, "/warns"), violator), nil)
	if got := api.LastText(); got != "⚠️ У Петя предупреждений: 1/2" {
		t.Errorf("/warns reply = %q", got)
	}

	h.HandleWarns(ctx, tgtest.Message(chat, someone, "/warns"), nil)
	if got := api.LastText(); got != "⚠️ У Кто-то предупреждений: 0/2" {
		t.Errorf("/warns self reply = %q", got)
	}

	h.HandleUnwarn(ctx, tgtest.Message(chat, mod, "/unwarn @petya"), []string{"@petya"})
	if got := api.LastText(); got != "✅ Предупреждение снято с Петя. Осталось предупреждений: 0/2" {
		t.Errorf("/unwarn reply = %q", got)
	}

	h.HandleUnwarn(ctx, tgtest.Message(chat, someone, "/unwarn @petya"), []string{"@petya"})
	if got := api.LastText(); got != "❌ Эта команда доступна только администраторам!" {
		t.Errorf("/unwarn by non-admin reply = %q", got)
	}
}
