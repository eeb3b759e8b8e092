package karma

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"

	"serotonyl.ru/moderator-bot/internal/config"
	"serotonyl.ru/moderator-bot/internal/db/dbtest"
	"serotonyl.ru/moderator-bot/internal/features/members"
	"serotonyl.ru/moderator-bot/internal/tgtest"
)

var (
	alice = tgbotapi.User{ID: 1, FirstName: "Alice", UserName: "alice"}
	bob   = tgbotapi.User{ID: 2, FirstName: "Bob", UserName: "bob"}
	robot = tgbotapi.User{ID: 3, FirstName: "Robot", IsBot: true}
)

type handlerEnv struct {
	h       *Handler
	api     *tgtest.FakeAPI
	svc     *Service
	members *members.Service
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	gdb := dbtest.Open(t, &Karma{}, &Transaction{}, &members.User{}, &members.Chat{})
	cfg := &config.Config{KarmaCooldownMinutes: 60, KarmaTopLimit: 10}

	svc := NewService(NewRepository(gdb), cfg)
	ms := members.NewService(members.NewRepository(gdb))
	api := tgtest.New()
	return &handlerEnv{
		h:       NewHandler(svc, ms, api, cfg),
		api:     api,
		svc:     svc,
		members: ms,
	}
}

func TestHandleThankYou(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		msg       *tgbotapi.Message
		handled   bool
		wantText  []string
		wantScore int
	}{
		{
			name:      "reply with thanks grants karma",
			msg:       tgtest.Reply(tgtest.Message(chat, alice, "Спасибо большое!"), bob),
			handled:   true,
			wantText:  []string{"✅ Карма начислена Bob! (+1)"},
			wantScore: 1,
		},
		{
			name:     "no keyword",
			msg:      tgtest.Reply(tgtest.Message(chat, alice, "ок"), bob),
			handled:  false,
			wantText: []string{},
		},
		{
			name:     "thanks without reply is ignored",
			msg:      tgtest.Message(chat, alice, "спасибо @bob"),
			handled:  true,
			wantText: []string{},
		},
		{
			name:     "self grant",
			msg:      tgtest.Reply(tgtest.Message(chat, alice, "спс"), alice),
			handled:  true,
			wantText: []string{"❌ Нельзя начислить карму самому себе!"},
		},
		{
			name:     "bot target",
			msg:      tgtest.Reply(tgtest.Message(chat, alice, "thanks"), robot),
			handled:  true,
			wantText: []string{},
		},
		{
			name:     "commands are skipped",
			msg:      tgtest.Reply(tgtest.Message(chat, alice, "/karma спасибо"), bob),
			handled:  false,
			wantText: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newHandlerEnv(t)

			if got := env.h.HandleThankYou(ctx, tt.msg); got != tt.handled {
				t.Errorf("handled = %v, want %v", got, tt.handled)
			}
			if diff := cmp.Diff(tt.wantText, env.api.Texts()); diff != "" {
				t.Errorf("replies mismatch (-want +got):\n%s", diff)
			}
			if score, _ := env.svc.GetScore(ctx, bob.ID, chat); score != tt.wantScore {
				t.Errorf("bob score = %d, want %d", score, tt.wantScore)
			}
		})
	}
}

func TestHandleThankYouCooldownIsSilent(t *testing.T) {
	ctx := context.Background()
	env := newHandlerEnv(t)

	env.h.HandleThankYou(ctx, tgtest.Reply(tgtest.Message(chat, alice, "спасибо"), bob))
	env.h.HandleThankYou(ctx, tgtest.Reply(tgtest.Message(chat, alice, "спасибо ещё раз"), bob))

	if n := len(env.api.Texts()); n != 1 {
		t.Errorf("sent %d messages, want 1", n)
	}
	if score, _ := env.svc.GetScore(ctx, bob.ID, chat); score != 1 {
		t.Errorf("score = %d, want 1", score)
	}
}

func TestHandleKarma(t *testing.T) {
	ctx := context.Background()
	env := newHandlerEnv(t)
	_ = env.members.EnsureUser(ctx, &bob)
	if _, err := env.svc.Grant(ctx, alice.ID, bob.ID, chat); err != nil {
		t.Fatalf("Grant: %v", err)
	}

	env.h.HandleKarma(ctx, tgtest.Message(chat, alice, "/karma"), nil)
	env.h.HandleKarma(ctx, tgtest.Reply(tgtest.Message(chat, alice, "/karma"), bob), nil)
	env.h.HandleKarma(ctx, tgtest.Message(chat, alice, "/karma @Bob"), []string{"@Bob"})
	env.h.HandleKarma(ctx, tgtest.Message(chat, alice, "/karma @ghost"), []string{"@ghost"})

	want := []string{
		"📊 Карма Alice: 0",
		"📊 Карма Bob: 1",
		"📊 Карма Bob: 1",
		"❌ Пользователь не найден. Ответьте на его сообщение.",
	}
	if diff := cmp.Diff(want, env.api.Texts()); diff != "" {
		t.Errorf("replies mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleTop(t *testing.T) {
	ctx := context.Background()
	env := newHandlerEnv(t)

	env.h.HandleTop(ctx, tgtest.Message(chat, alice, "/top"))
	if got := env.api.LastText(); got != "📊 Пока нет данных о карме в этом чате." {
		t.Fatalf("empty top = %q", got)
	}

	_ = env.members.EnsureUser(ctx, &tgbotapi.User{ID: 2, FirstName: "Bob <b>"})
	env.api.SetMember(chat, tgbotapi.User{ID: 5, FirstName: "Carol"}, "member", false)
	_, _ = env.svc.Grant(ctx, 1, 2, chat)
	_, _ = env.svc.Grant(ctx, 3, 2, chat)
	_, _ = env.svc.Grant(ctx, 1, 5, chat)
	_, _ = env.svc.Grant(ctx, 1, 6, chat)

	env.h.HandleTop(ctx, tgtest.Message(chat, alice, "/top"))
	got := env.api.LastText()

	for _, line := range []string{
		"🏆 <b>Топ-10 по карме:</b>",
		"1. Bob &lt;b&gt;: 2 🎯",
		"2. Carol: 1 🎯",
		"3. User 6: 1 🎯",
	} {
		if !strings.Contains(got, line) {
			t.Errorf("top does not contain %q:\n%s", line, got)
		}
	}
}
