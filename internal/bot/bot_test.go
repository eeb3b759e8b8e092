package bot

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"

	"serotonyl.ru/moderator-bot/internal/bot/filters"
	"serotonyl.ru/moderator-bot/internal/bot/middleware"
	"serotonyl.ru/moderator-bot/internal/config"
	"serotonyl.ru/moderator-bot/internal/db/dbtest"
	"serotonyl.ru/moderator-bot/internal/features/admin"
	"serotonyl.ru/moderator-bot/internal/features/greetings"
	"serotonyl.ru/moderator-bot/internal/features/karma"
	"serotonyl.ru/moderator-bot/internal/features/members"
	"serotonyl.ru/moderator-bot/internal/features/warnings"
	"serotonyl.ru/moderator-bot/internal/tgtest"
)

const botID = int64(999)

var (
	anna = tgbotapi.User{ID: 1, FirstName: "Анна", UserName: "anna"}
	ivan = tgbotapi.User{ID: 2, FirstName: "Иван", UserName: "ivan"}
)

func testConfig() *config.Config {
	return &config.Config{
		BotMaxInflight:           4,
		BotUpdateTimeoutSeconds:  1,
		KarmaCooldownMinutes:     60,
		KarmaTopLimit:            10,
		WarnLimit:                3,
		MuteHours:                24,
		GreetingCooldownMinutes:  10,
		RateLimitRequests:        10,
		RateLimitWindow:          time.Minute,
		FeatureKarmaEnabled:      true,
		FeatureModerationEnabled: true,
		FeatureGreetingsEnabled:  true,
	}
}

type fakeUpdater struct {
	ch      chan tgbotapi.Update
	got     tgbotapi.UpdateConfig
	stopped bool
}

func (u *fakeUpdater) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	u.got = cfg
	return u.ch
}

func (u *fakeUpdater) StopReceivingUpdates() { u.stopped = true }

type env struct {
	bot     *Bot
	api     *tgtest.FakeAPI
	updater *fakeUpdater
	members *members.Service
}

func newEnv(t *testing.T, cfg *config.Config, limiter middleware.Limiter) *env {
	t.Helper()

	gdb := dbtest.Open(t,
		&members.User{}, &members.Chat{},
		&karma.Karma{}, &karma.Transaction{},
		&warnings.Warning{}, &greetings.Greeting{},
	)
	api := tgtest.New()

	memberService := members.NewService(members.NewRepository(gdb))
	karmaService := karma.NewService(karma.NewRepository(gdb), cfg)
	warnService := warnings.NewService(warnings.NewRepository(gdb), cfg)
	adminService := admin.NewService(api, botID)
	greetService := greetings.NewService(greetings.NewRepository(gdb), cfg)

	handlers := Handlers{
		Members:   members.NewHandler(memberService),
		Karma:     karma.NewHandler(karmaService, memberService, api, cfg),
		Warnings:  warnings.NewHandler(warnService, adminService, memberService, api, cfg),
		Admin:     admin.NewHandler(adminService, memberService, api),
		Greetings: greetings.NewHandler(greetService, api),
	}

	if limiter == nil {
		rl := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
		t.Cleanup(rl.Close)
		limiter = rl
	}

	updater := &fakeUpdater{ch: make(chan tgbotapi.Update, 8)}
	b := New(api, updater, "moder_bot", cfg, filters.NewChatFilter(cfg.AllowedChatIDs), limiter, handlers)
	return &env{bot: b, api: api, updater: updater, members: memberService}
}

func (e *env) send(msg *tgbotapi.Message) {
	e.bot.handleUpdate(context.Background(), tgbotapi.Update{Message: msg})
}

func TestAllowListDropsForeignChats(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedChatIDs = []int64{100}
	e := newEnv(t, cfg, nil)

	e.send(tgtest.Message(200, anna, "/karma"))
	if texts := e.api.Texts(); len(texts) != 0 {
		t.Fatalf("chat 200 got replies %q", texts)
	}
	if _, err := e.members.GetByID(context.Background(), anna.ID); err == nil {
		t.Error("user from dropped update was registered")
	}

	e.send(tgtest.Message(100, anna, "/karma"))
	want := []string{"📊 Карма Анна: 0"}
	if diff := cmp.Diff(want, e.api.Texts()); diff != "" {
		t.Errorf("replies mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatch(t *testing.T) {
	const chat = int64(-100)

	tests := []struct {
		name  string
		setup func(e *env)
		msgs  []*tgbotapi.Message
		want  []string
	}{
		{
			name: "thank you grants karma, then /karma shows it",
			msgs: []*tgbotapi.Message{
				tgtest.Reply(tgtest.Message(chat, anna, "спасибо большое"), ivan),
				tgtest.Message(chat, ivan, "/karma"),
			},
			want: []string{"✅ Карма начислена Иван! (+1)", "📊 Карма Иван: 1"},
		},
		{
			name: "command addressed to this bot",
			msgs: []*tgbotapi.Message{tgtest.Message(chat, anna, "/top@Moder_Bot")},
			want: []string{"📊 Пока нет данных о карме в этом чате."},
		},
		{
			name: "command addressed to another bot is ignored",
			msgs: []*tgbotapi.Message{tgtest.Message(chat, anna, "/top@other_bot")},
			want: []string{},
		},
		{
			name: "russian alias with bang prefix",
			msgs: []*tgbotapi.Message{tgtest.Message(chat, anna, "!карма")},
			want: []string{"📊 Карма Анна: 0"},
		},
		{
			name: "unknown command is silent",
			msgs: []*tgbotapi.Message{tgtest.Message(chat, anna, "/casino")},
			want: []string{},
		},
		{
			name: "bang-prefixed thank you grants karma",
			msgs: []*tgbotapi.Message{tgtest.Reply(tgtest.Message(chat, anna, "!спасибо"), ivan)},
			want: []string{"✅ Карма начислена Иван! (+1)"},
		},
		{
			name: "exclamations before thank you",
			msgs: []*tgbotapi.Message{tgtest.Reply(tgtest.Message(chat, anna, "!!! спасибо огромное"), ivan)},
			want: []string{"✅ Карма начислена Иван! (+1)"},
		},
		{
			name: "slash-prefixed thank you is not karma",
			msgs: []*tgbotapi.Message{tgtest.Reply(tgtest.Message(chat, anna, "/спасибо"), ivan)},
			want: []string{},
		},
		{
			name: "non-admin warn is rejected",
			setup: func(e *env) {
				e.api.SetMember(chat, anna, "member", false)
			},
			msgs: []*tgbotapi.Message{tgtest.Reply(tgtest.Message(chat, anna, "/warn"), ivan)},
			want: []string{"❌ Эта команда доступна только администраторам!"},
		},
		{
			name: "@username target resolved from registry",
			setup: func(e *env) {
				_ = e.members.EnsureUser(context.Background(), &ivan)
			},
			msgs: []*tgbotapi.Message{tgtest.Message(chat, anna, "/karma @IVAN")},
			want: []string{"📊 Карма Иван: 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, testConfig(), nil)
			if tt.setup != nil {
				tt.setup(e)
			}
			for _, m := range tt.msgs {
				e.send(m)
			}
			if diff := cmp.Diff(tt.want, e.api.Texts()); diff != "" {
				t.Errorf("replies mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFeatureFlags(t *testing.T) {
	cfg := testConfig()
	cfg.FeatureKarmaEnabled = false
	cfg.FeatureModerationEnabled = false
	e := newEnv(t, cfg, nil)

	e.send(tgtest.Message(-100, anna, "/karma"))
	e.send(tgtest.Reply(tgtest.Message(-100, anna, "спасибо"), ivan))
	e.send(tgtest.Message(-100, anna, "/warns"))
	if texts := e.api.Texts(); len(texts) != 0 {
		t.Errorf("disabled features replied %q", texts)
	}

	e.send(tgtest.Message(-100, anna, "/help"))
	if e.api.LastText() == "" {
		t.Error("/help must answer even with features disabled")
	}
}

func TestMessagesRegisterUsers(t *testing.T) {
	e := newEnv(t, testConfig(), nil)
	ctx := context.Background()

	e.send(tgtest.Message(-100, anna, "просто сообщение"))

	join := tgtest.Message(-100, anna, "")
	join.NewChatMembers = []tgbotapi.User{ivan}
	e.send(join)

	for _, id := range []int64{anna.ID, ivan.ID} {
		if _, err := e.members.GetByID(ctx, id); err != nil {
			t.Errorf("user %d not registered: %v", id, err)
		}
	}
	if texts := e.api.Texts(); len(texts) != 0 {
		t.Errorf("plain messages got replies %q", texts)
	}
}

type denyAll struct{ calls int }

func (d *denyAll) Allow(context.Context, int64) bool { d.calls++; return false }
func (d *denyAll) Close()                            {}

func TestRateLimitOnlyCommands(t *testing.T) {
	limiter := &denyAll{}
	e := newEnv(t, testConfig(), limiter)

	e.send(tgtest.Message(-100, anna, "/karma"))
	e.send(tgtest.Reply(tgtest.Message(-100, anna, "спасибо"), ivan))

	// неизвестные команды и благодарности с "!" лимит не тратят
	e.send(tgtest.Message(-100, anna, "/casino"))
	e.send(tgtest.Message(-100, anna, "!привет всем"))

	if limiter.calls != 1 {
		t.Errorf("limiter called %d times, want 1", limiter.calls)
	}
	want := []string{"✅ Карма начислена Иван! (+1)"}
	if diff := cmp.Diff(want, e.api.Texts()); diff != "" {
		t.Errorf("replies mismatch (-want +got):\n%s", diff)
	}
}

func TestGreetingOnChatMember(t *testing.T) {
	e := newEnv(t, testConfig(), nil)
	user := ivan
	upd := tgbotapi.Update{ChatMember: &tgbotapi.ChatMemberUpdated{
		Chat:          tgbotapi.Chat{ID: -100, Type: "supergroup"},
		From:          user,
		OldChatMember: tgbotapi.ChatMember{User: &user, Status: "left"},
		NewChatMember: tgbotapi.ChatMember{User: &user, Status: "member"},
	}}

	e.bot.handleUpdate(context.Background(), upd)

	want := []string{"👋 Добро пожаловать, Иван! (@ivan)"}
	if diff := cmp.Diff(want, e.api.Texts()); diff != "" {
		t.Errorf("greeting mismatch (-want +got):\n%s", diff)
	}
}

func TestCallbackIsAcknowledged(t *testing.T) {
	e := newEnv(t, testConfig(), nil)
	e.bot.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: -100}},
	}})

	reqs := e.api.Requests()
	if len(reqs) != 1 {
		t.Fatalf("got %d requests, want 1", len(reqs))
	}
	cb, ok := reqs[0].(tgbotapi.CallbackConfig)
	if !ok || cb.CallbackQueryID != "cb-1" {
		t.Errorf("request = %#v, want callback answer for cb-1", reqs[0])
	}
}

func TestStartProcessesUpdatesAndStops(t *testing.T) {
	e := newEnv(t, testConfig(), nil)

	e.updater.ch <- tgbotapi.Update{Message: tgtest.Message(-100, anna, "/karma")}
	close(e.updater.ch)

	done := make(chan struct{})
	go func() {
		e.bot.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after the updates channel closed")
	}

	want := []string{tgbotapi.UpdateTypeMessage, tgbotapi.UpdateTypeEditedMessage,
		tgbotapi.UpdateTypeCallbackQuery, tgbotapi.UpdateTypeChatMember}
	if diff := cmp.Diff(want, e.updater.got.AllowedUpdates); diff != "" {
		t.Errorf("AllowedUpdates mismatch (-want +got):\n%s", diff)
	}
	if got := e.api.LastText(); got != "📊 Карма Анна: 0" {
		t.Errorf("reply = %q", got)
	}
}

func TestParseCommand(t *testing.T) {
	p := NewCommandParser("moder_bot")

	tests := []struct {
		text  string
		cmd   string
		args  []string
		isCmd bool
	}{
		{"/karma", "karma", nil, true},
		{"  /WARN @ivan спам  ", "warn", []string{"@ivan", "спам"}, true},
		{"!мут 3", "мут", []string{"3"}, true},
		{"/top@moder_bot", "top", nil, true},
		{"/top@other_bot", "", nil, false},
		{"спасибо", "", nil, false},
		{"/", "", nil, false},
		{".karma", "", nil, false},
	}

	for _, tt := range tests {
		cmd, args, ok := p.ParseCommand(tt.text)
		if cmd != tt.cmd || ok != tt.isCmd || !cmp.Equal(args, tt.args) {
			t.Errorf("ParseCommand(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.text, cmd, args, ok, tt.cmd, tt.args, tt.isCmd)
		}
	}
}
