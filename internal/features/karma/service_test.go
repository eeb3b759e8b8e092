package karma

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"serotonyl.ru/moderator-bot/internal/config"
	"serotonyl.ru/moderator-bot/internal/db/dbtest"
)

const chat = int64(-100)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, *Repository, *clock) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t, &Karma{}, &Transaction{}))
	svc := NewService(repo, &config.Config{KarmaCooldownMinutes: 60})
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc.now = c.now
	return svc, repo, c
}

func TestGetScoreDefaultsToZero(t *testing.T) {
	svc, _, _ := newTestService(t)

	score, err := svc.GetScore(context.Background(), 1, chat)
	if err != nil {
		t.Fatalf("GetScore: %v", err)
	}
	if score != 0 {
		t.Errorf("score = %d, want 0", score)
	}
}

func TestGrantIncrementsByOne(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)

	applied, err := svc.Grant(ctx, 1, 2, chat)
	if err != nil || !applied {
		t.Fatalf("Grant = %v, %v; want true, nil", applied, err)
	}

	score, _ := svc.GetScore(ctx, 2, chat)
	if score != 1 {
		t.Errorf("score = %d, want 1", score)
	}
	n, err := repo.CountTransactions(ctx, 1, 2, chat)
	if err != nil || n != 1 {
		t.Errorf("transactions = %d, %v; want 1", n, err)
	}

	// карма другого чата не тронута
	if other, _ := svc.GetScore(ctx, 2, chat-1); other != 0 {
		t.Errorf("score in other chat = %d, want 0", other)
	}
}

func TestGrantCooldown(t *testing.T) {
	ctx := context.Background()
	svc, repo, c := newTestService(t)

	if ok, err := svc.Grant(ctx, 1, 2, chat); err != nil || !ok {
		t.Fatalf("first grant = %v, %v", ok, err)
	}

	c.t = c.t.Add(30 * time.Minute)
	ok, err := svc.Grant(ctx, 1, 2, chat)
	if err != nil {
		t.Fatalf("second grant: %v", err)
	}
	if ok {
		t.Fatal("second grant inside cooldown was applied")
	}
	if score, _ := svc.GetScore(ctx, 2, chat); score != 1 {
		t.Errorf("score after rejected grant = %d, want 1", score)
	}
	if n, _ := repo.CountTransactions(ctx, 1, 2, chat); n != 1 {
		t.Errorf("transactions after rejected grant = %d, want 1", n)
	}

	// другой даритель кулдауном не ограничен
	if ok, _ := svc.Grant(ctx, 3, 2, chat); !ok {
		t.Error("grant from another user was rejected")
	}

	c.t = c.t.Add(31 * time.Minute)
	if ok, _ := svc.Grant(ctx, 1, 2, chat); !ok {
		t.Error("grant after cooldown was rejected")
	}
	if score, _ := svc.GetScore(ctx, 2, chat); score != 3 {
		t.Errorf("score = %d, want 3", score)
	}
}

func TestTop(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	// user 10: 3 очка, user 20: 1, user 30: 3, user 40: 2
	grants := []struct{ from, to int64 }{
		{1, 10}, {2, 10}, {3, 10},
		{1, 20},
		{1, 30}, {2, 30}, {3, 30},
		{1, 40}, {2, 40},
	}
	for _, g := range grants {
		if ok, err := svc.Grant(ctx, g.from, g.to, chat); err != nil || !ok {
			t.Fatalf("Grant(%d→%d) = %v, %v", g.from, g.to, ok, err)
		}
	}
	if _, err := svc.Grant(ctx, 1, 99, chat-1); err != nil {
		t.Fatalf("Grant in other chat: %v", err)
	}

	got, err := svc.Top(ctx, chat, 3)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	want := []Entry{{UserID: 10, Score: 3}, {UserID: 30, Score: 3}, {UserID: 40, Score: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Top mismatch (-want +got):\n%s", diff)
	}

	all, _ := svc.Top(ctx, chat, 10)
	if len(all) != 4 {
		t.Errorf("Top(10) returned %d entries, want 4", len(all))
	}
}

func TestIsThankYou(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Спасибо!", true},
		{"спс, выручил", true},
		{"Thanks a lot", true},
		{"ну ты КРАСАВЧИК", true},
		{"дякую тобі", true},
		{"привет", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsThankYou(tt.text); got != tt.want {
			t.Errorf("IsThankYou(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
