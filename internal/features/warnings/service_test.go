package warnings

import (
	"context"
	"testing"
	"time"

	"serotonyl.ru/moderator-bot/internal/config"
	"serotonyl.ru/moderator-bot/internal/db/dbtest"
)

const (
	chat   = int64(-100)
	target = int64(42)
)

func newTestService(t *testing.T, limit int) *Service {
	t.Helper()
	svc := NewService(NewRepository(dbtest.Open(t, &Warning{})), &config.Config{WarnLimit: limit})

	// каждое следующее предупреждение на секунду позже
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var n int
	svc.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return svc
}

func TestAddAndRemoveLatest(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, 3)

	for i := 1; i <= 2; i++ {
		n, err := svc.Add(ctx, target, chat, 1, "")
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		if n != i {
			t.Errorf("Add #%d returned %d", i, n)
		}
	}

	// чужой чат не влияет
	if _, err := svc.Add(ctx, target, chat-1, 1, "спам"); err != nil {
		t.Fatalf("Add other chat: %v", err)
	}

	n, err := svc.RemoveLatest(ctx, target, chat)
	if err != nil || n != 1 {
		t.Fatalf("RemoveLatest = %d, %v; want 1", n, err)
	}
	n, _ = svc.RemoveLatest(ctx, target, chat)
	if n != 0 {
		t.Fatalf("RemoveLatest = %d, want 0", n)
	}

	n, err = svc.RemoveLatest(ctx, target, chat)
	if err != nil || n != 0 {
		t.Errorf("RemoveLatest at zero = %d, %v; want 0, nil", n, err)
	}

	if other, _ := svc.Count(ctx, target, chat-1); other != 1 {
		t.Errorf("other chat count = %d, want 1", other)
	}
}

func TestRemoveLatestDeletesNewest(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, 3)

	_, _ = svc.Add(ctx, target, chat, 1, "первое")
	_, _ = svc.Add(ctx, target, chat, 1, "второе")
	if _, err := svc.RemoveLatest(ctx, target, chat); err != nil {
		t.Fatalf("RemoveLatest: %v", err)
	}

	var left []Warning
	if err := svc.repo.db.Find(&left).Error; err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(left) != 1 || left[0].Reason == nil || *left[0].Reason != "первое" {
		t.Errorf("remaining warnings = %+v, want only the first", left)
	}
}

func TestShouldMuteScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, 3)

	for i, admin := range []int64{1, 2, 3} {
		n, err := svc.Add(ctx, target, chat, admin, "")
		if err != nil {
			t.Fatalf("Add: %v", err)
		}

		mute, err := svc.ShouldMute(ctx, target, chat)
		if err != nil {
			t.Fatalf("ShouldMute: %v", err)
		}
		wantMute := i == 2
		if mute != wantMute {
			t.Errorf("after %d warnings ShouldMute = %v, want %v", n, mute, wantMute)
		}
		if i == 2 && n != 3 {
			t.Errorf("third Add returned %d, want 3", n)
		}
	}
}

func TestEmptyReasonIsNull(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, 3)

	_, _ = svc.Add(ctx, target, chat, 1, "   ")

	var w Warning
	if err := svc.repo.db.First(&w).Error; err != nil {
		t.Fatalf("First: %v", err)
	}
	if w.Reason != nil {
		t.Errorf("reason = %q, want nil", *w.Reason)
	}
}
