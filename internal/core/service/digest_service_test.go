package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/apoclyps/cr8s/internal/core/domain"
	"github.com/apoclyps/cr8s/internal/core/ports"
)

type stubCrateFinder struct {
	findSinceFn func(ctx context.Context, cutoff time.Time) ([]domain.Crate, error)
}

func (s *stubCrateFinder) FindMultiple(context.Context, int) ([]domain.Crate, error) {
	panic("not used")
}

func (s *stubCrateFinder) FindSince(ctx context.Context, cutoff time.Time) ([]domain.Crate, error) {
	return s.findSinceFn(ctx, cutoff)
}

func (s *stubCrateFinder) Find(context.Context, int64) (*domain.Crate, error) {
	panic("not used")
}

func (s *stubCrateFinder) Create(context.Context, ports.NewCrate) (*domain.Crate, error) {
	panic("not used")
}

func (s *stubCrateFinder) Save(context.Context, int64, ports.NewCrate) (*domain.Crate, error) {
	panic("not used")
}

func (s *stubCrateFinder) Delete(context.Context, int64) error {
	panic("not used")
}

type recordingQueue struct {
	messages []ports.Message
}

func (q *recordingQueue) Enqueue(msg ports.Message) {
	q.messages = append(q.messages, msg)
}

func TestDigestService_SendDigest(t *testing.T) {
	desc := "serialization framework"
	crates := []domain.Crate{
		{ID: 1, Code: "serde", Name: "Serde", Version: "1.0.0", Description: &desc},
		{ID: 2, Code: "tokio", Name: "Tokio", Version: "1.38.0"},
	}

	t.Run("enqueues one message per recipient", func(t *testing.T) {
		svc := NewDigestService(&stubCrateFinder{
			findSinceFn: func(_ context.Context, cutoff time.Time) ([]domain.Crate, error) {
				if time.Since(cutoff) < 23*time.Hour {
					t.Errorf("cutoff %v does not reflect the window", cutoff)
				}
				return crates, nil
			},
		}, zerolog.Nop())

		q := &recordingQueue{}
		count, err := svc.SendDigest(context.Background(), 24*time.Hour,
			[]string{"a@example.com", "b@example.com"}, q)
		if err != nil {
			t.Fatalf("SendDigest() returned error: %v", err)
		}
		if count != 2 {
			t.Errorf("count = %d, want 2", count)
		}
		if len(q.messages) != 2 {
			t.Fatalf("enqueued %d messages, want 2", len(q.messages))
		}
		if q.messages[0].To != "a@example.com" || q.messages[1].To != "b@example.com" {
			t.Errorf("recipients = %q, %q", q.messages[0].To, q.messages[1].To)
		}

		body := q.messages[0].Body
		for _, want := range []string{"Serde 1.0.0 (serde)", "serialization framework", "Tokio 1.38.0 (tokio)"} {
			if !strings.Contains(body, want) {
				t.Errorf("body missing %q:\n%s", want, body)
			}
		}
		if q.messages[0].Body != q.messages[1].Body {
			t.Error("all recipients should receive the same digest")
		}
	})

	t.Run("empty window sends nothing", func(t *testing.T) {
		svc := NewDigestService(&stubCrateFinder{
			findSinceFn: func(context.Context, time.Time) ([]domain.Crate, error) {
				return nil, nil
			},
		}, zerolog.Nop())

		q := &recordingQueue{}
		count, err := svc.SendDigest(context.Background(), time.Hour, []string{"a@example.com"}, q)
		if err != nil {
			t.Fatalf("SendDigest() returned error: %v", err)
		}
		if count != 0 {
			t.Errorf("count = %d, want 0", count)
		}
		if len(q.messages) != 0 {
			t.Errorf("enqueued %d messages, want 0", len(q.messages))
		}
	})

	t.Run("repository failure propagates", func(t *testing.T) {
		repoErr := errors.New("connection refused")
		svc := NewDigestService(&stubCrateFinder{
			findSinceFn: func(context.Context, time.Time) ([]domain.Crate, error) {
				return nil, repoErr
			},
		}, zerolog.Nop())

		q := &recordingQueue{}
		if _, err := svc.SendDigest(context.Background(), time.Hour, []string{"a@example.com"}, q); !errors.Is(err, repoErr) {
			t.Fatalf("SendDigest() error = %v, want repository error", err)
		}
		if len(q.messages) != 0 {
			t.Errorf("enqueued %d messages after failure, want 0", len(q.messages))
		}
	})
}
