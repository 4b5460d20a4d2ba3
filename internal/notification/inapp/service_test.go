package inapp

import (
	"context"
	"testing"
	"time"

	"github.com/y0shih/AlertMe-Nest/platform/apperr"

	"github.com/google/uuid"
)

type memoryStore struct {
	items []Notification
}

func (m *memoryStore) Create(_ context.Context, p CreateParams) (Notification, error) {
	n := Notification{
		ID:           uuid.New(),
		UserID:       p.UserID,
		Title:        p.Title,
		Content:      p.Content,
		ResourceID:   p.ResourceID,
		ResourceType: p.ResourceType,
		Category:     p.Category,
		Priority:     p.Priority,
		CreatedAt:    time.Now(),
	}
	m.items = append(m.items, n)
	return n, nil
}

func (m *memoryStore) List(_ context.Context, userID uuid.UUID, limit, offset int) ([]Notification, int, error) {
	var mine []Notification
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].UserID == userID {
			mine = append(mine, m.items[i])
		}
	}
	total := len(mine)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return mine[offset:end], total, nil
}

func (m *memoryStore) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, item := range m.items {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].UserID == userID {
			m.items[i].IsRead = true
			return nil
		}
	}
	return apperr.NotFoundf("notification", id)
}

func (m *memoryStore) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	for i := range m.items {
		if m.items[i].UserID == userID {
			m.items[i].IsRead = true
		}
	}
	return nil
}

func TestSendDefaultsCategoryAndPriority(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store, nil)

	n, err := svc.Send(context.Background(), SendParams{UserID: uuid.New(), Title: "Task assigned", Content: "Pothole"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if n.Category != CategoryInfo || n.Priority != PriorityNormal {
		t.Fatalf("unexpected defaults %q %q", n.Category, n.Priority)
	}
}

func TestSendRequiresRecipientAndText(t *testing.T) {
	svc := NewService(&memoryStore{}, nil)

	_, err := svc.Send(context.Background(), SendParams{Title: "x", Content: "y"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = svc.Send(context.Background(), SendParams{UserID: uuid.New(), Title: "x"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListPaginatesAndCountsUnread(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store, nil)
	user := uuid.New()
	for i := 0; i < 25; i++ {
		if _, err := svc.Send(context.Background(), SendParams{UserID: user, Title: "t", Content: "c"}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	_, _ = svc.Send(context.Background(), SendParams{UserID: uuid.New(), Title: "t", Content: "c"})

	first, err := svc.List(context.Background(), user, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first.Data) != 20 || first.Pagination.Total != 25 || first.Pagination.TotalPages != 2 {
		t.Fatalf("unexpected page %d items, meta %+v", len(first.Data), first.Pagination)
	}
	if first.Unread != 25 {
		t.Fatalf("expected 25 unread, got %d", first.Unread)
	}

	if err := svc.MarkRead(context.Background(), user, first.Data[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := svc.MarkRead(context.Background(), uuid.New(), first.Data[1].ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for foreign notification, got %v", err)
	}
	if err := svc.MarkAllRead(context.Background(), user); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	after, _ := svc.List(context.Background(), user, 2, 20)
	if after.Unread != 0 || len(after.Data) != 5 {
		t.Fatalf("unexpected state after read-all: unread=%d items=%d", after.Unread, len(after.Data))
	}
}
