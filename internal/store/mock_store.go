package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"example.com/tweetfeed/internal/models"
)

// MockNotificationStore keeps notifications in memory for tests.
type MockNotificationStore struct {
	mu            sync.Mutex
	Notifications map[int64][]models.Notification
	ShouldFail    bool // flag to simulate failures
	Closed        bool
}

// NewMockNotifications initializes an empty mock notification store
func NewMockNotifications() *MockNotificationStore {
	return &MockNotificationStore{
		Notifications: make(map[int64][]models.Notification),
	}
}

func (m *MockNotificationStore) AddNotification(ctx context.Context, n models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errors.New("mock: add notification failed")
	}
	m.Notifications[n.UserID] = append(m.Notifications[n.UserID], n)
	return nil
}

// ListNotifications returns the newest limit notifications of userID
func (m *MockNotificationStore) ListNotifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return nil, errors.New("mock: list notifications failed")
	}

	res := append([]models.Notification(nil), m.Notifications[userID]...)
	sort.SliceStable(res, func(i, j int) bool { return res[i].Created.After(res[j].Created) })
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

// Count returns how many notifications userID has
func (m *MockNotificationStore) Count(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Notifications[userID])
}

func (m *MockNotificationStore) Close() {
	m.mu.Lock()
	m.Closed = true
	m.mu.Unlock()
}

// ---------------------------------------------
// MockStoreFail always returns errors for negative tests
type MockStoreFail struct{}

func (m *MockStoreFail) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	return errors.New("mock store begin tx failed")
}

func (m *MockStoreFail) Close() error { return nil }
