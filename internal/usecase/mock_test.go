//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"telegram-media-relay/internal/domain"
	"telegram-media-relay/internal/domain/model"
	"telegram-media-relay/internal/domain/ports/adapter"
	"telegram-media-relay/internal/infra/i18n"
)

// -----------------------------
// Mock transport
// -----------------------------

// sentItem captures one outbound send, whatever its kind.
type sentItem struct {
	Kind    string // "text" | "buttons" | "photo" | "video"
	ChatID  int64
	Text    string
	Rows    [][]adapter.InlineButton
	FileID  string
	Caption string
	Button  *model.InlineButton
}

// MockBot implements adapter.BotAdapter and records everything sent.
type MockBot struct {
	mu       sync.Mutex
	Sent     []sentItem
	Answered []string

	SendMessageFunc      func(ctx context.Context, chatID int64, text string) error
	SendPhotoFunc        func(ctx context.Context, chatID int64, fileID, caption string, button *model.InlineButton) error
	SendVideoFunc        func(ctx context.Context, chatID int64, fileID, caption string, button *model.InlineButton) error
	ChatMemberStatusFunc func(ctx context.Context, channel string, chatID int64) (adapter.MemberStatus, error)
}

var _ adapter.BotAdapter = (*MockBot)(nil)

func (m *MockBot) record(item sentItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, item)
}

// SentItems returns a snapshot of everything sent so far.
func (m *MockBot) SentItems() []sentItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentItem, len(m.Sent))
	copy(out, m.Sent)
	return out
}

func (m *MockBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	if m.SendMessageFunc != nil {
		if err := m.SendMessageFunc(ctx, chatID, text); err != nil {
			return err
		}
	}
	m.record(sentItem{Kind: "text", ChatID: chatID, Text: text})
	return nil
}

func (m *MockBot) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	m.record(sentItem{Kind: "buttons", ChatID: chatID, Text: text, Rows: rows})
	return nil
}

func (m *MockBot) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, button *model.InlineButton) error {
	if m.SendPhotoFunc != nil {
		if err := m.SendPhotoFunc(ctx, chatID, fileID, caption, button); err != nil {
			return err
		}
	}
	m.record(sentItem{Kind: "photo", ChatID: chatID, FileID: fileID, Caption: caption, Button: button})
	return nil
}

func (m *MockBot) SendVideo(ctx context.Context, chatID int64, fileID, caption string, button *model.InlineButton) error {
	if m.SendVideoFunc != nil {
		if err := m.SendVideoFunc(ctx, chatID, fileID, caption, button); err != nil {
			return err
		}
	}
	m.record(sentItem{Kind: "video", ChatID: chatID, FileID: fileID, Caption: caption, Button: button})
	return nil
}

func (m *MockBot) AnswerCallback(ctx context.Context, callbackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Answered = append(m.Answered, callbackID)
	return nil
}

func (m *MockBot) ChatMemberStatus(ctx context.Context, channel string, chatID int64) (adapter.MemberStatus, error) {
	if m.ChatMemberStatusFunc != nil {
		return m.ChatMemberStatusFunc(ctx, channel, chatID)
	}
	return adapter.MemberMember, nil
}

// -----------------------------
// Mock repositories
// -----------------------------

// MockRecipientRepo is a small in-memory recipient store keyed by chat id.
type MockRecipientRepo struct {
	mu    sync.RWMutex
	store map[int64]*model.Recipient

	UpsertFunc  func(ctx context.Context, r *model.Recipient) error
	ListAllFunc func(ctx context.Context) ([]*model.Recipient, error)
}

func NewMockRecipientRepo() *MockRecipientRepo {
	return &MockRecipientRepo{store: make(map[int64]*model.Recipient)}
}

func (m *MockRecipientRepo) Upsert(ctx context.Context, r *model.Recipient) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.store[r.ChatID]; ok {
		existing.Username = r.Username
		existing.LastSeenAt = r.LastSeenAt
		return nil
	}
	cp := *r
	m.store[r.ChatID] = &cp
	return nil
}

func (m *MockRecipientRepo) FindByChatID(ctx context.Context, chatID int64) (*model.Recipient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.store[chatID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MockRecipientRepo) ListAll(ctx context.Context) ([]*model.Recipient, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Recipient, 0, len(m.store))
	for _, r := range m.store {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockRecipientRepo) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

// Seed inserts a recipient directly, bypassing Upsert overrides.
func (m *MockRecipientRepo) Seed(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, _ := model.NewRecipient(chatID, "")
	m.store[chatID] = r
}

// -----------------------------
// Mock resolver and dispatcher
// -----------------------------

type MockResolver struct {
	ResolveFunc func(ctx context.Context, url string) (*model.ResolvedLink, error)
	Calls       []string
}

func (m *MockResolver) Resolve(ctx context.Context, url string) (*model.ResolvedLink, error) {
	m.Calls = append(m.Calls, url)
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, url)
	}
	return &model.ResolvedLink{}, nil
}

// dispatchCall captures one Dispatch invocation.
type dispatchCall struct {
	Content model.BroadcastContent
	Button  *model.InlineButton
}

type MockBroadcastUC struct {
	mu    sync.Mutex
	Calls []dispatchCall

	DispatchFunc func(ctx context.Context, content model.BroadcastContent, button *model.InlineButton) (*model.DeliveryReport, error)
}

func (m *MockBroadcastUC) Dispatch(ctx context.Context, content model.BroadcastContent, button *model.InlineButton) (*model.DeliveryReport, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, dispatchCall{Content: content, Button: button})
	m.mu.Unlock()
	if m.DispatchFunc != nil {
		return m.DispatchFunc(ctx, content, button)
	}
	report := model.NewDeliveryReport()
	report.Attempted = 1
	report.Delivered = 1
	return report, nil
}

// -----------------------------
// Utilities
// -----------------------------

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// newTestTranslator loads the real embedded English catalog so assertions
// match the strings users see.
func newTestTranslator() *i18n.Translator {
	translator, _ := i18n.NewTranslator(i18n.LocalesFS, "en")
	return translator
}
