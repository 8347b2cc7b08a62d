package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"book_exchange_service/internal/chat/domain"
	"book_exchange_service/internal/chat/repository"
	"book_exchange_service/pkg/logger"

	"go.uber.org/zap"
)

// Emitter pushes a server side update to the connected client
type Emitter func(resp domain.WSResponse)

// Session is the view state of one connected viewer: the conversation list,
// the selected conversation and its loaded history, plus the two realtime
// subscriptions scoped to them.
type Session struct {
	viewerID string
	convUC   *ConversationUseCase
	msgUC    *MessageUseCase
	pubSub   repository.PubSub
	emit     Emitter

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	conversations []domain.ConversationSummary
	listVersion   uint64
	selectedID    string
	messages      []domain.Message
	page          int
	hasMore       bool
	generation    uint64
	messageCancel context.CancelFunc
}

// NewSession create Session, emit may be nil
func NewSession(
	parent context.Context,
	viewerID string,
	convUC *ConversationUseCase,
	msgUC *MessageUseCase,
	pubSub repository.PubSub,
	emit Emitter,
) *Session {
	if emit == nil {
		emit = func(domain.WSResponse) {}
	}
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		viewerID: viewerID,
		convUC:   convUC,
		msgUC:    msgUC,
		pubSub:   pubSub,
		emit:     emit,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start subscribes to the viewer participation channel and loads the conversation list
func (s *Session) Start() ([]domain.ConversationSummary, error) {
	err := s.pubSub.Subscribe(s.ctx, domain.ParticipantChannel(s.viewerID), s.handleParticipantEvent)
	if err != nil {
		return nil, err
	}
	return s.Refresh(s.ctx)
}

// Refresh re-aggregates the conversation list. On failure the list becomes empty.
func (s *Session) Refresh(ctx context.Context) ([]domain.ConversationSummary, error) {
	convs, err := s.convUC.ListConversations(ctx, s.viewerID)

	s.mu.Lock()
	if s.selectedID != "" {
		domain.ZeroUnread(convs, s.selectedID)
	}
	s.conversations = convs
	s.listVersion++
	out := domain.CloneSummaries(convs)
	s.mu.Unlock()

	s.emitConversations(out)
	return out, err
}

// Select opens conversationID: the previous message subscription is torn down,
// a new one is established, then page 0 is loaded (which marks the conversation read).
// A viewer outside the conversation gets an error and the current selection is kept.
func (s *Session) Select(ctx context.Context, conversationID string) (domain.MessagePage, error) {
	if err := s.msgUC.CheckAccess(ctx, s.viewerID, conversationID); err != nil {
		return domain.MessagePage{}, err
	}

	s.mu.Lock()
	if s.messageCancel != nil {
		s.messageCancel()
		s.messageCancel = nil
	}
	s.generation++
	gen := s.generation
	s.selectedID = conversationID
	s.messages = nil
	s.page = 0
	s.hasMore = false
	domain.ZeroUnread(s.conversations, conversationID)
	subCtx, cancel := context.WithCancel(s.ctx)
	s.messageCancel = cancel
	s.mu.Unlock()

	// 先訂閱再讀取第一頁，避免中間漏掉訊息
	err := s.pubSub.Subscribe(subCtx, domain.MessageChannel(conversationID), func(ev domain.ChangeEvent) {
		s.handleMessageEvent(gen, conversationID, ev)
	})
	if err != nil {
		s.dropSelection(gen)
		return domain.MessagePage{}, err
	}

	page, err := s.msgUC.FetchPage(ctx, s.viewerID, conversationID, 0)
	if err != nil {
		s.dropSelection(gen)
		return domain.MessagePage{}, err
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return page, nil
	}
	merged := domain.MergePage(nil, page.Messages, false)
	for _, m := range s.messages {
		merged, _ = domain.AppendUnique(merged, m)
	}
	s.messages = merged
	s.hasMore = page.HasMore
	msgs := cloneMessages(merged)
	s.mu.Unlock()

	s.emitMessages(conversationID, msgs, page.HasMore)
	return page, nil
}

// LoadOlder fetches the next older page and prepends it
func (s *Session) LoadOlder(ctx context.Context) (domain.MessagePage, error) {
	s.mu.Lock()
	convID, gen, next, more := s.selectedID, s.generation, s.page+1, s.hasMore
	s.mu.Unlock()

	if convID == "" {
		return domain.MessagePage{}, domain.ErrNoConversationSelected
	}
	if !more {
		return domain.MessagePage{ConversationID: convID, Page: next - 1}, nil
	}

	page, err := s.msgUC.FetchPage(ctx, s.viewerID, convID, next)
	if err != nil {
		return domain.MessagePage{}, err
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return page, nil
	}
	s.messages = domain.MergePage(s.messages, page.Messages, true)
	s.page = next
	s.hasMore = page.HasMore
	msgs := cloneMessages(s.messages)
	s.mu.Unlock()

	s.emitMessages(convID, msgs, page.HasMore)
	return page, nil
}

// Send posts content to the selected conversation.
// The conversation moves to the top of the list before the write; if the write fails
// the list is restored from the snapshot taken before the change.
func (s *Session) Send(ctx context.Context, content string) (domain.Message, error) {
	content, err := domain.NormalizeContent(content)
	if err != nil {
		return domain.Message{}, err
	}

	s.mu.Lock()
	convID := s.selectedID
	if convID == "" {
		s.mu.Unlock()
		return domain.Message{}, domain.ErrNoConversationSelected
	}
	snapshot := domain.CloneSummaries(s.conversations)
	s.conversations = domain.MoveToTop(s.conversations, convID, domain.Message{
		ConversationID: convID,
		UserID:         s.viewerID,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	})
	s.listVersion++
	optimisticVersion := s.listVersion
	optimistic := domain.CloneSummaries(s.conversations)
	s.mu.Unlock()
	s.emitConversations(optimistic)

	msg, err := s.msgUC.SendMessage(ctx, s.viewerID, convID, content)
	if err != nil {
		s.mu.Lock()
		// 若列表已被重新整理則以伺服器結果為準
		restored := s.listVersion == optimisticVersion
		if restored {
			s.conversations = snapshot
			s.listVersion++
		}
		current := domain.CloneSummaries(s.conversations)
		s.mu.Unlock()
		if restored {
			s.emitConversations(current)
		}
		return domain.Message{}, err
	}

	s.mu.Lock()
	s.conversations = domain.MoveToTop(s.conversations, convID, msg)
	s.listVersion++
	current := domain.CloneSummaries(s.conversations)
	appended := false
	if s.selectedID == convID {
		s.messages, appended = domain.AppendUnique(s.messages, msg)
	}
	s.mu.Unlock()

	s.emitConversations(current)
	if appended {
		s.emitMessageNew(msg)
	}
	return msg, nil
}

// Leave closes the selected conversation and its message subscription
func (s *Session) Leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.messageCancel != nil {
		s.messageCancel()
		s.messageCancel = nil
	}
	s.generation++
	s.selectedID = ""
	s.messages = nil
	s.page = 0
	s.hasMore = false
}

// Close tears down every subscription of the session
func (s *Session) Close() {
	s.Leave()
	s.cancel()
}

// Conversations current conversation list
func (s *Session) Conversations() []domain.ConversationSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneSummaries(s.conversations)
}

// Messages loaded history of the selected conversation
func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMessages(s.messages)
}

// SelectedID selected conversation id, empty when none
func (s *Session) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

// HasMore whether older pages exist for the selected conversation
func (s *Session) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

func (s *Session) dropSelection(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	if s.messageCancel != nil {
		s.messageCancel()
		s.messageCancel = nil
	}
	s.generation++
	s.selectedID = ""
	s.messages = nil
	s.page = 0
	s.hasMore = false
}

func (s *Session) handleParticipantEvent(ev domain.ChangeEvent) {
	if ev.Type != domain.EventInsert {
		return
	}
	if _, err := s.Refresh(s.ctx); err != nil {
		logger.Log.Warn("refresh after participant event", zap.String("viewer", s.viewerID), zap.Error(err))
	}
}

func (s *Session) handleMessageEvent(gen uint64, conversationID string, ev domain.ChangeEvent) {
	if ev.Type != domain.EventInsert {
		return
	}
	var msg domain.Message
	if err := json.Unmarshal(ev.Record, &msg); err != nil {
		logger.Log.Error("decode message event", zap.String("conversation", conversationID), zap.Error(err))
		return
	}
	if msg.ConversationID != conversationID {
		return
	}

	s.mu.Lock()
	if s.generation != gen || s.selectedID != conversationID {
		s.mu.Unlock()
		return
	}
	var added bool
	s.messages, added = domain.AppendUnique(s.messages, msg)
	if added {
		s.conversations = domain.MoveToTop(s.conversations, conversationID, msg)
		s.listVersion++
	}
	current := domain.CloneSummaries(s.conversations)
	s.mu.Unlock()

	if !added {
		return
	}
	s.emitMessageNew(msg)
	s.emitConversations(current)

	if msg.UserID != s.viewerID {
		at := time.Now().UTC()
		if msg.CreatedAt.After(at) {
			at = msg.CreatedAt
		}
		if err := s.msgUC.MarkReadAt(s.ctx, s.viewerID, conversationID, at); err != nil {
			logger.Log.Warn("mark read on realtime message", zap.String("conversation", conversationID), zap.Error(err))
		}
	}
}

func (s *Session) emitConversations(convs []domain.ConversationSummary) {
	s.emit(domain.WSResponse{
		Action:  string(domain.PushConversations),
		Success: true,
		Payload: map[string]interface{}{"conversations": convs},
	})
}

func (s *Session) emitMessages(conversationID string, msgs []domain.Message, hasMore bool) {
	s.emit(domain.WSResponse{
		Action:  string(domain.PushMessages),
		Success: true,
		Payload: map[string]interface{}{
			"conversation_id": conversationID,
			"messages":        msgs,
			"has_more":        hasMore,
		},
	})
}

func (s *Session) emitMessageNew(msg domain.Message) {
	s.emit(domain.WSResponse{
		Action:  string(domain.PushMessageNew),
		Success: true,
		Payload: map[string]interface{}{"message": msg},
	})
}

func cloneMessages(msgs []domain.Message) []domain.Message {
	if msgs == nil {
		return nil
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out
}
