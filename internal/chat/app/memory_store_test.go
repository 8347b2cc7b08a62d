package app

import (
	"context"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"book_exchange_service/internal/chat/domain"
	"book_exchange_service/pkg/logger"

	"github.com/google/uuid"
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	os.Exit(m.Run())
}

// memStore in memory conversations, participants and messages
type memStore struct {
	mu         sync.Mutex
	convs      map[string]*domain.Conversation
	convOrder  []string
	parts      map[string][]*domain.Participant
	msgs       map[string][]domain.Message
	profiles   map[string]domain.Profile
	emails     map[string]string
	clock      time.Time
	failInsert error
}

func newMemStore() *memStore {
	return &memStore{
		convs:    map[string]*domain.Conversation{},
		parts:    map[string][]*domain.Participant{},
		msgs:     map[string][]domain.Message{},
		profiles: map[string]domain.Profile{},
		emails:   map[string]string{},
		clock:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) addConversation(users ...string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	s.convs[id] = &domain.Conversation{ID: id, CreatedAt: s.tick()}
	s.convOrder = append(s.convOrder, id)
	for _, u := range users {
		s.parts[id] = append(s.parts[id], &domain.Participant{ConversationID: id, UserID: u})
	}
	return id
}

func (s *memStore) seedMessages(convID, userID string, n int) {
	for i := 0; i < n; i++ {
		_, _ = s.Insert(context.Background(), domain.Message{
			ID:             uuid.New().String(),
			ConversationID: convID,
			UserID:         userID,
			Content:        "msg",
		})
	}
}

func (s *memStore) lastReadAt(convID, userID string) *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.parts[convID] {
		if p.UserID == userID {
			return p.LastReadAt
		}
	}
	return nil
}

func (s *memStore) participant(convID, userID string) *domain.Participant {
	for _, p := range s.parts[convID] {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (s *memStore) ListSummaryRows(_ context.Context, viewerID string) ([]domain.SummaryRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []domain.SummaryRow
	for _, id := range s.convOrder {
		me := s.participant(id, viewerID)
		if me == nil {
			continue
		}
		row := domain.SummaryRow{Conversation: *s.convs[id], LastReadAt: me.LastReadAt}
		for _, p := range s.parts[id] {
			if p.UserID != viewerID {
				row.OtherUserID = p.UserID
				break
			}
		}
		if row.OtherUserID != "" {
			row.OtherFullName = s.profiles[row.OtherUserID].FullName
			row.OtherAvatarRef = s.profiles[row.OtherUserID].AvatarURL
			row.OtherEmail = s.emails[row.OtherUserID]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *memStore) FindByID(_ context.Context, conversationID string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[conversationID]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) IsParticipant(_ context.Context, conversationID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.participant(conversationID, userID) != nil, nil
}

func (s *memStore) StartConversation(_ context.Context, creatorID, otherUserID string, bookID *string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.convOrder {
		if s.participant(id, creatorID) != nil && s.participant(id, otherUserID) != nil && sameBook(s.convs[id].BookID, bookID) {
			return id, false, nil
		}
	}
	id := uuid.New().String()
	now := s.tick()
	s.convs[id] = &domain.Conversation{ID: id, CreatedAt: now, BookID: bookID}
	s.convOrder = append(s.convOrder, id)
	s.parts[id] = []*domain.Participant{
		{ConversationID: id, UserID: creatorID, LastReadAt: &now},
		{ConversationID: id, UserID: otherUserID},
	}
	return id, true, nil
}

func sameBook(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *memStore) FindPage(_ context.Context, conversationID string, offset, limit int) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := append([]domain.Message(nil), s.msgs[conversationID]...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return []domain.Message{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *memStore) Insert(_ context.Context, msg domain.Message) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert != nil {
		return domain.Message{}, s.failInsert
	}
	c, ok := s.convs[msg.ConversationID]
	if !ok {
		return domain.Message{}, domain.ErrConversationNotFound
	}
	msg.CreatedAt = s.tick()
	s.msgs[msg.ConversationID] = append(s.msgs[msg.ConversationID], msg)
	at := msg.CreatedAt
	c.LastMessage = msg.Content
	c.LastMessageAt = &at
	c.LastMessageSenderID = msg.UserID
	return msg, nil
}

func (s *memStore) CountUnread(_ context.Context, viewerID string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int{}
	for _, id := range s.convOrder {
		me := s.participant(id, viewerID)
		if me == nil {
			continue
		}
		out[id] = domain.UnreadCount(s.msgs[id], viewerID, me.LastReadAt)
	}
	return out, nil
}

func (s *memStore) UpdateLastRead(_ context.Context, conversationID, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.participant(conversationID, userID)
	if p == nil {
		return domain.ErrNotParticipant
	}
	if p.LastReadAt == nil || at.After(*p.LastReadAt) {
		t := at
		p.LastReadAt = &t
	}
	return nil
}

// memProfiles profile side of memStore
type memProfiles struct {
	s *memStore
}

func (p memProfiles) FindByID(_ context.Context, userID string) (*domain.Profile, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	prof, ok := p.s.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &prof, nil
}

func (p memProfiles) EnsureProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	p.s.mu.Lock()
	if _, ok := p.s.profiles[userID]; !ok {
		p.s.profiles[userID] = domain.Profile{ID: userID}
	}
	p.s.mu.Unlock()
	return p.FindByID(ctx, userID)
}

// memPubSub delivers events synchronously to live subscribers
type memPubSub struct {
	mu   sync.Mutex
	subs map[string][]memSub
}

type memSub struct {
	ctx     context.Context
	handler func(domain.ChangeEvent)
}

func newMemPubSub() *memPubSub {
	return &memPubSub{subs: map[string][]memSub{}}
}

func (p *memPubSub) Publish(_ context.Context, channel string, event domain.ChangeEvent) error {
	p.mu.Lock()
	var live []memSub
	for _, sub := range p.subs[channel] {
		if sub.ctx.Err() == nil {
			live = append(live, sub)
		}
	}
	p.subs[channel] = live
	p.mu.Unlock()

	for _, sub := range live {
		sub.handler(event)
	}
	return nil
}

func (p *memPubSub) Subscribe(ctx context.Context, channel string, handler func(domain.ChangeEvent)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs[channel] = append(p.subs[channel], memSub{ctx: ctx, handler: handler})
	return nil
}

func (p *memPubSub) count(channel string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, sub := range p.subs[channel] {
		if sub.ctx.Err() == nil {
			n++
		}
	}
	return n
}

type chatFixture struct {
	store  *memStore
	pubSub *memPubSub
	convUC *ConversationUseCase
	msgUC  *MessageUseCase
}

func newChatFixture() *chatFixture {
	store := newMemStore()
	ps := newMemPubSub()
	return &chatFixture{
		store:  store,
		pubSub: ps,
		convUC: NewConversationUseCase(store, store, memProfiles{store}, nil, ps),
		msgUC:  NewMessageUseCase(store, store, store, ps, domain.DefaultPageSize),
	}
}

func (f *chatFixture) session(viewerID string) *Session {
	return NewSession(context.Background(), viewerID, f.convUC, f.msgUC, f.pubSub, nil)
}
