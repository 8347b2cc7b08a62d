package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"book_exchange_service/internal/book/domain"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
)

func TestRequestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeRequestScenario,
		Options: &godog.Options{
			Paths:  []string{"./featureFiles"},
			Format: "pretty",
			Output: os.Stdout,
		},
	}

	if suite.Run() != 0 {
		t.Fail()
	}
}

// memBooks in memory BookRepository
type memBooks struct {
	mu    sync.Mutex
	books map[string]*domain.Book
}

func (m *memBooks) Create(_ context.Context, b *domain.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[b.ID] = b
	return nil
}

func (m *memBooks) FindByID(_ context.Context, id string) (*domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBooks) ListByOwner(_ context.Context, ownerID string) ([]domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Book
	for _, b := range m.books {
		if b.OwnerID == ownerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memBooks) FindWithDistances(context.Context, domain.GeoPoint, float64, int) ([]domain.BookWithDistance, error) {
	return nil, nil
}

// memRequests in memory RequestRepository with the same pending uniqueness as the table
type memRequests struct {
	mu   sync.Mutex
	rows []*domain.BookRequest
}

func (m *memRequests) Create(_ context.Context, req *domain.BookRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.RequesterID == req.OwnerID {
		return fmt.Errorf("check constraint violated")
	}
	for _, r := range m.rows {
		if r.BookID == req.BookID && r.RequesterID == req.RequesterID && r.Status == domain.RequestPending {
			return domain.ErrAlreadyRequested
		}
	}
	cp := *req
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memRequests) FindByID(_ context.Context, id string) (*domain.BookRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrRequestNotFound
}

func (m *memRequests) FindPending(_ context.Context, bookID, requesterID string) (*domain.BookRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.BookID == bookID && r.RequesterID == requesterID && r.Status == domain.RequestPending {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memRequests) ListByOwner(_ context.Context, ownerID string) ([]domain.BookRequest, error) {
	return m.filter(func(r *domain.BookRequest) bool { return r.OwnerID == ownerID }), nil
}

func (m *memRequests) ListByRequester(_ context.Context, requesterID string) ([]domain.BookRequest, error) {
	return m.filter(func(r *domain.BookRequest) bool { return r.RequesterID == requesterID }), nil
}

func (m *memRequests) filter(keep func(*domain.BookRequest) bool) []domain.BookRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.BookRequest
	for i := len(m.rows) - 1; i >= 0; i-- {
		if keep(m.rows[i]) {
			out = append(out, *m.rows[i])
		}
	}
	return out
}

func (m *memRequests) UpdateStatus(_ context.Context, id string, from, to domain.RequestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id && r.Status == from {
			r.Status = to
			return nil
		}
	}
	return domain.ErrInvalidTransition
}

// memPublisher collects published jobs
type memPublisher struct {
	jobs []domain.NotificationJob
}

func (p *memPublisher) Publish(_ context.Context, job domain.NotificationJob) error {
	p.jobs = append(p.jobs, job)
	return nil
}

// requestWorld state of one scenario
type requestWorld struct {
	users     map[string]string
	titles    map[string]string
	books     *memBooks
	requests  *memRequests
	publisher *memPublisher
	uc        *RequestUseCase
	lastErr   error
}

func newRequestWorld() *requestWorld {
	w := &requestWorld{
		users:     map[string]string{},
		titles:    map[string]string{},
		books:     &memBooks{books: map[string]*domain.Book{}},
		requests:  &memRequests{},
		publisher: &memPublisher{},
	}
	w.uc = NewRequestUseCase(w.books, w.requests, w.publisher)
	return w
}

func (w *requestWorld) user(name string) string {
	if id, ok := w.users[name]; ok {
		return id
	}
	id := uuid.New().String()
	w.users[name] = id
	return id
}

func (w *requestWorld) listsBook(owner, title string) error {
	book := &domain.Book{ID: uuid.New().String(), OwnerID: w.user(owner), Title: title, Available: true}
	w.titles[title] = book.ID
	return w.books.Create(context.Background(), book)
}

func (w *requestWorld) requestBook(reader, title string) error {
	_, w.lastErr = w.uc.RequestBook(context.Background(), w.user(reader), domain.CreateRequestReq{BookID: w.titles[title]})
	return nil
}

func (w *requestWorld) hasRequested(reader, title string) error {
	if _, err := w.uc.RequestBook(context.Background(), w.user(reader), domain.CreateRequestReq{BookID: w.titles[title]}); err != nil {
		return err
	}
	w.publisher.jobs = nil
	return nil
}

func (w *requestWorld) updates(owner, reader, status string) error {
	reqs, _ := w.requests.ListByRequester(context.Background(), w.user(reader))
	if len(reqs) == 0 {
		return fmt.Errorf("%s has no request", reader)
	}
	_, w.lastErr = w.uc.UpdateStatus(context.Background(), w.user(owner), reqs[0].ID, domain.RequestStatus(status))
	return nil
}

func (w *requestWorld) shouldFailWith(msg string) error {
	if w.lastErr == nil {
		return fmt.Errorf("expected error %q, got success", msg)
	}
	if w.lastErr.Error() != msg {
		return fmt.Errorf("expected error %q, got %q", msg, w.lastErr.Error())
	}
	return nil
}

func (w *requestWorld) shouldSucceed() error {
	if w.lastErr != nil {
		return fmt.Errorf("expected success, got %v", w.lastErr)
	}
	return nil
}

func (w *requestWorld) rowCount(n int, title string) error {
	w.requests.mu.Lock()
	defer w.requests.mu.Unlock()
	got := 0
	for _, r := range w.requests.rows {
		if r.BookID == w.titles[title] {
			got++
		}
	}
	if got != n {
		return fmt.Errorf("expected %d requests for %s, got %d", n, title, got)
	}
	return nil
}

func (w *requestWorld) noRows(title string) error {
	return w.rowCount(0, title)
}

func (w *requestWorld) shouldBeNotified(name, kind string) error {
	for _, j := range w.publisher.jobs {
		if j.UserID == w.user(name) && string(j.Type) == kind {
			return nil
		}
	}
	return fmt.Errorf("%s got no %s notification", name, kind)
}

// 註冊 Gherkin 與 Step Definition 的對應
func InitializeRequestScenario(s *godog.ScenarioContext) {
	// 每個 Scenario 都會重新呼叫，狀態不共用
	w := newRequestWorld()

	s.Step(`^"([^"]*)" 上架了書 "([^"]*)"$`, w.listsBook)
	s.Step(`^"([^"]*)" 申請借 "([^"]*)"$`, w.requestBook)
	s.Step(`^"([^"]*)" 已申請借 "([^"]*)"$`, w.hasRequested)
	s.Step(`^"([^"]*)" 將 "([^"]*)" 的申請改為 "([^"]*)"$`, w.updates)
	s.Step(`^應該得到錯誤 "([^"]*)"$`, w.shouldFailWith)
	s.Step(`^申請成功$`, w.shouldSucceed)
	s.Step(`^資料庫中沒有 "([^"]*)" 的申請$`, w.noRows)
	s.Step(`^資料庫中有 (\d+) 筆 "([^"]*)" 的申請$`, w.rowCount)
	s.Step(`^"([^"]*)" 應該收到 "([^"]*)" 通知$`, w.shouldBeNotified)
}
