package app

import (
	"context"
	"testing"

	"book_exchange_service/internal/book/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGeosearchWebsocket_TextMessageAction(t *testing.T) {
	ctx := context.Background()
	g := new(MockGeocoder)
	g.On("Resolve", mock.Anything, "gone").Return(domain.Suggestion{}, domain.ErrPlaceNotFound)
	books := new(MockBookRepository)
	geo := newGeo(t, g, books, GeosearchConfig{})
	h := NewGeosearchWebsocketHandler(geo, testDebounce, 25)
	s := NewGeosearchSession(ctx, geo, testDebounce, 25, nil)
	defer s.Close()

	tests := []struct {
		name    string
		msg     string
		reply   bool
		success bool
		action  domain.Action
	}{
		{name: "bad json", msg: `{`, reply: true, action: "error"},
		{name: "unknown", msg: `{"action":"dance"}`, reply: true, action: "error"},
		{name: "input is pushed", msg: `{"action":"input","payload":{"query":"b"}}`, reply: false, action: domain.ActionInput},
		{name: "locate denied", msg: `{"action":"locate","payload":{"denied":true}}`, reply: true, success: true, action: domain.ActionLocate},
		{name: "radius without place", msg: `{"action":"radius","payload":{"index":3}}`, reply: true, success: true, action: domain.ActionRadius},
		{name: "radius out of range", msg: `{"action":"radius","payload":{"index":99}}`, reply: true, action: domain.ActionRadius},
		{name: "select unknown place", msg: `{"action":"select","payload":{"place_id":"gone"}}`, reply: true, action: domain.ActionSelect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, reply := h.textMessageAction(ctx, s, []byte(tt.msg))
			assert.Equal(t, tt.reply, reply)
			if reply {
				assert.Equal(t, tt.success, resp.Success)
				assert.Equal(t, tt.action, resp.Action)
				if !tt.success {
					assert.NotEmpty(t, resp.Error)
				}
			}
		})
	}

	locate, _ := h.textMessageAction(ctx, s, []byte(`{"action":"locate","payload":{"denied":true}}`))
	assert.Equal(t, london, locate.Data)
}
