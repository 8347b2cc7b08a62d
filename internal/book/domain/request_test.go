package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookRequestCanTransition(t *testing.T) {
	req := BookRequest{OwnerID: "owner", RequesterID: "reader", Status: RequestPending}

	assert.NoError(t, req.CanTransition("owner", RequestAccepted))
	assert.NoError(t, req.CanTransition("owner", RequestDeclined))
	assert.NoError(t, req.CanTransition("reader", RequestCancelled))

	assert.ErrorIs(t, req.CanTransition("reader", RequestAccepted), ErrNotAllowed)
	assert.ErrorIs(t, req.CanTransition("owner", RequestCancelled), ErrNotAllowed)
	assert.ErrorIs(t, req.CanTransition("owner", RequestPending), ErrInvalidTransition)
	assert.ErrorIs(t, req.CanTransition("owner", "lost"), ErrInvalidTransition)

	req.Status = RequestAccepted
	assert.ErrorIs(t, req.CanTransition("owner", RequestDeclined), ErrInvalidTransition)
}

func TestBookRequestCounterpart(t *testing.T) {
	req := BookRequest{OwnerID: "owner", RequesterID: "reader"}
	assert.Equal(t, "reader", req.Counterpart("owner"))
	assert.Equal(t, "owner", req.Counterpart("reader"))
}

func TestMetadataQuery(t *testing.T) {
	assert.True(t, MetadataQuery{}.Empty())
	assert.False(t, MetadataQuery{ISBN: "978-0-14-032872-1"}.Empty())
	assert.Equal(t, "dune||", MetadataQuery{Title: "Dune"}.CacheKey())
	assert.Equal(t, "||9780140328721", MetadataQuery{ISBN: "978-0-14-032872-1"}.CacheKey())
}
