package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDomainLimiter_PerHostBuckets(t *testing.T) {
	dl := NewDomainLimiter(1, 1)

	assert.True(t, dl.Allow("https://a.example.com/x"))
	assert.False(t, dl.Allow("https://a.example.com/y"))
	assert.True(t, dl.Allow("https://b.example.com/"))
	assert.Equal(t, 2, dl.Hosts())
}

func TestDomainLimiter_WaitHonoursContext(t *testing.T) {
	dl := NewDomainLimiter(0.001, 1)
	assert.NoError(t, dl.Wait(context.Background(), "https://slow.example.com"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, dl.Wait(ctx, "https://slow.example.com"))
}

func TestDomainLimiter_InvalidURLPasses(t *testing.T) {
	dl := NewDomainLimiter(1, 1)
	assert.NoError(t, dl.Wait(context.Background(), "://bad"))
	assert.True(t, dl.Allow("://bad"))
	assert.Equal(t, 0, dl.Hosts())
}

func TestUnlimited(t *testing.T) {
	var u Unlimited
	assert.True(t, u.Allow("https://x"))
	assert.NoError(t, u.Wait(context.Background(), "https://x"))
}
