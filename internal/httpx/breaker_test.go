package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBreaker_DisabledIsNil(t *testing.T) {
	b := NewBreaker(0, time.Minute, nil)
	require.Nil(t, b, "expected nil breaker for zero threshold")
	assert.NoError(t, b.Allow(), "nil breaker must allow calls")
	b.Record(errors.New("ignored"))
	b.Release()
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_OpenHalfOpenClosed(t *testing.T) {
	now := time.Unix(0, 0)
	b := NewBreaker(2, time.Minute, nil)
	b.now = func() time.Time { return now }

	fail := errors.New("fail")
	b.Record(fail)
	require.Equal(t, StateClosed, b.State(), "one failure should not open the breaker")
	b.Record(fail)
	require.Equal(t, StateOpen, b.State())
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	now = now.Add(2 * time.Minute)
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Allow(), "half-open call %d rejected", i)
		b.Record(nil)
	}
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Unix(0, 0)
	b := NewBreaker(1, time.Second, nil)
	b.now = func() time.Time { return now }

	b.Record(errors.New("fail"))
	now = now.Add(2 * time.Second)
	require.NoError(t, b.Allow())
	b.Record(errors.New("still failing"))
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_ReleaseFreesHalfOpenSlot(t *testing.T) {
	now := time.Unix(0, 0)
	b := NewBreaker(1, time.Second, nil)
	b.now = func() time.Time { return now }

	b.Record(errors.New("fail"))
	now = now.Add(2 * time.Second)
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Allow())
	}
	require.ErrorIs(t, b.Allow(), ErrTooManyRequests)

	b.Release()
	assert.NoError(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
}

func TestDo_CancelledCallsDoNotWedgeHalfOpenBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("hang") != "" {
			<-r.Context().Done()
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	now := time.Unix(0, 0)
	b := NewBreaker(1, time.Second, nil)
	b.now = func() time.Time { return now }
	b.Record(errors.New("fail"))
	require.Equal(t, StateOpen, b.State())
	now = now.Add(2 * time.Second)

	c := New("test", WithBreaker(b))
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?hang=1", nil)
		_, err := c.Do(req)
		cancel()
		require.Error(t, err)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	body, err := c.DoBytes(req)
	require.NoError(t, err, "breaker stayed wedged after cancelled calls")
	assert.Equal(t, "ok", string(body))
}
