package titan_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/titan"
	"github.com/fwojciec/titan/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contentClient(deltas ...string) (*mock.ChatClient, *[]titan.ChatRequest) {
	var mu sync.Mutex
	var reqs []titan.ChatRequest
	return &mock.ChatClient{
		StreamFn: func(ctx context.Context, req titan.ChatRequest) (titan.Stream, error) {
			mu.Lock()
			reqs = append(reqs, req)
			mu.Unlock()
			return mock.Content(deltas...), nil
		},
	}, &reqs
}

func TestChat_Send(t *testing.T) {
	t.Parallel()

	t.Run("streams the reply and decorates the message", func(t *testing.T) {
		t.Parallel()
		client, reqs := contentClient("<think>hm</think>", "hello")
		c := titan.NewChat(client, titan.WithReasoning(true))
		var rec recorder

		sess, err := c.Send(context.Background(), "  hi there  ", rec.handler())
		require.NoError(t, err)
		assert.Equal(t, "<think>hm</think>hello", sess.Text())
		assert.True(t, sess.Done())
		assert.Equal(t, []string{"<think>hm</think>hello"}, rec.done)
		require.Len(t, *reqs, 1)
		assert.Equal(t, titan.ChatRequest{Message: "hi there /think", ReasoningEnabled: true}, (*reqs)[0])
		assert.False(t, c.Active())
	})

	t.Run("rejects invalid input without streaming", func(t *testing.T) {
		t.Parallel()
		c := titan.NewChat(&mock.ChatClient{})
		var rec recorder

		_, err := c.Send(context.Background(), "   ", rec.handler())
		assert.ErrorIs(t, err, titan.ErrValidation)

		_, err = c.Send(context.Background(), strings.Repeat("a", titan.MaxMessageLength+1), rec.handler())
		assert.ErrorIs(t, err, titan.ErrValidation)
		assert.Empty(t, rec.errs)
		assert.Zero(t, rec.cancelled)
	})

	t.Run("pre-stream failure is a transport error", func(t *testing.T) {
		t.Parallel()
		apiErr := &titan.APIError{StatusCode: 429, Message: "limit", ActionRequired: titan.ActionCreateAccount}
		c := titan.NewChat(&mock.ChatClient{
			StreamFn: func(ctx context.Context, req titan.ChatRequest) (titan.Stream, error) {
				return nil, apiErr
			},
		})
		var rec recorder

		_, err := c.Send(context.Background(), "hi", rec.handler())
		assert.ErrorIs(t, err, titan.ErrRateLimited)
		require.Len(t, rec.errs, 1)
		var got *titan.APIError
		require.ErrorAs(t, rec.errs[0], &got)
		assert.Equal(t, titan.ActionCreateAccount, got.ActionRequired)
		assert.Zero(t, rec.cancelled)
	})

	t.Run("starts a server session once", func(t *testing.T) {
		t.Parallel()
		sessions := 0
		svc := &mock.Service{
			NewSessionFn: func(ctx context.Context) (string, error) {
				sessions++
				return "sess-1", nil
			},
			StreamFn: func(ctx context.Context, req titan.ChatRequest) (titan.Stream, error) {
				return mock.Content("ok"), nil
			},
		}
		c := titan.NewChat(svc)
		assert.Empty(t, c.SessionID())

		_, err := c.Send(context.Background(), "one", titan.Handler{})
		require.NoError(t, err)
		_, err = c.Send(context.Background(), "two", titan.Handler{})
		require.NoError(t, err)

		assert.Equal(t, 1, sessions)
		assert.Equal(t, "sess-1", c.SessionID())
	})

	t.Run("expired session is replaced on the next send", func(t *testing.T) {
		t.Parallel()
		sessions := 0
		calls := 0
		svc := &mock.Service{
			NewSessionFn: func(ctx context.Context) (string, error) {
				sessions++
				return "sess-" + strconv.Itoa(sessions), nil
			},
			StreamFn: func(ctx context.Context, req titan.ChatRequest) (titan.Stream, error) {
				calls++
				if calls == 1 {
					return nil, &titan.APIError{StatusCode: 401, ActionRequired: titan.ActionInitSession}
				}
				return mock.Content("ok"), nil
			},
		}
		c := titan.NewChat(svc)

		_, err := c.Send(context.Background(), "one", titan.Handler{})
		assert.ErrorIs(t, err, titan.ErrSessionRequired)
		assert.Empty(t, c.SessionID())

		_, err = c.Send(context.Background(), "two", titan.Handler{})
		require.NoError(t, err)
		assert.Equal(t, 2, sessions)
		assert.Equal(t, "sess-2", c.SessionID())
	})

	t.Run("session failure is reported without streaming", func(t *testing.T) {
		t.Parallel()
		svc := &mock.Service{
			NewSessionFn: func(ctx context.Context) (string, error) {
				return "", &titan.APIError{StatusCode: 503, Message: "Sistema ocupado"}
			},
		}
		c := titan.NewChat(svc)
		var rec recorder
		_, err := c.Send(context.Background(), "hi", rec.handler())
		assert.ErrorIs(t, err, titan.ErrUnavailable)
		assert.Len(t, rec.errs, 1)
	})
}

func TestChat_CancelMidStream(t *testing.T) {
	t.Parallel()
	ch := make(chan titan.Event)
	client := &mock.ChatClient{
		StreamFn: func(ctx context.Context, req titan.ChatRequest) (titan.Stream, error) {
			return chanStream(ctx, ch), nil
		},
	}
	c := titan.NewChat(client)
	assert.False(t, c.Cancel(), "nothing to cancel while idle")

	var rec recorder
	errc := make(chan error, 1)
	go func() {
		_, err := c.Send(context.Background(), "hi", rec.handler())
		errc <- err
	}()
	ch <- titan.EventContent{Delta: "par"}
	require.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.chunks) == 1
	}, time.Second, time.Millisecond)
	assert.True(t, c.Active())

	assert.True(t, c.Cancel())
	err := <-errc
	assert.True(t, titan.IsCancellation(err))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Len(t, rec.chunks, 1)
	assert.Equal(t, 1, rec.cancelled)
	assert.Empty(t, rec.errs)
	assert.Empty(t, rec.done)
	assert.False(t, c.Active())
}

func TestChat_CancelNotifiesServer(t *testing.T) {
	t.Parallel()
	ch := make(chan titan.Event)
	notified := make(chan struct{})
	svc := &mock.Service{
		NewSessionFn: func(ctx context.Context) (string, error) { return "s", nil },
		StreamFn: func(ctx context.Context, req titan.ChatRequest) (titan.Stream, error) {
			return chanStream(ctx, ch), nil
		},
		CancelRequestFn: func(ctx context.Context) error {
			close(notified)
			return errors.New("ignored")
		},
	}
	c := titan.NewChat(svc)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Send(context.Background(), "hi", titan.Handler{})
	}()
	ch <- titan.EventContent{Delta: "x"}
	require.True(t, c.Cancel())
	<-done

	select {
	case <-notified:
	case <-time.After(5 * time.Second):
		t.Fatal("server was not notified")
	}
}

func TestChat_NotifyCancel(t *testing.T) {
	t.Parallel()

	t.Run("client without cancel endpoint", func(t *testing.T) {
		t.Parallel()
		c := titan.NewChat(&mock.ChatClient{})
		assert.NoError(t, c.NotifyCancel(context.Background()))
	})

	t.Run("sends the notice and reports failures", func(t *testing.T) {
		t.Parallel()
		var calls int
		c := titan.NewChat(&mock.Service{
			CancelRequestFn: func(ctx context.Context) error {
				calls++
				return errors.New("offline")
			},
		})
		assert.EqualError(t, c.NotifyCancel(context.Background()), "offline")
		assert.Equal(t, 1, calls)
	})
}

func TestChat_SingleSession(t *testing.T) {
	t.Parallel()
	first := make(chan titan.Event)
	var calls int
	var mu sync.Mutex
	client := &mock.ChatClient{
		StreamFn: func(ctx context.Context, req titan.ChatRequest) (titan.Stream, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 1 {
				return chanStream(ctx, first), nil
			}
			return mock.Content("second"), nil
		},
	}
	c := titan.NewChat(client)

	var logMu sync.Mutex
	var log []string
	record := func(s string) {
		logMu.Lock()
		defer logMu.Unlock()
		log = append(log, s)
	}
	firstChunk := make(chan struct{})
	var once sync.Once
	handler := func(name string) titan.Handler {
		return titan.Handler{
			OnChunk: func(titan.SplitResult) {
				record(name + ":chunk")
				if name == "1" {
					once.Do(func() { close(firstChunk) })
				}
			},
			OnCancelled:      func() { record(name + ":cancelled") },
			OnDone:           func(string) { record(name + ":done") },
			OnTransportError: func(error) { record(name + ":error") },
		}
	}

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, _ = c.Send(context.Background(), "first", handler("1"))
	}()
	first <- titan.EventContent{Delta: "x"}
	<-firstChunk

	_, err := c.Send(context.Background(), "second", handler("2"))
	require.NoError(t, err)
	<-firstDone

	logMu.Lock()
	defer logMu.Unlock()
	assert.Equal(t, []string{"1:chunk", "1:cancelled", "2:chunk", "2:done"}, log)
}

func TestChat_Reasoning(t *testing.T) {
	t.Parallel()

	t.Run("local only client", func(t *testing.T) {
		t.Parallel()
		c := titan.NewChat(&mock.ChatClient{})
		assert.False(t, c.Reasoning())
		on, err := c.ToggleReasoning(context.Background())
		require.NoError(t, err)
		assert.True(t, on)
		assert.True(t, c.Reasoning())
	})

	t.Run("server failure still applies locally", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("offline")
		var got []bool
		svc := &mock.Service{
			SetThinkingModeFn: func(ctx context.Context, enabled bool) error {
				got = append(got, enabled)
				return wantErr
			},
		}
		c := titan.NewChat(svc)
		err := c.SetReasoning(context.Background(), true)
		assert.ErrorIs(t, err, wantErr)
		assert.True(t, c.Reasoning())
		assert.Equal(t, []bool{true}, got)
	})

	t.Run("mode drives decoration", func(t *testing.T) {
		t.Parallel()
		client, reqs := contentClient("ok")
		c := titan.NewChat(client)
		_, err := c.Send(context.Background(), "q", titan.Handler{})
		require.NoError(t, err)
		assert.Equal(t, "q /no_think", (*reqs)[0].Message)
		assert.False(t, (*reqs)[0].ReasoningEnabled)
	})
}

func TestChat_Conversations(t *testing.T) {
	t.Parallel()
	ids := []string{"a", "b", "c"}
	next := 0
	cleared := 0
	svc := &mock.Service{
		NewSessionFn: func(ctx context.Context) (string, error) { return "s", nil },
		StreamFn: func(ctx context.Context, req titan.ChatRequest) (titan.Stream, error) {
			return mock.Content("ok"), nil
		},
		ClearHistoryFn: func(ctx context.Context) error {
			cleared++
			return nil
		},
	}
	c := titan.NewChat(svc, titan.WithIDFunc(func() string {
		id := ids[next]
		next++
		return id
	}))
	ctx := context.Background()
	assert.Equal(t, "a", c.ConversationID())

	_, err := c.Send(ctx, "first   question", titan.Handler{})
	require.NoError(t, err)
	_, err = c.Send(ctx, "follow up", titan.Handler{})
	require.NoError(t, err)

	require.NoError(t, c.NewConversation(ctx))
	assert.Equal(t, "b", c.ConversationID())
	assert.Equal(t, 1, cleared)

	_, err = c.Send(ctx, "second topic", titan.Handler{})
	require.NoError(t, err)

	recent := c.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].ID)
	assert.Equal(t, "second topic", recent[0].Title)
	assert.Equal(t, "a", recent[1].ID)
	assert.Equal(t, "first question", recent[1].Title)
}

func TestChat_Vote(t *testing.T) {
	t.Parallel()

	t.Run("unsupported client", func(t *testing.T) {
		t.Parallel()
		c := titan.NewChat(&mock.ChatClient{})
		err := c.Vote(context.Background(), titan.RatingLike, "answer")
		assert.ErrorIs(t, err, errors.ErrUnsupported)
	})

	t.Run("submits with session", func(t *testing.T) {
		t.Parallel()
		var got titan.Vote
		svc := &mock.Service{
			NewSessionFn: func(ctx context.Context) (string, error) { return "sess", nil },
			StreamFn: func(ctx context.Context, req titan.ChatRequest) (titan.Stream, error) {
				return mock.Content("ok"), nil
			},
			SubmitVoteFn: func(ctx context.Context, v titan.Vote) error {
				got = v
				return nil
			},
		}
		c := titan.NewChat(svc)
		_, err := c.Send(context.Background(), "hi", titan.Handler{})
		require.NoError(t, err)

		require.NoError(t, c.Vote(context.Background(), titan.RatingDislike, "ok"))
		assert.Equal(t, titan.RatingDislike, got.Rating)
		assert.Equal(t, "ok", got.Content)
		assert.Equal(t, "sess", got.SessionID)
		assert.False(t, got.Timestamp.IsZero())
	})
}
