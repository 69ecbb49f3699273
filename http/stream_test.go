package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/titan"
	titanhttp "github.com/fwojciec/titan/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkedResponse writes each chunk and flushes, so the client sees them as
// separate reads where the transport allows.
func chunkedResponse(chunks ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for _, c := range chunks {
			_, _ = io.WriteString(w, c)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func streamFrom(t *testing.T, h http.Handler) titan.Stream {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	s, err := titanhttp.New(srv.URL).Stream(context.Background(), titan.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func collectEvents(t *testing.T, s titan.Stream) []titan.Event {
	t.Helper()
	var events []titan.Event
	for {
		evt, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		events = append(events, evt)
	}
	return events
}

func TestStream_EventMapping(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, chunkedResponse(
		`data: {"type":"content","content":"<think>hm","buffer":"<think>hm"}`+"\n\n",
		`data: {"type":"thinking_done","thinking":"hm"}`+"\n\n",
		`data: {"type":"content","content":"</think>Olá"}`+"\n\n",
		`data: {"type":"limit_info","remaining":3,"used":2,"limit":5,"limit_reached":false}`+"\n\n",
		`data: {"type":"error","error":"Limite atingido","action_required":"create_account"}`+"\n\n",
		`data: {"type":"done","final_content":"Olá","thinking":"hm","stats":{"chunks":2}}`+"\n\n",
	))
	assert.Equal(t, titan.StreamStateNew, s.State())

	events := collectEvents(t, s)
	assert.Equal(t, []titan.Event{
		titan.EventContent{Delta: "<think>hm"},
		titan.EventThinkingDone{Thinking: "hm"},
		titan.EventContent{Delta: "</think>Olá"},
		titan.EventLimitInfo{Used: 2, Limit: 5, Remaining: 3},
		titan.EventServerError{Message: "Limite atingido", ActionRequired: titan.ActionCreateAccount},
		titan.EventDone{FinalContent: "Olá", Thinking: "hm"},
	}, events)
	assert.Equal(t, titan.StreamStateComplete, s.State())

	_, err := s.Next()
	assert.ErrorIs(t, err, io.EOF, "Next after completion keeps returning EOF")
}

func TestStream_FramingNoise(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, chunkedResponse(
		": keep-alive\n\n",
		"event: message\r\n",
		`data: {"type":"content","content":"a"}`+"\r\n\r\n",
		"data:{\"type\":\"content\",\"content\":\"no space\"}\n",
		`data: {"type":"heartbeat"}`+"\n",
		`data: {"type":"content","content":""}`+"\n",
		`data: {"type":"content","content":"b"}`,
	))
	assert.Equal(t, []titan.Event{
		titan.EventContent{Delta: "a"},
		titan.EventContent{Delta: "b"},
	}, collectEvents(t, s))
}

func TestStream_MalformedRecordResilience(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, chunkedResponse(
		"data: {not json}\n" + `data: {"type":"content","content":"ok"}` + "\n",
	))
	sess := titan.NewStreamSession()
	var errs []error
	err := titan.Ingest(context.Background(), s, sess, titan.DefaultMarkers, titan.Handler{
		OnTransportError: func(err error) { errs = append(errs, err) },
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", sess.Text())
	assert.True(t, sess.Done())
	assert.Empty(t, errs)
}

func TestStream_RecordSplitAcrossReads(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, chunkedResponse(
		`data: {"type":"content","con`,
		`tent":"joined"}`+"\n",
	))
	assert.Equal(t, []titan.Event{titan.EventContent{Delta: "joined"}}, collectEvents(t, s))
}

func TestStream_OversizedRecordIsSkipped(t *testing.T) {
	t.Parallel()
	huge := `data: {"type":"done","final_content":"` + strings.Repeat("x", 5<<20) + `"}` + "\n"
	s := streamFrom(t, chunkedResponse(
		`data: {"type":"content","content":"before"}`+"\n",
		huge,
		`data: {"type":"content","content":"after"}`+"\n",
	))
	assert.Equal(t, []titan.Event{
		titan.EventContent{Delta: "before"},
		titan.EventContent{Delta: "after"},
	}, collectEvents(t, s))
	assert.Equal(t, titan.StreamStateComplete, s.State())
}

func TestStream_UTF8(t *testing.T) {
	t.Parallel()

	t.Run("multi-byte sequence split across reads", func(t *testing.T) {
		t.Parallel()
		full := `data: {"type":"content","content":"ação 🚀"}` + "\n"
		// Cut inside the four-byte rocket.
		cut := len(full) - 5
		s := streamFrom(t, chunkedResponse(full[:cut], full[cut:]))
		assert.Equal(t, []titan.Event{titan.EventContent{Delta: "ação 🚀"}}, collectEvents(t, s))
	})

	t.Run("leading byte order mark is dropped", func(t *testing.T) {
		t.Parallel()
		s := streamFrom(t, chunkedResponse("\ufeff" + `data: {"type":"content","content":"x"}` + "\n"))
		assert.Equal(t, []titan.Event{titan.EventContent{Delta: "x"}}, collectEvents(t, s))
	})

	t.Run("invalid bytes are replaced", func(t *testing.T) {
		t.Parallel()
		s := streamFrom(t, chunkedResponse("data: {\"type\":\"content\",\"content\":\"a\xffb\"}\n"))
		assert.Equal(t, []titan.Event{titan.EventContent{Delta: "a\ufffdb"}}, collectEvents(t, s))
	})
}

func TestStream_Cancellation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `data: {"type":"content","content":"first"}`+"\n")
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, err := titanhttp.New(srv.URL).Stream(ctx, titan.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	defer s.Close()

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, titan.EventContent{Delta: "first"}, evt)

	cancel()
	_, err = s.Next()
	require.Error(t, err)
	assert.True(t, titan.IsCancellation(err))
	assert.Equal(t, titan.StreamStateClosed, s.State())
}

func TestStream_TruncatedBody(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `data: {"type":"content","content":"cut"}`+"\n")
	}))
	t.Cleanup(srv.Close)

	s, err := titanhttp.New(srv.URL).Stream(context.Background(), titan.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	defer s.Close()

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, titan.EventContent{Delta: "cut"}, evt)

	_, err = s.Next()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.False(t, titan.IsCancellation(err))
	assert.Equal(t, titan.StreamStateError, s.State())
}

func TestStream_Close(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, chunkedResponse(`data: {"type":"content","content":"a"}` + "\n"))
	require.NoError(t, s.Close())
	assert.Equal(t, titan.StreamStateClosed, s.State())

	_, err := s.Next()
	assert.ErrorIs(t, err, titan.ErrStreamClosed)
	assert.NoError(t, s.Close(), "close is idempotent")
}
