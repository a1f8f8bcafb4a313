package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"zen-backend/internal/models"
	"zen-backend/internal/services"
)

type fakeTransport struct {
	mu       sync.Mutex
	requests []models.ChatRequest
	started  chan struct{}
	release  chan struct{}
	reply    string
	err      error
	waitCtx  bool
}

func (f *fakeTransport) Send(ctx context.Context, req models.ChatRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.waitCtx {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type pendingRecorder struct {
	mu     sync.Mutex
	events []bool
}

func (p *pendingRecorder) record(pending bool) {
	p.mu.Lock()
	p.events = append(p.events, pending)
	p.mu.Unlock()
}

func (p *pendingRecorder) get() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.events...)
}

func TestConversation_StartsWithGreeting(t *testing.T) {
	c := NewConversation(&fakeTransport{}, 0)

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.True(t, msgs[0].Local)
	assert.Equal(t, StatusConnecting, c.Status())
	assert.Equal(t, DefaultTimeout, c.timeout)
}

func TestConversation_TimeoutCappedAtRelayDeadline(t *testing.T) {
	c := NewConversation(&fakeTransport{}, time.Minute)
	assert.Equal(t, services.DefaultChatTimeout, c.timeout)
}

func TestConversation_Success(t *testing.T) {
	transport := &fakeTransport{reply: "[NEURA]: Que bom que você escreveu. 🌸"}
	c := NewConversation(transport, time.Second)
	pending := &pendingRecorder{}
	c.OnPending(pending.record)

	msg, sent := c.Send(context.Background(), "  Estou <b>cansado</b>  ")

	require.True(t, sent)
	assert.Equal(t, "Que bom que você escreveu. 🌸", msg.Text)
	assert.False(t, msg.Local)
	assert.Equal(t, StatusConnected, c.Status())
	assert.Equal(t, []bool{true, false}, pending.get())
	assert.Equal(t, "Estou cansado", transport.requests[0].Message)
	assert.Empty(t, transport.requests[0].History, "the greeting is not sent as history")

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.Equal(t, "Estou cansado", msgs[1].Text)
}

func TestConversation_EmptyInputIsNoop(t *testing.T) {
	transport := &fakeTransport{reply: "oi"}
	c := NewConversation(transport, time.Second)
	pending := &pendingRecorder{}
	c.OnPending(pending.record)

	for _, text := range []string{"", "   ", "<script>x</script>"} {
		_, sent := c.Send(context.Background(), text)
		assert.False(t, sent, "%q", text)
	}
	assert.Zero(t, transport.calls())
	assert.Empty(t, pending.get())
	assert.Len(t, c.Messages(), 1)
}

func TestConversation_SingleInFlight(t *testing.T) {
	transport := &fakeTransport{
		reply:   "oi",
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	c := NewConversation(transport, 5*time.Second)

	done := make(chan bool)
	go func() {
		_, sent := c.Send(context.Background(), "primeira")
		done <- sent
	}()
	<-transport.started
	assert.True(t, c.Pending())

	_, sent := c.Send(context.Background(), "segunda")
	assert.False(t, sent)
	assert.Equal(t, 1, transport.calls())

	close(transport.release)
	assert.True(t, <-done)
	assert.False(t, c.Pending())

	// Once idle again a new send goes through.
	transport.started = nil
	transport.release = nil
	_, sent = c.Send(context.Background(), "terceira")
	assert.True(t, sent)
	assert.Equal(t, 2, transport.calls())
}

func TestConversation_AbortAppendsOneNotice(t *testing.T) {
	defer goleak.VerifyNone(t)

	transport := &fakeTransport{waitCtx: true}
	c := NewConversation(transport, 20*time.Millisecond)
	pending := &pendingRecorder{}
	c.OnPending(pending.record)

	start := time.Now()
	msg, sent := c.Send(context.Background(), "oi")

	require.True(t, sent)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, []bool{true, false}, pending.get(), "pending cleared exactly once")
	assert.Equal(t, StatusError, c.Status())

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assistant := 0
	for _, m := range msgs[1:] {
		if m.Role == RoleAssistant {
			assistant++
		}
	}
	assert.Equal(t, 1, assistant)
	assert.Equal(t, msg, msgs[2])
	assert.Contains(t, msg.Text, "CVV (188)")
	assert.Contains(t, msg.Text, "demorou")
	assert.True(t, msg.Local)
}

func TestConversation_FailureNoticesStayOutOfHistory(t *testing.T) {
	transport := &fakeTransport{err: &Error{Status: 503, Code: models.CodeNetwork}}
	c := NewConversation(transport, time.Second)

	c.Send(context.Background(), "primeira")
	assert.Equal(t, StatusError, c.Status())

	transport.err = nil
	transport.reply = "Olá!"
	c.Send(context.Background(), "segunda")
	assert.Equal(t, StatusConnected, c.Status(), "a successful call flips the status back")

	c.Send(context.Background(), "terceira")
	history := transport.requests[2].History
	require.Len(t, history, 2, "the unanswered first message is left out")
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "segunda", history[0].Parts[0].Text)
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, "Olá!", history[1].Parts[0].Text)

	// The transcript on screen still shows every message.
	assert.Len(t, c.Messages(), 7)
}

func TestConversation_HistoryAlternatesAfterFailures(t *testing.T) {
	transport := &fakeTransport{reply: "Oi!"}
	c := NewConversation(transport, time.Second)

	c.Send(context.Background(), "um")
	transport.err = &Error{Status: 500, Code: models.CodeInternal}
	c.Send(context.Background(), "dois")
	c.Send(context.Background(), "três")
	transport.err = nil
	c.Send(context.Background(), "quatro")

	history := transport.requests[3].History
	require.Len(t, history, 2)
	for i, entry := range history {
		want := "user"
		if i%2 == 1 {
			want = "model"
		}
		assert.Equal(t, want, entry.Role, "entry %d", i)
	}
	assert.Equal(t, "um", history[0].Parts[0].Text)
}

func TestFailureText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limit", &Error{Code: models.CodeRateLimitExceeded}, "Aguarde"},
		{"too long", &Error{Code: models.CodeMessageTooLong}, "muito longa"},
		{"filtered", &Error{Code: models.CodeContentFiltered}, "reformulá-la"},
		{"config", &Error{Code: models.CodeAPIConfig}, "dificuldades técnicas"},
		{"no code", &Error{Status: 502}, "dificuldades técnicas"},
		{"deadline", context.DeadlineExceeded, "demorou"},
		{"transport", errors.New("dial tcp: connection refused"), "conexão"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			text := FailureText(tc.err)
			assert.Contains(t, text, tc.want)
			assert.Contains(t, text, "CVV (188)")
		})
	}
}

func TestHTTPTransport_PassesThroughRelayCodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req models.ChatRequest
		json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		if req.Message == "limite" {
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Muitas tentativas.", Code: models.CodeRateLimitExceeded})
			return
		}
		json.NewEncoder(w).Encode(models.ChatResponse{Response: "eco: " + req.Message})
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL, srv.Client())

	reply, err := transport.Send(context.Background(), models.ChatRequest{Message: "oi"})
	require.NoError(t, err)
	assert.Equal(t, "eco: oi", reply)

	_, err = transport.Send(context.Background(), models.ChatRequest{Message: "limite"})
	var relayErr *Error
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, http.StatusTooManyRequests, relayErr.Status)
	assert.Equal(t, models.CodeRateLimitExceeded, relayErr.Code)
}

func TestHTTPTransport_HealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.HealthResponse{Status: "OK", GeminiConfigured: true})
	}))
	defer srv.Close()

	health, err := NewHTTPTransport(srv.URL, nil).HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OK", health.Status)
	assert.True(t, health.GeminiConfigured)
}

func TestHTTPTransport_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewConversation(NewHTTPTransport(url, nil), time.Second)
	msg, sent := c.Send(context.Background(), "oi")

	require.True(t, sent)
	assert.Contains(t, msg.Text, "conexão")
	assert.True(t, strings.HasSuffix(msg.Text, "💙"))
	assert.Equal(t, StatusError, c.Status())
}

type echoProvider struct{}

func (echoProvider) SendChat(ctx context.Context, history []models.HistoryEntry, message string) (string, error) {
	return "Neura: recebi " + message, nil
}

func (echoProvider) Ping(ctx context.Context) (string, error) { return "Teste OK", nil }

func TestDirectTransport(t *testing.T) {
	relay := services.NewRelayService(echoProvider{}, time.Second, true, zap.NewNop())
	c := NewConversation(NewDirectTransport(relay), time.Second)

	msg, sent := c.Send(context.Background(), "oi")
	require.True(t, sent)
	assert.Equal(t, "recebi oi", msg.Text)

	unconfigured := services.NewRelayService(nil, time.Second, true, zap.NewNop())
	_, err := NewDirectTransport(unconfigured).Send(context.Background(), models.ChatRequest{Message: "oi"})
	var relayErr *Error
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, models.CodeAPIConfig, relayErr.Code)
}
