// ABOUTME: HTTP-level tests for the inbound activity endpoint
// ABOUTME: End-to-end scenarios against fake Genie and transport servers

package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaykit/genie-relay/internal/bot"
	"github.com/relaykit/genie-relay/internal/config"
)

// fakeGenie serves a canned conversation: a completed message that optionally
// carries a tabular query result.
type fakeGenie struct {
	message   map[string]any
	statement string // JSON for the statement fetch; empty disables tabular
}

func (f *fakeGenie) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/2.0/genie/spaces/space-1/start-conversation", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"conversation_id": "conv-1", "message_id": "msg-1"})
	})
	mux.HandleFunc("POST /api/2.0/genie/spaces/space-1/conversations/conv-1/messages", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message_id": "msg-2"})
	})
	mux.HandleFunc("GET /api/2.0/genie/spaces/space-1/conversations/conv-1/messages/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(f.message)
	})
	mux.HandleFunc("GET /api/2.0/genie/spaces/space-1/conversations/conv-1/messages/{id}/query-result", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"statement_response": {"statement_id": "stmt-1"}}`)
	})
	mux.HandleFunc("GET /api/2.0/sql/statements/stmt-1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, f.statement)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// fakeTransport records activities posted back to the chat transport.
type fakeTransport struct {
	activities []bot.Activity
}

func (f *fakeTransport) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var a bot.Activity
		require.NoError(t, json.NewDecoder(r.Body).Decode(&a))
		f.activities = append(f.activities, a)
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(genieHost string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{HTTPAddr: "localhost:0"},
		Genie:  config.GenieConfig{Host: genieHost, Token: "t", SpaceID: "space-1"},
		Sessions: config.SessionsConfig{
			Backend:    config.SessionBackendMemory,
			TTL:        time.Hour,
			MaxEntries: 100,
		},
	}
}

func newTestGateway(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	gw, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { gw.registry.Close() })

	srv := httptest.NewServer(gw.httpServer.Handler)
	t.Cleanup(srv.Close)
	return srv
}

func postActivity(t *testing.T, url string, activity *bot.Activity) *http.Response {
	t.Helper()
	body, err := json.Marshal(activity)
	require.NoError(t, err)
	resp, err := http.Post(url+"/api/messages", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestMessages_RejectsWrongContentType(t *testing.T) {
	srv := newTestGateway(t, testConfig("http://unused.example"))

	resp, err := http.Post(srv.URL+"/api/messages", "text/plain", strings.NewReader("hi"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestMessages_RejectsWrongMethod(t *testing.T) {
	srv := newTestGateway(t, testConfig("http://unused.example"))

	resp, err := http.Get(srv.URL + "/api/messages")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMessages_RejectsMalformedEnvelope(t *testing.T) {
	srv := newTestGateway(t, testConfig("http://unused.example"))

	resp, err := http.Post(srv.URL+"/api/messages", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, bot.DecodeFailureText, body.Error)
}

func TestMessages_RequiresAuthWhenConfigured(t *testing.T) {
	cfg := testConfig("http://unused.example")
	cfg.Transport = config.TransportConfig{AppID: "app-1", AppSecret: "hush"}
	srv := newTestGateway(t, cfg)

	resp := postActivity(t, srv.URL, &bot.Activity{Type: bot.ActivityTypeMessage})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMessages_AcceptsValidToken(t *testing.T) {
	cfg := testConfig("http://unused.example")
	cfg.Transport = config.TransportConfig{AppID: "app-1", AppSecret: "hush"}
	srv := newTestGateway(t, cfg)

	token, err := bot.NewJWTVerifier("app-1", []byte("hush")).Generate(time.Hour)
	require.NoError(t, err)

	// A typing activity needs no backend; it is ignored by the handler.
	body, _ := json.Marshal(&bot.Activity{Type: "typing"})
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/messages", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestMessages_EndToEndTabularOnSlack(t *testing.T) {
	backend := &fakeGenie{
		message: map[string]any{
			"id":              "msg-1",
			"conversation_id": "conv-1",
			"status":          "COMPLETED",
			"query_result":    map[string]string{"statement_id": "stmt-1"},
			"attachments": []map[string]any{
				{"query": map[string]string{"description": "Orders placed today"}},
			},
		},
		statement: `{
			"statement_id": "stmt-1",
			"manifest": {"schema": {"columns": [
				{"name": "channel", "type_name": "STRING"},
				{"name": "orders", "type_name": "BIGINT"}
			]}},
			"result": {"data_array": [["web", "1200"], ["store", "300"]]}
		}`,
	}
	transport := &fakeTransport{}
	transportSrv := transport.server(t)
	srv := newTestGateway(t, testConfig(backend.server(t).URL))

	resp := postActivity(t, srv.URL, &bot.Activity{
		Type:         bot.ActivityTypeMessage,
		ID:           "act-1",
		ChannelID:    "slack",
		ServiceURL:   transportSrv.URL,
		From:         bot.ChannelAccount{ID: "U1"},
		Recipient:    bot.ChannelAccount{ID: "bot-1"},
		Conversation: bot.ConversationAccount{ID: "chat-1"},
		Text:         "how many orders today?",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	require.Len(t, transport.activities, 1)
	reply := transport.activities[0]
	require.NotEmpty(t, reply.Attachments)

	assert.Equal(t, "section", reply.Attachments[0].Type)
	assert.Contains(t, reply.Attachments[0].Text.Text, "Orders placed today")
	assert.Equal(t, "divider", reply.Attachments[1].Type)

	table := reply.Attachments[3].Text.Text
	assert.Contains(t, table, "channel")
	assert.Contains(t, table, "orders")
	assert.Contains(t, table, "1,200")

	// Headers are padded to equal width inside the code fence.
	inner := strings.TrimSuffix(strings.TrimPrefix(table, "```"), "```")
	lines := strings.Split(strings.TrimRight(inner, "\n"), "\n")
	for _, line := range lines[1:] {
		assert.Equal(t, len(lines[0]), len(line))
	}
}

func TestMessages_EndToEndPlainTextOnOtherChannel(t *testing.T) {
	backend := &fakeGenie{
		message: map[string]any{
			"id":              "msg-1",
			"conversation_id": "conv-1",
			"status":          "COMPLETED",
			"attachments": []map[string]any{
				{"text": map[string]string{"content": "Sales were flat this week."}},
			},
		},
	}
	transport := &fakeTransport{}
	transportSrv := transport.server(t)
	srv := newTestGateway(t, testConfig(backend.server(t).URL))

	resp := postActivity(t, srv.URL, &bot.Activity{
		Type:         bot.ActivityTypeMessage,
		ChannelID:    "msteams",
		ServiceURL:   transportSrv.URL,
		From:         bot.ChannelAccount{ID: "U2"},
		Recipient:    bot.ChannelAccount{ID: "bot-1"},
		Conversation: bot.ConversationAccount{ID: "chat-2"},
		Text:         "how are sales?",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	require.Len(t, transport.activities, 1)
	reply := transport.activities[0]
	assert.Empty(t, reply.Attachments)
	assert.Equal(t, "Sales were flat this week.\n\n", reply.Text)
}

func TestHealth(t *testing.T) {
	srv := newTestGateway(t, testConfig("http://unused.example"))

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
