package vk

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Prikur76/quiz-bots/internal/domain"
	"github.com/Prikur76/quiz-bots/internal/engine"
)

func TestSendMessageParams(t *testing.T) {
	var form map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages.send" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		form = r.PostForm
		w.Write([]byte(`{"response":1}`))
	}))
	defer server.Close()

	client := NewClient("token-1", "")
	client.BaseURL = server.URL

	keyboard := &Keyboard{OneTime: true, Buttons: [][]Button{{TextButton("Новый вопрос", ColorPositive)}}}
	if err := client.SendMessage(context.Background(), 42, "привет", keyboard); err != nil {
		t.Fatalf("send: %v", err)
	}

	if got := form["peer_id"]; len(got) != 1 || got[0] != "42" {
		t.Fatalf("peer_id = %v", form["peer_id"])
	}
	if got := form["message"]; len(got) != 1 || got[0] != "привет" {
		t.Fatalf("message = %v", form["message"])
	}
	if got := form["access_token"]; len(got) != 1 || got[0] != "token-1" {
		t.Fatalf("access_token = %v", form["access_token"])
	}
	if len(form["random_id"]) != 1 || form["random_id"][0] == "" {
		t.Fatalf("random_id missing")
	}

	var sent Keyboard
	if err := json.Unmarshal([]byte(form["keyboard"][0]), &sent); err != nil {
		t.Fatalf("keyboard payload: %v", err)
	}
	if !sent.OneTime || sent.Buttons[0][0].Action.Label != "Новый вопрос" {
		t.Fatalf("unexpected keyboard %+v", sent)
	}
}

func TestSendMessageAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"error_code":5,"error_msg":"User authorization failed"}}`))
	}))
	defer server.Close()

	client := NewClient("bad-token", "")
	client.BaseURL = server.URL

	err := client.SendMessage(context.Background(), 1, "x", nil)
	if err == nil {
		t.Fatalf("expected api error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 5 {
		t.Fatalf("expected code 5, got %v", err)
	}
}

func TestPollerDeliversMessages(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/groups.getLongPollServer", func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"response": map[string]string{
			"key":    "k1",
			"server": server.URL + "/poll",
			"ts":     "10",
		}}
		json.NewEncoder(w).Encode(resp)
	})
	polls := 0
	mux.HandleFunc("/poll", func(w http.ResponseWriter, r *http.Request) {
		polls++
		if r.URL.Query().Get("key") != "k1" {
			t.Errorf("unexpected key %q", r.URL.Query().Get("key"))
		}
		if polls == 1 {
			w.Write([]byte(`{"ts":"11","updates":[
				{"type":"message_typing_state","object":{}},
				{"type":"message_new","object":{"message":{"from_id":7,"peer_id":7,"text":"новый вопрос"}}}
			]}`))
			return
		}
		w.Write([]byte(`{"ts":"12","updates":[]}`))
	})

	client := NewClient("t", "")
	client.BaseURL = server.URL

	poller := NewPoller(client, 123, 1, slog.Default())
	poller.retryDelay = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []IncomingMessage
	err := poller.Run(ctx, func(_ context.Context, msg IncomingMessage) {
		got = append(got, msg)
		cancel()
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(got) != 1 || got[0].FromID != 7 || got[0].Text != "новый вопрос" {
		t.Fatalf("unexpected messages %+v", got)
	}
}

func TestPollerRefreshesExpiredKey(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	serverCalls := 0
	mux.HandleFunc("/groups.getLongPollServer", func(w http.ResponseWriter, r *http.Request) {
		serverCalls++
		resp := map[string]any{"response": map[string]string{
			"key":    "k",
			"server": server.URL + "/poll",
			"ts":     "1",
		}}
		json.NewEncoder(w).Encode(resp)
	})
	polls := 0
	mux.HandleFunc("/poll", func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls == 1 {
			w.Write([]byte(`{"failed":2}`))
			return
		}
		w.Write([]byte(`{"ts":"2","updates":[{"type":"message_new","object":{"message":{"from_id":1,"peer_id":1,"text":"x"}}}]}`))
	})

	client := NewClient("t", "")
	client.BaseURL = server.URL
	poller := NewPoller(client, 1, 1, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := poller.Run(ctx, func(_ context.Context, _ IncomingMessage) { cancel() })
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if serverCalls < 2 {
		t.Fatalf("expected longpoll server refresh, got %d calls", serverCalls)
	}
}

func TestKeyboardForReply(t *testing.T) {
	kb := keyboardFor(domain.Reply{Keyboard: []string{engine.ButtonNewQuestion, engine.ButtonGiveUp}})
	if kb == nil || len(kb.Buttons) != 1 || len(kb.Buttons[0]) != 2 {
		t.Fatalf("unexpected keyboard %+v", kb)
	}
	if kb.Buttons[0][0].Color != ColorPositive || kb.Buttons[0][1].Color != ColorNegative {
		t.Fatalf("unexpected colors %+v", kb.Buttons[0])
	}

	removed := keyboardFor(domain.Reply{RemoveKeyboard: true})
	if removed == nil || removed.Buttons[0][0].Action.Label != engine.ButtonStart {
		t.Fatalf("expected start button fallback, got %+v", removed)
	}

	if keyboardFor(domain.Reply{}) != nil {
		t.Fatalf("expected nil keyboard for empty reply")
	}
}
