package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus/hooks/test"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func TestTelegram_Notify(t *testing.T) {
	log, _ := test.NewNullLogger()
	fake := &fakeSender{}
	tg := &Telegram{api: fake, chatID: 42, log: log}

	if err := tg.Notify(context.Background(), "<b>hi</b>"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(fake.sent) != 1 {
		t.Fatalf("sent %d messages", len(fake.sent))
	}
	msg := fake.sent[0]
	if msg.ChatID != 42 || msg.Text != "<b>hi</b>" || msg.ParseMode != tgbotapi.ModeHTML {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestTelegram_NotifyErrors(t *testing.T) {
	log, _ := test.NewNullLogger()
	tg := &Telegram{api: &fakeSender{err: errors.New("boom")}, chatID: 42, log: log}
	if err := tg.Notify(context.Background(), "x"); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected send error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tg.Notify(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestNewTelegramWithEndpoint(t *testing.T) {
	var (
		mu      sync.Mutex
		methods []string
		text    string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		mu.Lock()
		methods = append(methods, method)
		if method == "sendMessage" {
			text = r.PostForm.Get("text")
		}
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch method {
		case "getMe":
			fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"tracker","username":"tracker_bot"}}`)
		default:
			fmt.Fprint(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`)
		}
	}))
	defer srv.Close()

	log, hook := test.NewNullLogger()
	tg, err := NewTelegramWithEndpoint("TOKEN", srv.URL+"/bot%s/%s", 42, log)
	if err != nil {
		t.Fatalf("NewTelegramWithEndpoint: %v", err)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Data["account"] != "tracker_bot" {
		t.Fatalf("expected authorization log entry")
	}
	if err := tg.Notify(context.Background(), "digest"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if strings.Join(methods, ",") != "getMe,sendMessage" || text != "digest" {
		t.Fatalf("methods = %v, text = %q", methods, text)
	}
}

func TestNewTelegram_RequiresChat(t *testing.T) {
	log, _ := test.NewNullLogger()
	if _, err := NewTelegram("TOKEN", 0, log); err == nil {
		t.Fatalf("expected error without chat id")
	}
}

func TestLog_Notify(t *testing.T) {
	log, hook := test.NewNullLogger()
	if err := NewLog(log).Notify(context.Background(), "3 overdue"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Message != "digest" || entry.Data["text"] != "3 overdue" {
		t.Fatalf("unexpected entry %+v", entry)
	}
}
