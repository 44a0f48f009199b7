package message

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yanizio/perks/internal/config"
)

func TestBuildMsg(t *testing.T) {
	m, err := buildMsg("site@perks.example", Email{
		To:      []string{"admin@perks.example"},
		ReplyTo: "jo@example.com",
		Subject: "New contact submission",
		Text:    "hello",
		HTML:    "<p>hello</p>",
	})
	if err != nil {
		t.Fatalf("buildMsg: %v", err)
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"New contact submission", "admin@perks.example", "jo@example.com", "text/html"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered message missing %q", want)
		}
	}
}

func TestBuildMsg_Errors(t *testing.T) {
	if _, err := buildMsg("a@b.example", Email{}); !errors.Is(err, ErrNoRecipients) {
		t.Errorf("want ErrNoRecipients, got %v", err)
	}
	if _, err := buildMsg("not an address", Email{To: []string{"x@y.example"}}); err == nil {
		t.Error("bad from address should error")
	}
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := NewLogSender(zap.New(core).Sugar())

	if err := s.Send(context.Background(), Email{To: []string{"x@y.example"}, Subject: "Hi there"}); err != nil {
		t.Fatal(err)
	}
	if logs.Len() != 1 || logs.All()[0].ContextMap()["subject"] != "Hi there" {
		t.Errorf("unexpected log entries: %v", logs.All())
	}
	if err := s.Send(context.Background(), Email{}); !errors.Is(err, ErrNoRecipients) {
		t.Errorf("want ErrNoRecipients, got %v", err)
	}
}

func TestNewSender(t *testing.T) {
	cfg := config.Defaults().SMTP
	cfg.From = "site@perks.example"

	s, err := NewSender(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*LogSender); !ok {
		t.Errorf("empty host should select LogSender, got %T", s)
	}

	cfg.Host = "smtp.perks.example"
	cfg.Timeout = time.Second
	s, err = NewSender(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*SMTPSender); !ok {
		t.Errorf("host should select SMTPSender, got %T", s)
	}
}
