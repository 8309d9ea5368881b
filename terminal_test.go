package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/agents/orderbot"
	contractx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/state"
)

type scriptedBackend struct {
	menu []statex.MenuItem
}

func (b scriptedBackend) FetchCatalog(context.Context) ([]statex.MenuItem, error) {
	return b.menu, nil
}

func (b scriptedBackend) SendUtterance(_ context.Context, text string) (contractx.ChatReply, error) {
	return contractx.ChatReply{Response: "You said: " + strings.TrimSpace(text)}, nil
}

func (b scriptedBackend) Recommend(context.Context, string) ([]statex.MenuItem, error) {
	return b.menu, nil
}

// syncBuffer guards writes made from observer callbacks.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line    string
		wantCmd string
		wantArg string
	}{
		{line: "", wantCmd: "", wantArg: ""},
		{line: "   ", wantCmd: "", wantArg: ""},
		{line: "order chicken", wantCmd: "say", wantArg: "order chicken"},
		{line: "/add 2", wantCmd: "add", wantArg: "2"},
		{line: " /ADD-MENU  3 ", wantCmd: "add-menu", wantArg: "3"},
		{line: "/finalize", wantCmd: "finalize", wantArg: ""},
	}

	for _, tt := range tests {
		cmd, arg := parseCommand(tt.line)
		if cmd != tt.wantCmd || arg != tt.wantArg {
			t.Fatalf("parseCommand(%q) = (%q, %q), want (%q, %q)", tt.line, cmd, arg, tt.wantCmd, tt.wantArg)
		}
	}
}

func TestTerminalOrderFlow(t *testing.T) {
	t.Parallel()

	backend := scriptedBackend{menu: []statex.MenuItem{
		{ID: "1", Name: "Biryani", Price: decimal.NewFromInt(250)},
		{ID: "2", Name: "Lassi", Price: decimal.NewFromInt(60)},
	}}
	machine, err := orderbot.New(backend, backend, backend, orderbot.Config{})
	if err != nil {
		t.Fatalf("orderbot.New() error = %v", err)
	}

	out := &syncBuffer{}
	term := newTerminal(strings.NewReader(""), out, machine, "", nil)
	unsubscribe := machine.Subscribe(contractx.ObserverFunc(term.render))
	defer unsubscribe()

	ctx := context.Background()
	<-machine.Initialize(ctx)

	term.handle(ctx, "biryani please")
	term.inflight.Wait()

	for _, line := range []string{"/add 1", "/add-menu 2", "/confirm", "/confirm", "/add 2", "/finalize", "/history"} {
		if quit := term.handle(ctx, line); quit {
			t.Fatalf("handle(%q) requested quit", line)
		}
	}
	if !term.handle(ctx, "/quit") {
		t.Fatal("/quit should end the session")
	}

	got := out.String()
	for _, want := range []string{
		"OrderBot: 👋 *Welcome",
		"You: biryani please\n...\n",
		"OrderBot: You said: biryani please",
		"Recommended:",
		"Added Biryani.",
		"Added Lassi.",
		"Please confirm: Biryani, Lassi, total ₹310.00.",
		"Your order is already waiting for confirmation.",
		"Your order is waiting for confirmation.",
		"has been confirmed! Total: ₹310.00.",
		"Order history is not enabled.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if !machine.Snapshot().Cart.IsEmpty() {
		t.Fatal("cart should be empty after finalize")
	}
}

func TestTerminalRejectsBadSelections(t *testing.T) {
	t.Parallel()

	machine, err := orderbot.New(scriptedBackend{}, scriptedBackend{}, scriptedBackend{}, orderbot.Config{})
	if err != nil {
		t.Fatalf("orderbot.New() error = %v", err)
	}
	out := &syncBuffer{}
	term := newTerminal(strings.NewReader(""), out, machine, "$", nil)

	ctx := context.Background()
	term.handle(ctx, "/add 1")
	term.handle(ctx, "/confirm")
	term.handle(ctx, "/finalize")
	term.handle(ctx, "/bogus")

	got := out.String()
	for _, want := range []string{
		"Pick a recommendation between 1 and 0.",
		"Nothing to confirm. Add something to your order first.",
		"Use /confirm to review your order before placing it.",
		"Unknown command /bogus.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}
