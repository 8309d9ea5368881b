package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/agents/orderbot"
	contractx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/state"
)

const helpText = `Commands:
  /menu            show the full menu
  /add N           add recommendation N to your order
  /add-menu N      add menu item N to your order
  /cart            show your order
  /confirm         review your order before placing it
  /cancel          go back to editing your order
  /finalize        place the order
  /history         show placed orders
  /help            show this help
  /quit            leave
Anything else is sent to the assistant.`

type receiptLister interface {
	ListBySession(ctx context.Context, sessionID string, limit int) ([]statex.Receipt, error)
}

// terminal renders snapshots as text and turns input lines into intents.
type terminal struct {
	in       io.Reader
	out      io.Writer
	machine  *orderbot.Machine
	history  receiptLister
	currency string

	mu       sync.Mutex
	version  uint64
	printed  int
	recs     string
	phase    statex.Phase
	inflight sync.WaitGroup
}

func newTerminal(in io.Reader, out io.Writer, machine *orderbot.Machine, currency string, history receiptLister) *terminal {
	if currency == "" {
		currency = orderbot.DefaultCurrency
	}
	return &terminal{
		in:       in,
		out:      out,
		machine:  machine,
		history:  history,
		currency: currency,
		phase:    statex.PhaseIdle,
	}
}

func (t *terminal) Run(ctx context.Context) error {
	unsubscribe := t.machine.Subscribe(contractx.ObserverFunc(t.render))
	defer unsubscribe()
	defer t.inflight.Wait()

	t.machine.Initialize(ctx)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if quit := t.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

// handle runs one input line. It reports whether the user asked to quit.
func (t *terminal) handle(ctx context.Context, line string) bool {
	cmd, arg := parseCommand(line)
	switch cmd {
	case "":
		return false
	case "quit":
		return true
	case "help":
		t.println(helpText)
	case "menu":
		t.printItems("Menu", t.machine.Snapshot().Catalog)
	case "add":
		t.addFrom(arg, t.machine.Snapshot().Recommendations, "recommendation")
	case "add-menu":
		t.addFrom(arg, t.machine.Snapshot().Catalog, "menu item")
	case "cart":
		t.printCart(t.machine.Snapshot().Cart)
	case "confirm":
		snap := t.machine.Snapshot()
		switch {
		case snap.CanFinalize():
			t.println("Your order is already waiting for confirmation. Use /finalize or /cancel.")
		case !snap.CanConfirm() || !t.machine.RequestConfirmation():
			t.println("Nothing to confirm. Add something to your order first.")
		}
	case "cancel":
		if !t.machine.CancelConfirmation() {
			t.println("There is no order waiting for confirmation.")
		}
	case "finalize":
		if !t.machine.Snapshot().CanFinalize() || !t.machine.FinalizeOrder(ctx) {
			t.println("Use /confirm to review your order before placing it.")
		}
	case "history":
		t.printHistory(ctx)
	case "say":
		t.inflight.Add(1)
		go func() {
			defer t.inflight.Done()
			if !t.machine.SendMessage(ctx, arg) {
				t.println("Still waiting for the previous reply.")
			}
		}()
	default:
		t.printf("Unknown command /%s. Type /help for commands.\n", cmd)
	}
	return false
}

// parseCommand splits "/add 2" into ("add", "2"). Plain text becomes
// ("say", text); blank lines become ("", "").
func parseCommand(line string) (string, string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", ""
	}
	if !strings.HasPrefix(trimmed, "/") {
		return "say", line
	}
	cmd, arg, _ := strings.Cut(strings.TrimPrefix(trimmed, "/"), " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

func (t *terminal) addFrom(arg string, items []statex.MenuItem, what string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(items) {
		t.printf("Pick a %s between 1 and %d.\n", what, len(items))
		return
	}
	item := items[n-1]
	if !t.machine.AddToOrder(item) {
		t.println("Your order is waiting for confirmation. Use /cancel to change it.")
		return
	}
	t.printf("Added %s.\n", item.Name)
}

func (t *terminal) printHistory(ctx context.Context) {
	if t.history == nil {
		t.println("Order history is not enabled.")
		return
	}
	receipts, err := t.history.ListBySession(ctx, t.machine.SessionID(), 10)
	if err != nil {
		t.printf("Could not load order history: %v\n", err)
		return
	}
	if len(receipts) == 0 {
		t.println("No orders placed yet.")
		return
	}
	for _, r := range receipts {
		t.printf("%s  %s  %s\n", r.PlacedAt.Local().Format("15:04"), statex.LineNames(r.Lines), t.money(r.Total))
	}
}

// render prints whatever changed since the last snapshot it saw. Snapshots
// older than one already rendered are dropped.
func (t *terminal) render(_ context.Context, snap statex.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if snap.Version <= t.version {
		return
	}
	t.version = snap.Version

	for _, msg := range snap.Transcript[min(t.printed, len(snap.Transcript)):] {
		fmt.Fprintf(t.out, "%s: %s\n", msg.DisplayName, msg.Text)
	}
	t.printed = len(snap.Transcript)

	if last, ok := snap.LastMessage(); ok && snap.Pending && !last.FromBot() {
		fmt.Fprintln(t.out, "...")
	}

	if key := itemKey(snap.Recommendations); key != t.recs {
		t.recs = key
		if len(snap.Recommendations) > 0 {
			writeItems(t.out, "Recommended", snap.Recommendations, t.money)
		}
	}

	if snap.Phase != t.phase {
		t.phase = snap.Phase
		if snap.Phase == statex.PhaseAwaitingConfirmation {
			fmt.Fprintf(t.out, "Please confirm: %s, total %s. /finalize to place it or /cancel to keep editing.\n",
				snap.Cart.Names(), t.money(snap.Cart.Total))
		}
	}
}

func (t *terminal) printItems(title string, items []statex.MenuItem) {
	if len(items) == 0 {
		t.println("The menu is not available right now.")
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	writeItems(t.out, title, items, t.money)
}

func (t *terminal) printCart(cart statex.Cart) {
	if cart.IsEmpty() {
		t.println("Your order is empty.")
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, line := range cart.Lines {
		fmt.Fprintf(t.out, "  %d. %s  %s\n", i+1, line.Name, t.money(line.Price))
	}
	fmt.Fprintf(t.out, "  Total: %s\n", t.money(cart.Total))
}

func (t *terminal) money(d decimal.Decimal) string {
	return t.currency + d.StringFixed(2)
}

func (t *terminal) println(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, s)
}

func (t *terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

func writeItems(w io.Writer, title string, items []statex.MenuItem, money func(decimal.Decimal) string) {
	fmt.Fprintf(w, "%s:\n", title)
	for i, item := range items {
		fmt.Fprintf(w, "  %d. %s  %s", i+1, item.Name, money(item.Price))
		if item.Description != "" {
			fmt.Fprintf(w, "  %s", item.Description)
		}
		fmt.Fprintln(w)
	}
}

func itemKey(items []statex.MenuItem) string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = string(item.ID)
	}
	return strings.Join(ids, ",")
}
