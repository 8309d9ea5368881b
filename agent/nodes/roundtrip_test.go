package roundtripnode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	contractx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/state"
)

type stubConversation struct {
	reply contractx.ChatReply
	err   error
	got   string
}

func (s *stubConversation) SendUtterance(ctx context.Context, text string) (contractx.ChatReply, error) {
	s.got = text
	return s.reply, s.err
}

type stubRecommender struct {
	items []statex.MenuItem
	err   error
	got   string
}

func (s *stubRecommender) Recommend(ctx context.Context, text string) ([]statex.MenuItem, error) {
	s.got = text
	return s.items, s.err
}

func fixedNow() time.Time {
	return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
}

func TestValidateUtterance(t *testing.T) {
	t.Parallel()

	if _, err := ValidateUtterance(GraphInput{Text: " \t"}, fixedNow); !errors.Is(err, ErrInvalidUtterance) {
		t.Fatalf("ValidateUtterance() error = %v, want ErrInvalidUtterance", err)
	}

	st, err := ValidateUtterance(GraphInput{SessionID: "s-1", Text: " order chicken "}, fixedNow)
	if err != nil {
		t.Fatalf("ValidateUtterance() error = %v", err)
	}
	if st.Text != " order chicken " || st.SessionID != "s-1" || !st.StartedAt.Equal(fixedNow()) {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestConverse(t *testing.T) {
	t.Parallel()

	gw := &stubConversation{reply: contractx.ChatReply{Response: "Here you go"}}
	st, err := Converse(context.Background(), &GraphState{Text: "menu"}, gw)
	if err != nil {
		t.Fatalf("Converse() error = %v", err)
	}
	if gw.got != "menu" || st.Reply != "Here you go" {
		t.Fatalf("unexpected result: sent=%q reply=%q", gw.got, st.Reply)
	}
}

func TestConverseErrors(t *testing.T) {
	t.Parallel()

	upstream := contractx.NewGatewayError(contractx.GatewayConversation, 500, errors.New("boom"))
	if _, err := Converse(context.Background(), &GraphState{Text: "x"}, &stubConversation{err: upstream}); !errors.Is(err, contractx.ErrGateway) {
		t.Fatalf("Converse() error = %v, want ErrGateway", err)
	}

	_, err := Converse(context.Background(), &GraphState{Text: "x"}, &stubConversation{reply: contractx.ChatReply{Response: "  "}})
	if !errors.Is(err, ErrEmptyReply) || !errors.Is(err, contractx.ErrGateway) {
		t.Fatalf("Converse() error = %v, want ErrEmptyReply gateway error", err)
	}

	if _, err := Converse(context.Background(), nil, &stubConversation{}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Converse(nil) error = %v, want ErrValidation", err)
	}
}

func TestPublishReply(t *testing.T) {
	t.Parallel()

	var published string
	st, err := PublishReply(context.Background(), &GraphState{Reply: "hello"}, func(ctx context.Context, reply string) error {
		published = reply
		return nil
	})
	if err != nil || st == nil || published != "hello" {
		t.Fatalf("PublishReply() = %v, %v; published %q", st, err, published)
	}

	failure := errors.New("rejected")
	if _, err := PublishReply(context.Background(), &GraphState{Reply: "x"}, func(context.Context, string) error {
		return failure
	}); !errors.Is(err, failure) {
		t.Fatalf("PublishReply() error = %v, want %v", err, failure)
	}
}

func TestRecommend(t *testing.T) {
	t.Parallel()

	gw := &stubRecommender{items: []statex.MenuItem{{ID: "1", Name: "Biryani", Price: decimal.NewFromInt(250)}}}
	st, err := Recommend(context.Background(), &GraphState{Text: "biryani"}, gw)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if gw.got != "biryani" || len(st.Recommendations) != 1 {
		t.Fatalf("unexpected result: sent=%q recs=%+v", gw.got, st.Recommendations)
	}

	st, err = Recommend(context.Background(), &GraphState{Text: "nothing"}, &stubRecommender{})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if st.Recommendations == nil || len(st.Recommendations) != 0 {
		t.Fatalf("expected empty non-nil recommendations, got %#v", st.Recommendations)
	}

	upstream := contractx.NewGatewayError(contractx.GatewayRecommendation, 503, errors.New("down"))
	if _, err := Recommend(context.Background(), &GraphState{Text: "x"}, &stubRecommender{err: upstream}); !errors.Is(err, contractx.ErrGateway) {
		t.Fatalf("Recommend() error = %v, want ErrGateway", err)
	}
}

func TestFinishRoundTrip(t *testing.T) {
	t.Parallel()

	out, err := FinishRoundTrip(&GraphState{Reply: "ok", Recommendations: []statex.MenuItem{}})
	if err != nil {
		t.Fatalf("FinishRoundTrip() error = %v", err)
	}
	if out.Reply != "ok" || out.Recommendations == nil {
		t.Fatalf("unexpected output: %+v", out)
	}
	if _, err := FinishRoundTrip(nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("FinishRoundTrip(nil) error = %v, want ErrValidation", err)
	}
}
