package conversation

import (
	"context"
	"errors"
	"testing"
)

func TestFallbackClientUsesPrimaryWhenHealthy(t *testing.T) {
	primary := &stubLLMClient{responses: []LLMResponse{textResponse("from primary")}}
	fallback := &stubLLMClient{responses: []LLMResponse{textResponse("from fallback")}}
	c := NewFallbackLLMClient(primary, fallback, nil)

	resp, err := c.Complete(context.Background(), LLMRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "from primary" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if fallback.calls != 0 {
		t.Fatal("fallback should not be consulted when primary succeeds")
	}
}

func TestFallbackClientFailsOver(t *testing.T) {
	primary := &stubLLMClient{errs: []error{errors.New("primary down")}}
	fallback := &stubLLMClient{responses: []LLMResponse{textResponse("from fallback")}}
	c := NewFallbackLLMClient(primary, fallback, nil)

	resp, err := c.Complete(context.Background(), LLMRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "from fallback" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
}

func TestFallbackClientReturnsFallbackError(t *testing.T) {
	primary := &stubLLMClient{errs: []error{errors.New("primary down")}}
	fallback := &stubLLMClient{errs: []error{errors.New("fallback down")}}
	c := NewFallbackLLMClient(primary, fallback, nil)

	if _, err := c.Complete(context.Background(), LLMRequest{}); err == nil {
		t.Fatal("expected an error when both providers fail")
	}
}

func TestFallbackClientWithoutFallback(t *testing.T) {
	wantErr := errors.New("primary down")
	c := NewFallbackLLMClient(&stubLLMClient{errs: []error{wantErr}}, nil, nil)

	if _, err := c.Complete(context.Background(), LLMRequest{}); !errors.Is(err, wantErr) {
		t.Fatalf("expected primary error, got %v", err)
	}
}

func TestFallbackClientNilPrimaryPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on nil primary")
		}
	}()
	NewFallbackLLMClient(nil, &stubLLMClient{}, nil)
}
