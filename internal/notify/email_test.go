package notify

import (
	"context"
	"testing"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "",
		FromEmail: "test@example.com",
	}, nil)

	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "test@example.com",
		FromName:  "",
	}, nil)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != "HealthFirst Clinic" {
		t.Errorf("expected default from name, got %q", sender.fromName)
	}
}

func TestNewSendGridSender_CustomFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "test@example.com",
		FromName:  "Front Desk",
	}, nil)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != "Front Desk" {
		t.Errorf("expected custom from name, got %q", sender.fromName)
	}
}

func TestStubEmailSenderRecords(t *testing.T) {
	stub := NewStubEmailSender(nil)
	err := stub.Send(context.Background(), EmailMessage{To: "a@b.c", Subject: "hi"})
	if err != nil {
		t.Fatalf("stub send: %v", err)
	}
	if len(stub.Sent) != 1 || stub.Sent[0].To != "a@b.c" {
		t.Fatalf("stub did not record message: %+v", stub.Sent)
	}
}
