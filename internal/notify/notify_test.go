package notify

import (
	"context"
	"testing"
)

func TestLogNotifier(t *testing.T) {
	err := LogNotifier{}.Notify(context.Background(), Notification{Kind: KindEmail, Reference: "SLM-250314-ABCD"})
	if err != nil {
		t.Fatalf("LogNotifier returned error: %v", err)
	}
}

func TestNATSNotifierHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NATSNotifier{}.Notify(ctx, Notification{Kind: KindSMS})
	if err == nil {
		t.Fatalf("expected context error")
	}
}
