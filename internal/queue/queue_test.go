package queue

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	msg, err := NewScan(ScanPayload{
		TagID:     "RF001",
		ReaderID:  "RFID-001",
		Timestamp: time.Date(2024, time.January, 15, 8, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("NewScan: %v", err)
	}
	if err := q.Publish(ctx, msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	select {
	case got := <-messages:
		if got.Type != TypeScan {
			t.Fatalf("message type = %q, want %q", got.Type, TypeScan)
		}
		p, err := DecodeScan(got)
		if err != nil {
			t.Fatalf("DecodeScan: %v", err)
		}
		if p.TagID != "RF001" || p.ReaderID != "RFID-001" {
			t.Errorf("payload = %+v, lost fields in transit", p)
		}
	case <-time.After(time.Second):
		t.Fatal("no message within a second")
	}
}

func TestPublishCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := NewInMemory(0) // unbuffered, Publish must block then observe ctx
	msg, _ := NewHeartbeat(HeartbeatPayload{ReaderID: "RFID-001"})
	if err := q.Publish(ctx, msg); err != context.Canceled {
		t.Fatalf("Publish on cancelled ctx = %v, want %v", err, context.Canceled)
	}
}

func TestRedisFraming(t *testing.T) {
	msg, err := NewHeartbeat(HeartbeatPayload{
		ReaderID:  "RFID-001",
		Timestamp: time.Date(2024, time.January, 15, 8, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("NewHeartbeat: %v", err)
	}

	// The redis list stores Type|Body; the body itself contains no pipe
	// conflicts because only the first one splits.
	framed := serialize(msg)
	back, err := deserialize(framed)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if back.Type != TypeHeartbeat {
		t.Errorf("type = %q, want %q", back.Type, TypeHeartbeat)
	}
	p, err := DecodeHeartbeat(back)
	if err != nil {
		t.Fatalf("DecodeHeartbeat: %v", err)
	}
	if p.ReaderID != "RFID-001" {
		t.Errorf("reader id = %q after framing round trip", p.ReaderID)
	}
}
