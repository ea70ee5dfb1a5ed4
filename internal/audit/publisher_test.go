package audit

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestPublisher_EmitFillsDefaults(t *testing.T) {
	p := NewPublisher(discardLogger())

	p.Emit(context.Background(), Event{Action: ActionUserRegistered, Subject: "a@x.com"})

	select {
	case event := <-p.Inbox():
		assert.NotEmpty(t, event.ID)
		assert.False(t, event.Timestamp.IsZero())
		assert.Equal(t, ActionUserRegistered, event.Action)
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestPublisher_EmitDropsWhenFull(t *testing.T) {
	p := NewPublisher(discardLogger())

	// Overfill the buffer; Emit must never block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < defaultBufferSize+10; i++ {
			p.Emit(context.Background(), Event{Action: ActionLogin, Subject: "a@x.com"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked on a full buffer")
	}
	assert.Len(t, p.Inbox(), defaultBufferSize)
}

func TestWorker_DrainsIntoSink(t *testing.T) {
	p := NewPublisher(discardLogger())
	sink := NewMemorySink()
	worker := NewWorker(sink, p.Inbox(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- worker.Run(ctx) }()

	p.Emit(ctx, Event{Action: ActionUserDeleted, Subject: "a@x.com"})
	p.Emit(ctx, Event{Action: ActionUserPromoted, Subject: "b@x.com"})

	require.Eventually(t, func() bool {
		return len(sink.Events()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	events := sink.Events()
	assert.Equal(t, ActionUserDeleted, events[0].Action)
	assert.Equal(t, ActionUserPromoted, events[1].Action)
}
