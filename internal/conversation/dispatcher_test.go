package conversation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobmate/vacancy-bot/internal/conversation"
)

type recordingHandler struct {
	mu    sync.Mutex
	seen  map[int64][]string
	block map[int64]chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{seen: map[int64][]string{}, block: map[int64]chan struct{}{}}
}

func (h *recordingHandler) Handle(_ context.Context, msg conversation.Message) {
	h.mu.Lock()
	gate := h.block[msg.ChatID]
	h.mu.Unlock()
	if gate != nil {
		<-gate
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen[msg.ChatID] = append(h.seen[msg.ChatID], msg.Text)
}

func (h *recordingHandler) messages(chatID int64) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen[chatID]...)
}

func TestDispatcherPreservesPerChatOrder(t *testing.T) {
	h := newRecordingHandler()
	d := conversation.NewDispatcher(h, discardLogger())

	in := make(chan conversation.Message)
	done := make(chan struct{})
	go func() {
		d.Run(context.Background(), in)
		close(done)
	}()

	for _, text := range []string{"a", "b", "c", "d"} {
		in <- conversation.Message{ChatID: 1, Text: text}
		in <- conversation.Message{ChatID: 2, Text: text}
	}
	close(in)
	<-done

	require.Equal(t, []string{"a", "b", "c", "d"}, h.messages(1))
	require.Equal(t, []string{"a", "b", "c", "d"}, h.messages(2))
}

func TestDispatcherSlowChatDoesNotBlockOthers(t *testing.T) {
	h := newRecordingHandler()
	gate := make(chan struct{})
	h.block[1] = gate
	d := conversation.NewDispatcher(h, discardLogger())

	in := make(chan conversation.Message)
	done := make(chan struct{})
	go func() {
		d.Run(context.Background(), in)
		close(done)
	}()

	in <- conversation.Message{ChatID: 1, Text: "slow"}
	in <- conversation.Message{ChatID: 2, Text: "fast"}

	require.Eventually(t, func() bool {
		return len(h.messages(2)) == 1
	}, time.Second, 5*time.Millisecond)
	require.Empty(t, h.messages(1))

	close(gate)
	close(in)
	<-done
	require.Equal(t, []string{"slow"}, h.messages(1))
}

func TestDispatcherRetiresIdleWorkers(t *testing.T) {
	h := newRecordingHandler()
	d := conversation.NewDispatcher(h, discardLogger(), conversation.WithIdleTimeout(20*time.Millisecond))

	in := make(chan conversation.Message)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx, in)
		close(done)
	}()

	in <- conversation.Message{ChatID: 1, Text: "x"}
	require.Eventually(t, func() bool { return len(h.messages(1)) == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return d.Active() == 0 }, time.Second, 5*time.Millisecond)

	// A retired chat gets a fresh worker.
	in <- conversation.Message{ChatID: 1, Text: "y"}
	require.Eventually(t, func() bool { return len(h.messages(1)) == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestDispatcherDrainsQueuedMessagesOnShutdown(t *testing.T) {
	h := newRecordingHandler()
	gate := make(chan struct{})
	h.block[1] = gate
	d := conversation.NewDispatcher(h, discardLogger())

	in := make(chan conversation.Message)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx, in)
		close(done)
	}()

	in <- conversation.Message{ChatID: 1, Text: "first"}
	in <- conversation.Message{ChatID: 1, Text: "second"}
	cancel()
	close(gate)
	<-done

	require.Equal(t, []string{"first", "second"}, h.messages(1))
}

func TestDispatcherFullBacklogDoesNotStallOtherChats(t *testing.T) {
	h := newRecordingHandler()
	gate := make(chan struct{})
	h.block[1] = gate
	d := conversation.NewDispatcher(h, discardLogger(), conversation.WithMailboxSize(1))

	in := make(chan conversation.Message)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx, in)
		close(done)
	}()

	for _, text := range []string{"a", "b", "c", "d"} {
		in <- conversation.Message{ChatID: 1, Text: text}
	}
	in <- conversation.Message{ChatID: 2, Text: "fast"}

	require.Eventually(t, func() bool {
		return len(h.messages(2)) == 1
	}, time.Second, 5*time.Millisecond)
	require.Empty(t, h.messages(1))

	// Run still observes cancellation while chat 1 is blocked.
	cancel()
	close(gate)
	<-done
	require.Equal(t, []string{"a", "b", "c", "d"}, h.messages(1))
}
