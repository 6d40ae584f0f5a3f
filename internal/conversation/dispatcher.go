package conversation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Handler processes one message. *Controller implements it.
type Handler interface {
	Handle(ctx context.Context, msg Message)
}

const (
	defaultMailboxSize = 16
	defaultIdleTimeout = 5 * time.Minute
)

// Dispatcher runs one worker goroutine per active chat. Messages of a chat
// are handled strictly in arrival order; different chats proceed in
// parallel, so a slow provider fetch only delays its own chat.
type Dispatcher struct {
	handler     Handler
	log         *slog.Logger
	mailboxSize int
	idleTimeout time.Duration

	mu      sync.Mutex
	workers map[int64]*chatWorker
	wg      sync.WaitGroup
}

// chatWorker owns the queue of one chat. Enqueueing never blocks: the
// dispatch loop serves every chat, so a busy chat must not hold it up.
type chatWorker struct {
	mu     sync.Mutex
	queue  []Message
	closed bool
	signal chan struct{} // capacity 1, poked after every enqueue
}

func newChatWorker() *chatWorker {
	return &chatWorker{signal: make(chan struct{}, 1)}
}

// push appends msg and returns the resulting backlog.
func (w *chatWorker) push(msg Message) int {
	w.mu.Lock()
	w.queue = append(w.queue, msg)
	n := len(w.queue)
	w.mu.Unlock()
	w.poke()
	return n
}

func (w *chatWorker) poke() {
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// next pops the oldest message. ok is false when the queue is empty;
// closed then tells the worker to exit.
func (w *chatWorker) next() (msg Message, ok, closed bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) == 0 {
		return Message{}, false, w.closed
	}
	msg = w.queue[0]
	w.queue[0] = Message{}
	w.queue = w.queue[1:]
	return msg, true, false
}

func (w *chatWorker) idle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue) == 0
}

func (w *chatWorker) close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.poke()
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithIdleTimeout sets how long a chat worker waits before exiting.
func WithIdleTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) { disp.idleTimeout = d }
}

// WithMailboxSize sets the per-chat backlog above which a warning is
// logged. Messages are never dropped.
func WithMailboxSize(n int) DispatcherOption {
	return func(disp *Dispatcher) { disp.mailboxSize = n }
}

// NewDispatcher returns a Dispatcher feeding h.
func NewDispatcher(h Handler, log *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		handler:     h,
		log:         log.With("component", "dispatcher"),
		mailboxSize: defaultMailboxSize,
		idleTimeout: defaultIdleTimeout,
		workers:     make(map[int64]*chatWorker),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.mailboxSize < 1 {
		d.mailboxSize = 1
	}
	return d
}

// Run dispatches messages from in until it is closed or ctx is done, then
// lets every worker finish its queued messages and returns. In-flight
// searches are not canceled by ctx.
func (d *Dispatcher) Run(ctx context.Context, in <-chan Message) {
	handleCtx := context.WithoutCancel(ctx)
	defer d.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			d.dispatch(handleCtx, msg)
		}
	}
}

// Active returns the number of live chat workers.
func (d *Dispatcher) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.workers)
}

func (d *Dispatcher) dispatch(ctx context.Context, msg Message) {
	d.mu.Lock()
	w, ok := d.workers[msg.ChatID]
	if !ok {
		w = newChatWorker()
		d.workers[msg.ChatID] = w
		d.wg.Add(1)
		go d.work(ctx, msg.ChatID, w)
	}
	// Enqueued under d.mu so retire cannot drop a worker that just got work.
	backlog := w.push(msg)
	d.mu.Unlock()

	if backlog > d.mailboxSize {
		d.log.Warn("chat backlog growing", "chat_id", msg.ChatID, "queued", backlog)
	}
}

func (d *Dispatcher) work(ctx context.Context, chatID int64, w *chatWorker) {
	defer d.wg.Done()

	timer := time.NewTimer(d.idleTimeout)
	defer timer.Stop()

	for {
		msg, ok, closed := w.next()
		if ok {
			d.handle(ctx, msg)
			resetTimer(timer, d.idleTimeout)
			continue
		}
		if closed {
			return
		}

		select {
		case <-w.signal:
		case <-timer.C:
			if d.retire(chatID, w) {
				return
			}
			timer.Reset(d.idleTimeout)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("handler panic", "chat_id", msg.ChatID, "panic", r)
		}
	}()
	d.handler.Handle(ctx, msg)
}

func (d *Dispatcher) retire(chatID int64, w *chatWorker) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !w.idle() {
		return false
	}
	if d.workers[chatID] == w {
		delete(d.workers, chatID)
	}
	return true
}

func (d *Dispatcher) shutdown() {
	d.mu.Lock()
	for id, w := range d.workers {
		w.close()
		delete(d.workers, id)
	}
	d.mu.Unlock()
	d.wg.Wait()
	d.log.Info("dispatcher stopped")
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
