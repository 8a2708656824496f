package poller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/berlincodez/Campus-Skill-link/internal/apperr"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultInboxInterval  = 5 * time.Second
	DefaultThreadInterval = 3 * time.Second

	requestTimeout = 10 * time.Second
)

var ErrLoopStopped = errors.New("poll loop stopped")

// Options tune a Loop. Zero values fall back to the defaults.
type Options struct {
	InboxInterval  time.Duration
	ThreadInterval time.Duration

	// SocketURL enables websocket nudges for the open thread, e.g. ws://host:8081/ws.
	SocketURL string

	Logger *zap.Logger

	// OnUpdate runs after every reconciliation of the inbox or the open thread. It must
	// not call Stop.
	OnUpdate func(*Inbox)
}

// Loop keeps an Inbox in sync with a Source by polling the conversation list on one
// interval and the open thread on another. A poll never overlaps with itself and
// nothing is fetched once the loop stops or the session logs out.
type Loop struct {
	session *Session
	source  Source
	inbox   *Inbox
	opts    Options
	logger  *zap.Logger

	mu          sync.Mutex
	cron        *cron.Cron
	nudgeCancel context.CancelFunc
	started     bool
	stopped     bool
	done        chan struct{}
	halted      chan struct{}

	threadMu sync.Mutex
	// generation of the thread fetch holding threadMu, zero when idle
	fetching atomic.Uint64
	wg       sync.WaitGroup
}

func NewLoop(session *Session, source Source, opts Options) *Loop {
	if opts.InboxInterval <= 0 {
		opts.InboxInterval = DefaultInboxInterval
	}
	if opts.ThreadInterval <= 0 {
		opts.ThreadInterval = DefaultThreadInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Loop{
		session: session,
		source:  source,
		inbox:   NewInbox(),
		opts:    opts,
		logger:  logger.With(zap.String("session_id", session.ID), zap.String("user_id", session.UserID)),
		done:    make(chan struct{}),
		halted:  make(chan struct{}),
	}
}

func (l *Loop) Inbox() *Inbox {
	return l.inbox
}

// Start loads the inbox once, opens the most recent conversation when none is open, and
// schedules the polls. An error from the first load is returned but polling still starts
// so a later tick can recover.
func (l *Loop) Start() error {
	l.mu.Lock()
	if l.started || l.stopped {
		l.mu.Unlock()
		return nil
	}
	if !l.session.Active() {
		l.mu.Unlock()
		return ErrLoopStopped
	}
	l.started = true

	log := cronLogger{log: l.logger.Sugar()}
	l.cron = cron.New(
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)
	l.cron.Schedule(every(l.opts.InboxInterval), cron.FuncJob(l.refreshInbox))
	l.cron.Schedule(every(l.opts.ThreadInterval), cron.FuncJob(l.refreshThread))
	l.mu.Unlock()

	err := l.loadInbox()

	if active, _ := l.inbox.Active(); active == "" {
		if convs := l.inbox.Conversations(); len(convs) > 0 {
			if openErr := l.Open(convs[0].ConnectionID); openErr != nil && err == nil {
				err = openErr
			}
		}
	}

	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrLoopStopped
	}
	l.cron.Start()
	l.mu.Unlock()

	go func() {
		select {
		case <-l.session.Done():
			l.Stop()
		case <-l.done:
		}
	}()

	l.logger.Info("poll loop started",
		zap.Duration("inbox_interval", l.opts.InboxInterval),
		zap.Duration("thread_interval", l.opts.ThreadInterval),
	)
	return err
}

// Stop cancels the schedules and waits for in-flight polls. Every caller returns only
// once the loop is fully halted.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		<-l.halted
		return
	}
	l.stopped = true
	close(l.done)
	c := l.cron
	cancelNudge := l.nudgeCancel
	l.nudgeCancel = nil
	l.mu.Unlock()

	if cancelNudge != nil {
		cancelNudge()
	}
	if c != nil {
		<-c.Stop().Done()
	}
	l.wg.Wait()
	close(l.halted)

	l.logger.Info("poll loop stopped")
}

func (l *Loop) isStopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped || !l.session.Active()
}

// Open makes connectionID the active thread: its unread count drops to zero locally, the
// server is told to mark it read, and the thread is fetched right away.
func (l *Loop) Open(connectionID string) error {
	if connectionID == "" {
		return apperr.Validation("connectionId")
	}
	if l.isStopped() {
		return ErrLoopStopped
	}

	gen := l.inbox.Open(connectionID)

	ctx, cancel := l.requestContext()
	_, markErr := l.source.MarkRead(ctx, connectionID, l.session.UserID)
	cancel()
	if markErr != nil {
		l.logger.Warn("mark read on open failed", zap.String("connection_id", connectionID), zap.Error(markErr))
	}

	l.fetchThread(connectionID, gen)
	l.restartNudge(connectionID)
	l.notify()
	return markErr
}

// Close leaves the active thread; thread polls become no-ops until the next Open.
func (l *Loop) Close() {
	l.inbox.Close()
	l.restartNudge("")
	l.notify()
}

// Send posts text to the active thread and appends the stored message locally.
func (l *Loop) Send(text string) (*model.Message, error) {
	if l.isStopped() {
		return nil, ErrLoopStopped
	}
	active, gen := l.inbox.Active()
	if active == "" {
		return nil, apperr.Validation("connectionId")
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("text")
	}

	ctx, cancel := l.requestContext()
	defer cancel()

	msg, err := l.source.Send(ctx, active, l.session.UserID, text)
	if err != nil {
		l.logger.Warn("send failed", zap.String("connection_id", active), zap.Error(err))
		return nil, err
	}
	if msg != nil && l.inbox.AppendMessage(gen, *msg) {
		l.notify()
	}
	return msg, nil
}

func (l *Loop) refreshInbox() {
	if l.isStopped() {
		return
	}
	if err := l.loadInbox(); err != nil {
		l.logger.Warn("inbox poll failed", zap.Error(err))
	}
}

func (l *Loop) loadInbox() error {
	ctx, cancel := l.requestContext()
	defer cancel()

	convs, err := l.source.Conversations(ctx, l.session.UserID)
	if err != nil {
		return err
	}
	l.inbox.MergeConversations(convs)
	l.notify()
	return nil
}

func (l *Loop) refreshThread() {
	if l.isStopped() {
		return
	}
	active, gen := l.inbox.Active()
	if active == "" {
		return
	}
	l.fetchThread(active, gen)
}

// fetchThread replaces the open thread's messages and marks it read again when messages
// from others arrived unread while it was open.
func (l *Loop) fetchThread(connectionID string, gen uint64) {
	// a nudge and a tick on the same thread can race; one fetch is enough. A fetch for a
	// newly opened thread waits instead, the running one is about to be discarded.
	if !l.threadMu.TryLock() {
		if l.fetching.Load() == gen {
			return
		}
		l.threadMu.Lock()
	}
	l.fetching.Store(gen)
	defer func() {
		l.fetching.Store(0)
		l.threadMu.Unlock()
	}()

	if _, current := l.inbox.Active(); current != gen {
		return
	}

	ctx, cancel := l.requestContext()
	defer cancel()

	msgs, err := l.source.Messages(ctx, connectionID, l.session.UserID)
	if err != nil {
		l.logger.Warn("thread poll failed", zap.String("connection_id", connectionID), zap.Error(err))
		return
	}
	if !l.inbox.ReplaceMessages(gen, msgs) {
		l.logger.Debug("stale thread response discarded", zap.String("connection_id", connectionID))
		return
	}

	if hasUnreadFromOthers(msgs, l.session.UserID) {
		if _, err := l.source.MarkRead(ctx, connectionID, l.session.UserID); err != nil {
			l.logger.Warn("mark read failed", zap.String("connection_id", connectionID), zap.Error(err))
		}
	}
	l.notify()
}

func (l *Loop) restartNudge(connectionID string) {
	if l.opts.SocketURL == "" {
		return
	}

	l.mu.Lock()
	if l.nudgeCancel != nil {
		l.nudgeCancel()
		l.nudgeCancel = nil
	}
	if l.stopped || connectionID == "" {
		l.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(l.session.Context())
	l.nudgeCancel = cancel
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		events, err := subscribe(ctx, l.opts.SocketURL, l.session.UserID, connectionID)
		if err != nil {
			// polling still covers the thread
			l.logger.Debug("nudge subscription unavailable", zap.String("connection_id", connectionID), zap.Error(err))
			return
		}
		for ev := range events {
			l.logger.Debug("nudge received", zap.String("event", ev.Event), zap.String("connection_id", ev.ConnectionID))
			l.refreshThread()
		}
	}()
}

func (l *Loop) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(l.session.Context(), requestTimeout)
}

func (l *Loop) notify() {
	if l.opts.OnUpdate != nil {
		l.opts.OnUpdate(l.inbox)
	}
}

func hasUnreadFromOthers(msgs []model.Message, userID string) bool {
	for _, m := range msgs {
		if !m.Read && m.SenderID != userID {
			return true
		}
	}
	return false
}
