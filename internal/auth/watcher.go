package auth

import "sync"

// SessionWatcher はセッション終了の通知を購読者へ配信する。
// WebSocket経由でセッション状態を監視するクライアントが購読し、
// ログアウトが発生した時点で通知を受け取る。配信はプロセス内に限られる。
type SessionWatcher struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

// NewSessionWatcher はSessionWatcherを生成する。
func NewSessionWatcher() *SessionWatcher {
	return &SessionWatcher{
		subs: make(map[string]map[chan struct{}]struct{}),
	}
}

// Subscribe は指定セッションの終了通知チャネルと購読解除関数を返す。
// チャネルはセッション終了時にクローズされる。購読解除関数は冪等。
func (w *SessionWatcher) Subscribe(sessionID string) (<-chan struct{}, func()) {
	ch := make(chan struct{})

	w.mu.Lock()
	set, ok := w.subs[sessionID]
	if !ok {
		set = make(map[chan struct{}]struct{})
		w.subs[sessionID] = set
	}
	set[ch] = struct{}{}
	w.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			set, ok := w.subs[sessionID]
			if !ok {
				return
			}
			delete(set, ch)
			if len(set) == 0 {
				delete(w.subs, sessionID)
			}
		})
	}
	return ch, cancel
}

// NotifyEnded は指定セッションの全購読チャネルをクローズする。
// 購読者がいない場合は何もしない。
func (w *SessionWatcher) NotifyEnded(sessionID string) {
	w.mu.Lock()
	set, ok := w.subs[sessionID]
	if ok {
		delete(w.subs, sessionID)
	}
	w.mu.Unlock()

	for ch := range set {
		close(ch)
	}
}
