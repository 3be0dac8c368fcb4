package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/applymate/applymate/internal/model"
)

// sessionWatchWriteTimeout はWebSocketへの書き込みタイムアウト。
const sessionWatchWriteTimeout = 5 * time.Second

// SessionValidator はセッションの有効性確認に必要なインターフェース。
type SessionValidator interface {
	// GetCurrentSession は有効なセッションを返す。無効な場合はnilを返す。
	GetCurrentSession(ctx context.Context, sessionID string) (*model.Session, error)
}

// SessionSubscriber はセッション終了通知の購読に必要なインターフェース。
// auth.SessionWatcherの部分集合として定義する。
type SessionSubscriber interface {
	// Subscribe はセッション終了時にcloseされるチャネルと購読解除関数を返す。
	Subscribe(sessionID string) (<-chan struct{}, func())
}

// sessionWatchEvent はセッション監視で配信されるイベント。
type sessionWatchEvent struct {
	Event string `json:"event"`
}

// SessionWatchHandler はセッション状態監視のWebSocketハンドラー。
// 接続中のセッションが他の場所で終了したとき、クライアントに
// signed_outイベントをプッシュして接続を閉じる。
type SessionWatchHandler struct {
	validator  SessionValidator
	subscriber SessionSubscriber
	upgrader   websocket.Upgrader
}

// NewSessionWatchHandler はSessionWatchHandlerを生成する。
// allowedOriginが空でない場合、Originヘッダーが一致する接続のみ許可する。
func NewSessionWatchHandler(validator SessionValidator, subscriber SessionSubscriber, allowedOrigin string) *SessionWatchHandler {
	return &SessionWatchHandler{
		validator:  validator,
		subscriber: subscriber,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// Watch はセッション終了を監視するWebSocket接続を確立する。
// GET /auth/session/watch
//
// アップグレード前にセッションCookieを検証し、無効な場合は401を返す。
// クライアント切断で購読は解除される。
func (h *SessionWatchHandler) Watch(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthRequiredError())
		return
	}

	session, err := h.validator.GetCurrentSession(r.Context(), cookie.Value)
	if err != nil {
		slog.Error("failed to validate session for watch", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewStoreFailedError("fetch"))
		return
	}
	if session == nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthRequiredError())
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgradeはエラーレスポンスを書き込み済み
		slog.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	ended, cancel := h.subscriber.Subscribe(session.ID)
	defer cancel()

	// クライアント切断の検知用リーダー
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-ended:
		ws.SetWriteDeadline(time.Now().Add(sessionWatchWriteTimeout))
		if err := ws.WriteJSON(sessionWatchEvent{Event: "signed_out"}); err != nil {
			slog.Warn("failed to push signed_out event", slog.String("error", err.Error()))
			return
		}
		ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
			time.Now().Add(sessionWatchWriteTimeout),
		)
	case <-disconnected:
	}
}
