package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/applymate/applymate/internal/metrics"
	"github.com/applymate/applymate/internal/middleware"
)

// SetupAuthRoutes は認証関連のルーティングを設定したchi.Routerを返す。
func SetupAuthRoutes(service AuthServiceInterface, config AuthHandlerConfig) http.Handler {
	r := chi.NewRouter()
	h := NewAuthHandler(service, config, nil)

	r.Route("/auth", func(r chi.Router) {
		// OAuthフロー
		r.Get("/google/login", h.Login)
		r.Get("/google/callback", h.Callback)

		// セッション管理
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
	})

	return r
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// リクエストログ出力先（nil許容。nilの場合リクエストログは無効）
	Logger *slog.Logger

	// メトリクス（nil許容。nilの場合/metricsとHTTP計測は無効）
	HTTPMetrics     middleware.HTTPMetricsRecorder
	LoginRecorder   LoginRecorder
	MetricsGatherer prometheus.Gatherer

	// 認証
	AuthService      AuthServiceInterface
	AuthConfig       AuthHandlerConfig
	SessionValidator SessionValidator
	SessionWatcher   SessionSubscriber

	// 応募レコード
	JobService JobServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RecoveryMiddleware → SecurityHeadersMiddleware → CORSMiddleware → LoggingMiddleware
//	→ MetricsMiddleware → SessionMiddleware → CSRFMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// 認証ルート（/auth/*）はセッション以降のミドルウェアチェーンの外に配置する。
// セッション監視WebSocketはCookie検証を自前で行うため同様に外側とする。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// panic回復を最外周に適用（後続ミドルウェアのpanicも捕捉する）
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())

	// CORS ミドルウェア（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}

	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.LoginRecorder)
	jobHandler := NewJobHandler(deps.JobService)

	// --- 認証不要のルート ---

	r.Get("/health", NewHealthHandler(deps.HealthChecker))

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)

		// セッション監視（アップグレード前にCookieを検証する）
		if deps.SessionValidator != nil && deps.SessionWatcher != nil {
			watchHandler := NewSessionWatchHandler(
				deps.SessionValidator, deps.SessionWatcher, deps.CORSAllowedOrigin,
			)
			r.Get("/session/watch", watchHandler.Watch)
		}
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		csrfConfig := middleware.CSRFConfig{
			CookieSecure: deps.AuthConfig.CookieSecure,
			CookieDomain: deps.AuthConfig.CookieDomain,
		}

		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(csrfConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// CSRFトークン取得（SPAが変更系リクエストの前に呼ぶ）
		r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(csrfConfig))

		// 応募レコード管理（変更系には変更専用レート制限を追加）
		r.Route("/api/jobs", func(r chi.Router) {
			r.Get("/", jobHandler.ListJobs)
			r.With(deps.RateLimiter.MutationMiddleware()).Post("/", jobHandler.CreateJob)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", jobHandler.GetJob)
				r.With(deps.RateLimiter.MutationMiddleware()).Put("/", jobHandler.UpdateJob)
				r.With(deps.RateLimiter.MutationMiddleware()).Delete("/", jobHandler.DeleteJob)
			})
		})
	})

	return r
}
