package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/applymate/applymate/internal/job"
	"github.com/applymate/applymate/internal/middleware"
	"github.com/applymate/applymate/internal/model"
)

// notesExcerptThreshold を超える長さのメモは一覧カードで省略表示される。
const notesExcerptThreshold = 200

// notesExcerptLength は省略表示時に残す先頭の文字数。
const notesExcerptLength = 100

// 変更操作成功時の通知メッセージ。
const (
	msgJobAdded   = "Job added successfully!"
	msgJobUpdated = "Job updated successfully!"
	msgJobDeleted = "Job deleted successfully!"
)

// JobServiceInterface は応募レコードハンドラーが必要とするサービスインターフェース。
type JobServiceInterface interface {
	// List はフィルタ・ページネーション適用後の一覧表示状態を返す。
	List(ctx context.Context, userID string, filter job.StatusFilter, page int) (*job.ListResult, error)
	// Get は指定IDのレコードを省略なしで返す。
	Get(ctx context.Context, userID, jobID string) (*model.Job, error)
	// Create はレコードを作成する。
	Create(ctx context.Context, userID string, draft job.Draft) (*model.Job, error)
	// Update はレコードの全フィールドを置換する。
	Update(ctx context.Context, userID, jobID string, draft job.Draft) (*model.Job, error)
	// Delete はレコードを削除する。
	Delete(ctx context.Context, userID, jobID string) error
}

// JobHandler は応募レコード管理のHTTPハンドラー。
type JobHandler struct {
	service JobServiceInterface
}

// NewJobHandler はJobHandlerを生成する。
func NewJobHandler(service JobServiceInterface) *JobHandler {
	return &JobHandler{
		service: service,
	}
}

// jobDraftRequest は作成・更新リクエストのボディ。
type jobDraftRequest struct {
	Position string `json:"position"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Status   string `json:"status"`
	Mode     string `json:"mode"`
	Notes    string `json:"notes"`
}

// toDraft はリクエストボディをサービス層のドラフトに変換する。
func (req jobDraftRequest) toDraft() job.Draft {
	return job.Draft{
		Position: req.Position,
		Company:  req.Company,
		Location: req.Location,
		Status:   model.JobStatus(req.Status),
		Mode:     model.JobMode(req.Mode),
		Notes:    req.Notes,
	}
}

// badgeResponse はステータス・雇用形態バッジの表示情報。
type badgeResponse struct {
	Label string `json:"label"`
	Style string `json:"style"`
}

// jobCardResponse は一覧カード用のレコード表現。
// メモは省略済みの抜粋で、NotesTruncatedがtrueの場合は
// 詳細取得で全文を参照できる。
type jobCardResponse struct {
	ID             string        `json:"id"`
	Position       string        `json:"position"`
	Company        string        `json:"company"`
	Location       string        `json:"location"`
	Status         string        `json:"status"`
	StatusBadge    badgeResponse `json:"status_badge"`
	Mode           string        `json:"mode"`
	ModeBadge      badgeResponse `json:"mode_badge"`
	Notes          string        `json:"notes"`
	NotesTruncated bool          `json:"notes_truncated"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// jobResponse は詳細・変更操作用のレコード表現。メモは全文を含む。
type jobResponse struct {
	ID          string        `json:"id"`
	Position    string        `json:"position"`
	Company     string        `json:"company"`
	Location    string        `json:"location"`
	Status      string        `json:"status"`
	StatusBadge badgeResponse `json:"status_badge"`
	Mode        string        `json:"mode"`
	ModeBadge   badgeResponse `json:"mode_badge"`
	Notes       string        `json:"notes"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// summaryResponse はフィルタ適用前の全件集計。
type summaryResponse struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Interview int `json:"interview"`
	Declined  int `json:"declined"`
}

// jobListResponse は一覧取得のAPIレスポンス。
type jobListResponse struct {
	Jobs          []jobCardResponse `json:"jobs"`
	Summary       summaryResponse   `json:"summary"`
	Filter        string            `json:"filter"`
	Page          int               `json:"page"`
	TotalPages    int               `json:"total_pages"`
	TotalFiltered int               `json:"total_filtered"`
	PageLabels    []job.PageLabel   `json:"page_labels"`
	ShowingFrom   int               `json:"showing_from"`
	ShowingTo     int               `json:"showing_to"`
}

// jobMutationResponse は変更操作のAPIレスポンス。
// 一覧状態は含まない。クライアントは一覧を再取得して反映する。
type jobMutationResponse struct {
	Job     jobResponse `json:"job"`
	Message string      `json:"message"`
}

// deleteJobResponse は削除操作のAPIレスポンス。
type deleteJobResponse struct {
	Message string `json:"message"`
}

// ListJobs は応募レコードの一覧を取得する。
// GET /api/jobs?status=all|pending|interview|declined&page=N
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthRequiredError())
		return
	}

	filter := job.FilterAll
	if s := r.URL.Query().Get("status"); s != "" {
		filter = job.StatusFilter(s)
	}

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		parsed, parseErr := strconv.Atoi(p)
		if parseErr != nil || parsed < 1 {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidPageError(p))
			return
		}
		page = parsed
	}

	result, err := h.service.List(r.Context(), userID, filter, page)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toJobListResponse(result))
}

// GetJob はレコード詳細を全文メモ付きで取得する。
// GET /api/jobs/:id
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthRequiredError())
		return
	}

	jobID := chi.URLParam(r, "id")

	record, err := h.service.Get(r.Context(), userID, jobID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toJobResponse(record))
}

// CreateJob はレコードを作成する。
// POST /api/jobs
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthRequiredError())
		return
	}

	var req jobDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	record, err := h.service.Create(r.Context(), userID, req.toDraft())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(jobMutationResponse{
		Job:     toJobResponse(record),
		Message: msgJobAdded,
	})
}

// UpdateJob はレコードの全フィールドを置換する。
// PUT /api/jobs/:id
func (h *JobHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthRequiredError())
		return
	}

	jobID := chi.URLParam(r, "id")

	var req jobDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	record, err := h.service.Update(r.Context(), userID, jobID, req.toDraft())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobMutationResponse{
		Job:     toJobResponse(record),
		Message: msgJobUpdated,
	})
}

// DeleteJob はレコードを削除する。削除は取り消せない。
// DELETE /api/jobs/:id
func (h *JobHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthRequiredError())
		return
	}

	jobID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, jobID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(deleteJobResponse{
		Message: msgJobDeleted,
	})
}

// --- ヘルパー関数 ---

// notesExcerpt は一覧カード用のメモ抜粋を返す。
// 200文字を超えるメモは先頭100文字と省略記号に短縮され、
// 2番目の戻り値がtrueになる（全文は詳細取得で参照する）。
// 境界は文字数（rune）で判定する。
func notesExcerpt(notes string) (string, bool) {
	runes := []rune(notes)
	if len(runes) <= notesExcerptThreshold {
		return notes, false
	}
	return string(runes[:notesExcerptLength]) + "...", true
}

// toBadgeResponse はバッジ表示情報をAPIレスポンスに変換する。
func toBadgeResponse(b model.BadgeStyle) badgeResponse {
	return badgeResponse{
		Label: b.Label,
		Style: b.Style,
	}
}

// toJobCardResponse はmodel.Jobから一覧カードレスポンスに変換する。
func toJobCardResponse(record *model.Job) jobCardResponse {
	excerpt, truncated := notesExcerpt(record.Notes)
	return jobCardResponse{
		ID:             record.ID,
		Position:       record.Position,
		Company:        record.Company,
		Location:       record.Location,
		Status:         string(record.Status),
		StatusBadge:    toBadgeResponse(model.StatusBadge(record.Status)),
		Mode:           string(record.Mode),
		ModeBadge:      toBadgeResponse(model.ModeBadge(record.Mode)),
		Notes:          excerpt,
		NotesTruncated: truncated,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

// toJobResponse はmodel.Jobから詳細レスポンスに変換する。
func toJobResponse(record *model.Job) jobResponse {
	return jobResponse{
		ID:          record.ID,
		Position:    record.Position,
		Company:     record.Company,
		Location:    record.Location,
		Status:      string(record.Status),
		StatusBadge: toBadgeResponse(model.StatusBadge(record.Status)),
		Mode:        string(record.Mode),
		ModeBadge:   toBadgeResponse(model.ModeBadge(record.Mode)),
		Notes:       record.Notes,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

// toJobListResponse はjob.ListResultからAPIレスポンスに変換する。
func toJobListResponse(result *job.ListResult) jobListResponse {
	cards := make([]jobCardResponse, 0, len(result.Jobs))
	for _, record := range result.Jobs {
		cards = append(cards, toJobCardResponse(record))
	}

	labels := result.PageLabels
	if labels == nil {
		labels = []job.PageLabel{}
	}

	return jobListResponse{
		Jobs: cards,
		Summary: summaryResponse{
			Total:     result.Summary.Total,
			Pending:   result.Summary.Pending,
			Interview: result.Summary.Interview,
			Declined:  result.Summary.Declined,
		},
		Filter:        string(result.Filter),
		Page:          result.Page,
		TotalPages:    result.TotalPages,
		TotalFiltered: result.TotalFiltered,
		PageLabels:    labels,
		ShowingFrom:   result.ShowingFrom,
		ShowingTo:     result.ShowingTo,
	}
}
