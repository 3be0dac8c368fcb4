package job

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/applymate/applymate/internal/model"
	"github.com/applymate/applymate/internal/repository"
)

// Draft は作成・編集フォームから渡される編集可能フィールド。
// 作成時はStatus/Modeが未指定（空）の場合にデフォルト値を補う。
// 更新は常に全フィールド置換で行う。
type Draft struct {
	Position string
	Company  string
	Location string
	Status   model.JobStatus
	Mode     model.JobMode
	Notes    string
}

// NotesSanitizer はメモのサニタイズに必要なインターフェース。
// security.NotesSanitizerServiceの部分集合として定義する。
type NotesSanitizer interface {
	Sanitize(notes string) string
}

// MetricsRecorder はストア操作の成否を記録するインターフェース。
type MetricsRecorder interface {
	RecordJobMutation(operation string, success bool)
}

// ListResult はListの戻り値。一覧表示に必要な導出状態をすべて含む。
type ListResult struct {
	Jobs          []*model.Job // 現在ページの表示スライス
	Summary       Summary      // フィルタ適用前の全件集計
	Filter        StatusFilter
	Page          int
	TotalPages    int
	TotalFiltered int
	PageLabels    []PageLabel
	ShowingFrom   int // 1始まり。表示対象が0件の場合は0
	ShowingTo     int
}

// Service は求人応募レコードのビジネスロジックを提供する。
// 同一ユーザーの変更操作は単一のインフライトロックで直列化し、
// 連続して発行された変更の完了が交錯して更新が失われることを防ぐ。
type Service struct {
	repo      repository.JobRepository
	sanitizer NotesSanitizer
	metrics   MetricsRecorder

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(repo repository.JobRepository, sanitizer NotesSanitizer, metrics MetricsRecorder) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		metrics:   metrics,
		locks:     make(map[string]*sync.Mutex),
	}
}

// List はユーザーの全レコードを取得し、フィルタ・ページネーション適用後の
// 一覧表示状態を返す。pageは以前にクライアントが保持していた状態として
// そのまま復元される。削除により総ページ数を超えた場合、表示スライスは
// 空になる（ページャで戻れる）。
func (s *Service) List(ctx context.Context, userID string, filter StatusFilter, page int) (*ListResult, error) {
	if !ValidFilter(filter) {
		return nil, model.NewInvalidFilterError(string(filter))
	}

	jobs, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		slog.Error("failed to list jobs",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreFailedError("fetch")
	}

	listing := NewListing(jobs)
	listing.Restore(filter, page)

	filtered := listing.Filtered()
	from, to := listing.ShowingRange()

	return &ListResult{
		Jobs:          listing.Visible(),
		Summary:       Summarize(jobs),
		Filter:        listing.Filter(),
		Page:          listing.Page(),
		TotalPages:    listing.TotalPages(),
		TotalFiltered: len(filtered),
		PageLabels:    listing.PageLabels(),
		ShowingFrom:   from,
		ShowingTo:     to,
	}, nil
}

// Get は指定IDのレコードを省略なしで返す（メモ全文表示用）。
// 見つからない場合はJOB_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, userID, jobID string) (*model.Job, error) {
	job, err := s.repo.FindByOwnerAndID(ctx, userID, jobID)
	if err != nil {
		slog.Error("failed to find job",
			slog.String("user_id", userID),
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreFailedError("fetch")
	}
	if job == nil {
		return nil, model.NewJobNotFoundError(jobID)
	}
	return job, nil
}

// Create はレコードを作成する。
// 未指定のステータスはpending、雇用形態はfull-timeにデフォルトされる。
func (s *Service) Create(ctx context.Context, userID string, draft Draft) (*model.Job, error) {
	normalized, err := s.normalizeDraft(draft)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	job := &model.Job{
		ID:        uuid.New().String(),
		UserID:    userID,
		Position:  normalized.Position,
		Company:   normalized.Company,
		Location:  normalized.Location,
		Status:    normalized.Status,
		Mode:      normalized.Mode,
		Notes:     normalized.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	unlock := s.lockUser(userID)
	defer unlock()

	if err := s.repo.Insert(ctx, job); err != nil {
		s.recordMutation("insert", false)
		slog.Error("failed to insert job",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreFailedError("insert")
	}

	s.recordMutation("insert", true)
	slog.Info("job created",
		slog.String("user_id", userID),
		slog.String("job_id", job.ID),
	)
	return job, nil
}

// Update はレコードの全フィールドを置換する。
// idとタイムスタンプは不変で、updated_atのみ更新される。
func (s *Service) Update(ctx context.Context, userID, jobID string, draft Draft) (*model.Job, error) {
	normalized, err := s.normalizeDraft(draft)
	if err != nil {
		return nil, err
	}

	unlock := s.lockUser(userID)
	defer unlock()

	existing, err := s.repo.FindByOwnerAndID(ctx, userID, jobID)
	if err != nil {
		s.recordMutation("update", false)
		slog.Error("failed to find job for update",
			slog.String("user_id", userID),
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreFailedError("update")
	}
	if existing == nil {
		s.recordMutation("update", false)
		return nil, model.NewJobNotFoundError(jobID)
	}

	updated := &model.Job{
		ID:        existing.ID,
		UserID:    existing.UserID,
		Position:  normalized.Position,
		Company:   normalized.Company,
		Location:  normalized.Location,
		Status:    normalized.Status,
		Mode:      normalized.Mode,
		Notes:     normalized.Notes,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now(),
	}

	ok, err := s.repo.Update(ctx, updated)
	if err != nil {
		s.recordMutation("update", false)
		slog.Error("failed to update job",
			slog.String("user_id", userID),
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreFailedError("update")
	}
	if !ok {
		s.recordMutation("update", false)
		return nil, model.NewJobNotFoundError(jobID)
	}

	s.recordMutation("update", true)
	slog.Info("job updated",
		slog.String("user_id", userID),
		slog.String("job_id", jobID),
	)
	return updated, nil
}

// Delete はレコードを削除する。削除は取り消せない。
func (s *Service) Delete(ctx context.Context, userID, jobID string) error {
	unlock := s.lockUser(userID)
	defer unlock()

	ok, err := s.repo.DeleteByOwnerAndID(ctx, userID, jobID)
	if err != nil {
		s.recordMutation("delete", false)
		slog.Error("failed to delete job",
			slog.String("user_id", userID),
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		return model.NewStoreFailedError("delete")
	}
	if !ok {
		s.recordMutation("delete", false)
		return model.NewJobNotFoundError(jobID)
	}

	s.recordMutation("delete", true)
	slog.Info("job deleted",
		slog.String("user_id", userID),
		slog.String("job_id", jobID),
	)
	return nil
}

// normalizeDraft はドラフトの必須フィールド・列挙値を検証し、
// デフォルト補完とメモのサニタイズを行う。
func (s *Service) normalizeDraft(draft Draft) (Draft, error) {
	draft.Position = strings.TrimSpace(draft.Position)
	draft.Company = strings.TrimSpace(draft.Company)
	draft.Location = strings.TrimSpace(draft.Location)

	if draft.Position == "" {
		return Draft{}, model.NewMissingFieldError("position")
	}
	if draft.Company == "" {
		return Draft{}, model.NewMissingFieldError("company")
	}
	if draft.Location == "" {
		return Draft{}, model.NewMissingFieldError("location")
	}

	if draft.Status == "" {
		draft.Status = model.JobStatusPending
	}
	if !model.ValidJobStatus(draft.Status) {
		return Draft{}, model.NewInvalidStatusError(string(draft.Status))
	}

	if draft.Mode == "" {
		draft.Mode = model.JobModeFullTime
	}
	if !model.ValidJobMode(draft.Mode) {
		return Draft{}, model.NewInvalidModeError(string(draft.Mode))
	}

	if s.sanitizer != nil {
		draft.Notes = s.sanitizer.Sanitize(draft.Notes)
	} else {
		draft.Notes = strings.TrimSpace(draft.Notes)
	}

	return draft, nil
}

// lockUser はユーザー単位の変更ロックを獲得し、解放関数を返す。
func (s *Service) lockUser(userID string) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[userID] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// recordMutation はメトリクスレコーダが設定されている場合のみ記録する。
func (s *Service) recordMutation(operation string, success bool) {
	if s.metrics != nil {
		s.metrics.RecordJobMutation(operation, success)
	}
}
