package job

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/applymate/applymate/internal/model"
)

// mockJobRepo はJobRepositoryのモック。
type mockJobRepo struct {
	listByOwnerFunc        func(ctx context.Context, userID string) ([]*model.Job, error)
	findByOwnerAndIDFunc   func(ctx context.Context, userID, id string) (*model.Job, error)
	insertFunc             func(ctx context.Context, job *model.Job) error
	updateFunc             func(ctx context.Context, job *model.Job) (bool, error)
	deleteByOwnerAndIDFunc func(ctx context.Context, userID, id string) (bool, error)
}

func (m *mockJobRepo) ListByOwner(ctx context.Context, userID string) ([]*model.Job, error) {
	if m.listByOwnerFunc != nil {
		return m.listByOwnerFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockJobRepo) FindByOwnerAndID(ctx context.Context, userID, id string) (*model.Job, error) {
	if m.findByOwnerAndIDFunc != nil {
		return m.findByOwnerAndIDFunc(ctx, userID, id)
	}
	return nil, nil
}

func (m *mockJobRepo) Insert(ctx context.Context, job *model.Job) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, job)
	}
	return nil
}

func (m *mockJobRepo) Update(ctx context.Context, job *model.Job) (bool, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, job)
	}
	return true, nil
}

func (m *mockJobRepo) DeleteByOwnerAndID(ctx context.Context, userID, id string) (bool, error) {
	if m.deleteByOwnerAndIDFunc != nil {
		return m.deleteByOwnerAndIDFunc(ctx, userID, id)
	}
	return true, nil
}

// mockMetrics はMetricsRecorderのモック。記録された呼び出しを保持する。
type mockMetrics struct {
	calls []string
}

func (m *mockMetrics) RecordJobMutation(operation string, success bool) {
	m.calls = append(m.calls, fmt.Sprintf("%s:%v", operation, success))
}

func assertAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *model.APIError", err)
	}
	if apiErr.Code != code {
		t.Errorf("error code = %q, want %q", apiErr.Code, code)
	}
}

func TestService_List(t *testing.T) {
	repo := &mockJobRepo{
		listByOwnerFunc: func(ctx context.Context, userID string) ([]*model.Job, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want user-1", userID)
			}
			return makeJobs(14), nil
		},
	}
	svc := NewService(repo, nil, nil)

	result, err := svc.List(context.Background(), "user-1", FilterAll, 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(result.Jobs) != 6 {
		t.Errorf("len(Jobs) = %d, want 6", len(result.Jobs))
	}
	if result.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", result.TotalPages)
	}
	if result.TotalFiltered != 14 {
		t.Errorf("TotalFiltered = %d, want 14", result.TotalFiltered)
	}
	if result.Summary.Total != 14 {
		t.Errorf("Summary.Total = %d, want 14", result.Summary.Total)
	}
	if result.ShowingFrom != 1 || result.ShowingTo != 6 {
		t.Errorf("ShowingRange = (%d, %d), want (1, 6)", result.ShowingFrom, result.ShowingTo)
	}
}

func TestService_List_FilterNarrowsListButNotSummary(t *testing.T) {
	repo := &mockJobRepo{
		listByOwnerFunc: func(ctx context.Context, userID string) ([]*model.Job, error) {
			return makeJobs(9), nil // pending 3, interview 3, declined 3
		},
	}
	svc := NewService(repo, nil, nil)

	result, err := svc.List(context.Background(), "user-1", StatusFilter(model.JobStatusInterview), 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if result.TotalFiltered != 3 {
		t.Errorf("TotalFiltered = %d, want 3", result.TotalFiltered)
	}
	// 集計はフィルタの影響を受けない
	want := Summary{Total: 9, Pending: 3, Interview: 3, Declined: 3}
	if result.Summary != want {
		t.Errorf("Summary = %+v, want %+v", result.Summary, want)
	}
}

func TestService_List_InvalidFilter(t *testing.T) {
	svc := NewService(&mockJobRepo{}, nil, nil)

	_, err := svc.List(context.Background(), "user-1", StatusFilter("bogus"), 1)
	assertAPIErrorCode(t, err, model.ErrCodeInvalidFilter)
}

func TestService_List_StalePageReturnsEmptySlice(t *testing.T) {
	repo := &mockJobRepo{
		listByOwnerFunc: func(ctx context.Context, userID string) ([]*model.Job, error) {
			return makeJobs(12), nil // 2ページ
		},
	}
	svc := NewService(repo, nil, nil)

	result, err := svc.List(context.Background(), "user-1", FilterAll, 3)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(result.Jobs) != 0 {
		t.Errorf("len(Jobs) = %d, want 0", len(result.Jobs))
	}
	if result.Page != 3 {
		t.Errorf("Page = %d, want 3 (restored as-is)", result.Page)
	}
	if result.TotalPages != 2 {
		t.Errorf("TotalPages = %d, want 2", result.TotalPages)
	}
}

func TestService_List_RepoError(t *testing.T) {
	repo := &mockJobRepo{
		listByOwnerFunc: func(ctx context.Context, userID string) ([]*model.Job, error) {
			return nil, errors.New("db down")
		},
	}
	svc := NewService(repo, nil, nil)

	_, err := svc.List(context.Background(), "user-1", FilterAll, 1)
	assertAPIErrorCode(t, err, model.ErrCodeStoreFailed)
}

func TestService_Get(t *testing.T) {
	repo := &mockJobRepo{
		findByOwnerAndIDFunc: func(ctx context.Context, userID, id string) (*model.Job, error) {
			return &model.Job{ID: id, UserID: userID, Position: "Engineer"}, nil
		},
	}
	svc := NewService(repo, nil, nil)

	job, err := svc.Get(context.Background(), "user-1", "job-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if job.ID != "job-1" {
		t.Errorf("job.ID = %q, want job-1", job.ID)
	}
}

func TestService_Get_NotFound(t *testing.T) {
	repo := &mockJobRepo{
		findByOwnerAndIDFunc: func(ctx context.Context, userID, id string) (*model.Job, error) {
			return nil, nil
		},
	}
	svc := NewService(repo, nil, nil)

	_, err := svc.Get(context.Background(), "user-1", "missing")
	assertAPIErrorCode(t, err, model.ErrCodeJobNotFound)
}

func TestService_Create(t *testing.T) {
	var inserted *model.Job
	repo := &mockJobRepo{
		insertFunc: func(ctx context.Context, job *model.Job) error {
			inserted = job
			return nil
		},
	}
	metrics := &mockMetrics{}
	svc := NewService(repo, nil, metrics)

	draft := Draft{
		Position: "Backend Engineer",
		Company:  "Example Inc.",
		Location: "Tokyo",
		Status:   model.JobStatusInterview,
		Mode:     model.JobModePartTime,
		Notes:    "referred by a friend",
	}

	job, err := svc.Create(context.Background(), "user-1", draft)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if inserted == nil {
		t.Fatal("Insert was not called")
	}
	if job.ID == "" {
		t.Error("job.ID is empty, want generated ID")
	}
	if job.UserID != "user-1" {
		t.Errorf("job.UserID = %q, want user-1", job.UserID)
	}
	if job.Status != model.JobStatusInterview {
		t.Errorf("job.Status = %q, want interview", job.Status)
	}
	if job.Mode != model.JobModePartTime {
		t.Errorf("job.Mode = %q, want part-time", job.Mode)
	}
	if job.CreatedAt.IsZero() || !job.CreatedAt.Equal(job.UpdatedAt) {
		t.Errorf("timestamps = (%v, %v), want equal non-zero", job.CreatedAt, job.UpdatedAt)
	}

	if len(metrics.calls) != 1 || metrics.calls[0] != "insert:true" {
		t.Errorf("metrics calls = %v, want [insert:true]", metrics.calls)
	}
}

func TestService_Create_DefaultsStatusAndMode(t *testing.T) {
	repo := &mockJobRepo{}
	svc := NewService(repo, nil, nil)

	job, err := svc.Create(context.Background(), "user-1", Draft{
		Position: "Engineer",
		Company:  "Example Inc.",
		Location: "Osaka",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if job.Status != model.JobStatusPending {
		t.Errorf("job.Status = %q, want pending (default)", job.Status)
	}
	if job.Mode != model.JobModeFullTime {
		t.Errorf("job.Mode = %q, want full-time (default)", job.Mode)
	}
}

func TestService_Create_MissingRequiredField(t *testing.T) {
	insertCalled := false
	repo := &mockJobRepo{
		insertFunc: func(ctx context.Context, job *model.Job) error {
			insertCalled = true
			return nil
		},
	}
	svc := NewService(repo, nil, nil)

	tests := []struct {
		name  string
		draft Draft
	}{
		{"empty position", Draft{Company: "C", Location: "L"}},
		{"empty company", Draft{Position: "P", Location: "L"}},
		{"empty location", Draft{Position: "P", Company: "C"}},
		{"whitespace only", Draft{Position: "  ", Company: "C", Location: "L"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "user-1", tt.draft)
			assertAPIErrorCode(t, err, model.ErrCodeMissingField)
		})
	}

	if insertCalled {
		t.Error("Insert was called for invalid draft")
	}
}

func TestService_Create_InvalidEnums(t *testing.T) {
	svc := NewService(&mockJobRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), "user-1", Draft{
		Position: "P", Company: "C", Location: "L",
		Status: model.JobStatus("maybe"),
	})
	assertAPIErrorCode(t, err, model.ErrCodeInvalidStatus)

	_, err = svc.Create(context.Background(), "user-1", Draft{
		Position: "P", Company: "C", Location: "L",
		Mode: model.JobMode("contract"),
	})
	assertAPIErrorCode(t, err, model.ErrCodeInvalidMode)
}

// 失敗した作成は放棄され、エラーが1件返るのみで他のストア操作は発生しない。
func TestService_Create_InsertFailure(t *testing.T) {
	repo := &mockJobRepo{
		insertFunc: func(ctx context.Context, job *model.Job) error {
			return errors.New("insert failed")
		},
	}
	metrics := &mockMetrics{}
	svc := NewService(repo, nil, metrics)

	_, err := svc.Create(context.Background(), "user-1", Draft{
		Position: "P", Company: "C", Location: "L",
	})
	assertAPIErrorCode(t, err, model.ErrCodeStoreFailed)

	if len(metrics.calls) != 1 || metrics.calls[0] != "insert:false" {
		t.Errorf("metrics calls = %v, want [insert:false]", metrics.calls)
	}
}

// 更新は全フィールド置換で、ID・所有者・作成日時は維持される。
func TestService_Update_FullReplacement(t *testing.T) {
	existing := makeJobs(1)[0]
	existing.Notes = "old notes"

	var updated *model.Job
	repo := &mockJobRepo{
		findByOwnerAndIDFunc: func(ctx context.Context, userID, id string) (*model.Job, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, job *model.Job) (bool, error) {
			updated = job
			return true, nil
		},
	}
	svc := NewService(repo, nil, nil)

	job, err := svc.Update(context.Background(), "user-1", existing.ID, Draft{
		Position: "Staff Engineer",
		Company:  "NewCo",
		Location: "Remote",
		Status:   model.JobStatusDeclined,
		Mode:     model.JobModeInternship,
		// Notesは未指定: 置換されて空になる
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated == nil {
		t.Fatal("Update was not called")
	}
	if job.ID != existing.ID {
		t.Errorf("job.ID = %q, want %q", job.ID, existing.ID)
	}
	if job.UserID != existing.UserID {
		t.Errorf("job.UserID = %q, want %q", job.UserID, existing.UserID)
	}
	if !job.CreatedAt.Equal(existing.CreatedAt) {
		t.Errorf("job.CreatedAt = %v, want %v", job.CreatedAt, existing.CreatedAt)
	}
	if job.Position != "Staff Engineer" || job.Company != "NewCo" || job.Location != "Remote" {
		t.Errorf("fields not replaced: %+v", job)
	}
	if job.Notes != "" {
		t.Errorf("job.Notes = %q, want empty (full replacement)", job.Notes)
	}
	if !job.UpdatedAt.After(existing.CreatedAt) {
		t.Errorf("job.UpdatedAt = %v, want after %v", job.UpdatedAt, existing.CreatedAt)
	}
}

func TestService_Update_NotFound(t *testing.T) {
	repo := &mockJobRepo{
		findByOwnerAndIDFunc: func(ctx context.Context, userID, id string) (*model.Job, error) {
			return nil, nil
		},
	}
	svc := NewService(repo, nil, nil)

	_, err := svc.Update(context.Background(), "user-1", "missing", Draft{
		Position: "P", Company: "C", Location: "L",
	})
	assertAPIErrorCode(t, err, model.ErrCodeJobNotFound)
}

func TestService_Update_StoreFailure(t *testing.T) {
	repo := &mockJobRepo{
		findByOwnerAndIDFunc: func(ctx context.Context, userID, id string) (*model.Job, error) {
			return makeJobs(1)[0], nil
		},
		updateFunc: func(ctx context.Context, job *model.Job) (bool, error) {
			return false, errors.New("update failed")
		},
	}
	metrics := &mockMetrics{}
	svc := NewService(repo, nil, metrics)

	_, err := svc.Update(context.Background(), "user-1", "job-1", Draft{
		Position: "P", Company: "C", Location: "L",
	})
	assertAPIErrorCode(t, err, model.ErrCodeStoreFailed)

	if len(metrics.calls) != 1 || metrics.calls[0] != "update:false" {
		t.Errorf("metrics calls = %v, want [update:false]", metrics.calls)
	}
}

func TestService_Delete(t *testing.T) {
	var deletedID string
	repo := &mockJobRepo{
		deleteByOwnerAndIDFunc: func(ctx context.Context, userID, id string) (bool, error) {
			deletedID = id
			return true, nil
		},
	}
	metrics := &mockMetrics{}
	svc := NewService(repo, nil, metrics)

	if err := svc.Delete(context.Background(), "user-1", "job-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deletedID != "job-1" {
		t.Errorf("deleted ID = %q, want job-1", deletedID)
	}
	if len(metrics.calls) != 1 || metrics.calls[0] != "delete:true" {
		t.Errorf("metrics calls = %v, want [delete:true]", metrics.calls)
	}
}

func TestService_Delete_NotFound(t *testing.T) {
	repo := &mockJobRepo{
		deleteByOwnerAndIDFunc: func(ctx context.Context, userID, id string) (bool, error) {
			return false, nil
		},
	}
	svc := NewService(repo, nil, nil)

	err := svc.Delete(context.Background(), "user-1", "missing")
	assertAPIErrorCode(t, err, model.ErrCodeJobNotFound)
}

// sanitizerが設定されている場合、メモは保存前にサニタイズされる。
type stubSanitizer struct{}

func (stubSanitizer) Sanitize(notes string) string { return "sanitized" }

func TestService_Create_SanitizesNotes(t *testing.T) {
	var inserted *model.Job
	repo := &mockJobRepo{
		insertFunc: func(ctx context.Context, job *model.Job) error {
			inserted = job
			return nil
		},
	}
	svc := NewService(repo, stubSanitizer{}, nil)

	_, err := svc.Create(context.Background(), "user-1", Draft{
		Position: "P", Company: "C", Location: "L",
		Notes: "<script>alert(1)</script>",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if inserted.Notes != "sanitized" {
		t.Errorf("inserted.Notes = %q, want sanitized", inserted.Notes)
	}
}
