package job

import "github.com/applymate/applymate/internal/model"

// Summary はフィルタ適用前の全レコードから導出した集計値。
// レコードリストが変わるたびに再計算され、独立した状態を持たない。
type Summary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Interview int `json:"interview"`
	Declined  int `json:"declined"`
}

// Summarize は全レコードからステータス別の件数を集計する。
// 未知のステータスはTotalにのみ計上される。
func Summarize(jobs []*model.Job) Summary {
	s := Summary{Total: len(jobs)}
	for _, j := range jobs {
		switch j.Status {
		case model.JobStatusPending:
			s.Pending++
		case model.JobStatusInterview:
			s.Interview++
		case model.JobStatusDeclined:
			s.Declined++
		}
	}
	return s
}
