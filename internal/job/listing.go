// Package job は求人応募レコードの管理機能を提供する。
//
// Listing は一覧表示の状態（全レコード・ステータスフィルタ・現在ページ）を
// 単一のオブジェクトとして所有し、フィルタ済みリスト・表示スライス・
// ページャラベル列を純粋な導出として提供する。
// I/Oも非同期処理も持たず、エラーも発生しない。
package job

import "github.com/applymate/applymate/internal/model"

// PageSize は1ページあたりの表示件数。
const PageSize = 6

// maxDirectPages は省略記号なしで全ページ番号を表示する上限。
const maxDirectPages = 5

// StatusFilter は一覧に適用するステータスフィルタを表す。
// "all" または列挙されたステータス値のいずれか。
type StatusFilter string

// FilterAll は全ステータスを表示するフィルタ。
const FilterAll StatusFilter = "all"

// ValidFilter はフィルタ値が有効であるかを返す。
func ValidFilter(f StatusFilter) bool {
	return f == FilterAll || model.ValidJobStatus(model.JobStatus(f))
}

// PageLabel はページャに表示する1ラベルを表す。
// Ellipsisがtrueの場合は省略記号、falseの場合はPageのページ番号を表示する。
type PageLabel struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// Listing は一覧表示の状態を所有するコントローラ。
// レコードリストは新しい順（created_at降順）で保持する。
// 読み取り専用の利用側はFiltered/Visible等の導出のみを参照し、
// 状態変更はSetFilter/SetPage/SetJobsを通じてのみ行う。
type Listing struct {
	jobs   []*model.Job
	filter StatusFilter
	page   int
}

// NewListing はListingを生成する。初期状態はフィルタなし・1ページ目。
func NewListing(jobs []*model.Job) *Listing {
	return &Listing{
		jobs:   jobs,
		filter: FilterAll,
		page:   1,
	}
}

// Filter は現在のステータスフィルタを返す。
func (l *Listing) Filter() StatusFilter {
	return l.filter
}

// Page は現在のページ番号を返す。常に1以上。
func (l *Listing) Page() int {
	return l.page
}

// SetJobs はレコードリストを置き換える（再取得後の反映）。
// フィルタと現在ページは維持されるため、削除により現在ページが
// 新しい総ページ数を超えた場合、Visibleは空スライスを返す（クラッシュしない）。
func (l *Listing) SetJobs(jobs []*model.Job) {
	l.jobs = jobs
}

// SetFilter はステータスフィルタを変更する。
// フィルタ変更は常に1ページ目に戻る。
func (l *Listing) SetFilter(f StatusFilter) {
	l.filter = f
	l.page = 1
}

// SetPage はページ遷移要求を処理する。
// [1, TotalPages]の範囲外のページ番号は無視し、状態を変更しない。
func (l *Listing) SetPage(page int) {
	if page < 1 || page > l.TotalPages() {
		return
	}
	l.page = page
}

// Restore は以前にクライアントが保持していた表示状態を復元する。
// SetPageと異なり範囲検証を行わないため、削除後に総ページ数を
// 超えたままのページ番号もそのまま保持される。pageが1未満の場合は1に補正する。
func (l *Listing) Restore(filter StatusFilter, page int) {
	l.filter = filter
	if page < 1 {
		page = 1
	}
	l.page = page
}

// Filtered はフィルタ適用後のレコード列を返す。
// 元のリストの相対順序を保持する。FilterAllの場合は全件を返す。
func (l *Listing) Filtered() []*model.Job {
	if l.filter == FilterAll {
		return l.jobs
	}

	status := model.JobStatus(l.filter)
	filtered := make([]*model.Job, 0, len(l.jobs))
	for _, j := range l.jobs {
		if j.Status == status {
			filtered = append(filtered, j)
		}
	}
	return filtered
}

// TotalPages はフィルタ適用後の総ページ数を返す。レコードが0件の場合は0。
func (l *Listing) TotalPages() int {
	n := len(l.Filtered())
	return (n + PageSize - 1) / PageSize
}

// Visible は現在ページの表示スライスを返す。
// 範囲外のページの場合は空スライスを返す。
func (l *Listing) Visible() []*model.Job {
	filtered := l.Filtered()

	start := (l.page - 1) * PageSize
	if start >= len(filtered) {
		return []*model.Job{}
	}

	end := start + PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

// ShowingRange は「X〜Y件目を表示中」の1始まりの範囲を返す。
// 表示対象が0件の場合は(0, 0)を返す。
func (l *Listing) ShowingRange() (from, to int) {
	visible := l.Visible()
	if len(visible) == 0 {
		return 0, 0
	}
	from = (l.page-1)*PageSize + 1
	to = from + len(visible) - 1
	return from, to
}

// PageLabels はページャに表示するラベル列を返す。
// 固定の決定的なウィンドウ方式で、どの分岐でも重複のない昇順の
// ページ番号を生成する。
func (l *Listing) PageLabels() []PageLabel {
	return pageLabels(l.page, l.TotalPages())
}

// pageLabels は現在ページと総ページ数からページャラベル列を計算する。
func pageLabels(current, total int) []PageLabel {
	var labels []PageLabel

	if total <= maxDirectPages {
		// ページ数が少ない場合は全ページを表示
		for i := 1; i <= total; i++ {
			labels = append(labels, PageLabel{Page: i})
		}
		return labels
	}

	switch {
	case current <= 3:
		// 先頭付近: [1, 2, 3, 4, …, total]
		labels = append(labels,
			PageLabel{Page: 1}, PageLabel{Page: 2},
			PageLabel{Page: 3}, PageLabel{Page: 4},
			PageLabel{Ellipsis: true}, PageLabel{Page: total},
		)
	case current >= total-2:
		// 末尾付近: [1, …, total-3, total-2, total-1, total]
		labels = append(labels,
			PageLabel{Page: 1}, PageLabel{Ellipsis: true},
			PageLabel{Page: total - 3}, PageLabel{Page: total - 2},
			PageLabel{Page: total - 1}, PageLabel{Page: total},
		)
	default:
		// 中間: [1, …, current-1, current, current+1, …, total]
		labels = append(labels,
			PageLabel{Page: 1}, PageLabel{Ellipsis: true},
			PageLabel{Page: current - 1}, PageLabel{Page: current},
			PageLabel{Page: current + 1},
			PageLabel{Ellipsis: true}, PageLabel{Page: total},
		)
	}

	return labels
}
