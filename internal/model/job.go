// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// JobStatus は応募の選考状況を表す。
type JobStatus string

const (
	// JobStatusPending は返答待ちの状態を示す。
	JobStatusPending JobStatus = "pending"
	// JobStatusInterview は面接進行中の状態を示す。
	JobStatusInterview JobStatus = "interview"
	// JobStatusDeclined は不採用・辞退の状態を示す。
	JobStatusDeclined JobStatus = "declined"
)

// JobMode は雇用形態を表す。
type JobMode string

const (
	// JobModeFullTime はフルタイム勤務を示す。
	JobModeFullTime JobMode = "full-time"
	// JobModePartTime はパートタイム勤務を示す。
	JobModePartTime JobMode = "part-time"
	// JobModeInternship はインターンシップを示す。
	JobModeInternship JobMode = "internship"
)

// Job は1件の求人応募レコードを表す。
// レコードは必ず1人のユーザーに属し、他ユーザーのレコードは観測できない。
type Job struct {
	ID        string
	UserID    string
	Position  string
	Company   string
	Location  string
	Status    JobStatus
	Mode      JobMode
	Notes     string // 任意。空文字列は「メモなし」と同義
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidJobStatus はstatusが列挙値のいずれかであるかを返す。
func ValidJobStatus(s JobStatus) bool {
	switch s {
	case JobStatusPending, JobStatusInterview, JobStatusDeclined:
		return true
	}
	return false
}

// ValidJobMode はmodeが列挙値のいずれかであるかを返す。
func ValidJobMode(m JobMode) bool {
	switch m {
	case JobModeFullTime, JobModePartTime, JobModeInternship:
		return true
	}
	return false
}

// BadgeStyle はステータス・雇用形態バッジの表示情報。
// Labelは表示文字列、Styleはフロントエンドが解釈するスタイルキー。
type BadgeStyle struct {
	Label string
	Style string
}

// statusBadges はステータスごとの表示設定。
var statusBadges = map[JobStatus]BadgeStyle{
	JobStatusPending:   {Label: "Pending", Style: "status-pending"},
	JobStatusInterview: {Label: "Interview", Style: "status-interview"},
	JobStatusDeclined:  {Label: "Declined", Style: "status-declined"},
}

// modeBadges は雇用形態ごとの表示設定。
var modeBadges = map[JobMode]BadgeStyle{
	JobModeFullTime:   {Label: "Full-time", Style: "mode-full-time"},
	JobModePartTime:   {Label: "Part-time", Style: "mode-part-time"},
	JobModeInternship: {Label: "Internship", Style: "mode-internship"},
}

// StatusBadge はステータスの表示設定を返す。
// 未知の値の場合はハイフンをスペースに置換したラベルと中立スタイルにフォールバックする。
// いかなる値でもpanicしない。
func StatusBadge(s JobStatus) BadgeStyle {
	if b, ok := statusBadges[s]; ok {
		return b
	}
	return fallbackBadge(string(s))
}

// ModeBadge は雇用形態の表示設定を返す。
// 未知の値の場合はハイフンをスペースに置換したラベルと中立スタイルにフォールバックする。
func ModeBadge(m JobMode) BadgeStyle {
	if b, ok := modeBadges[m]; ok {
		return b
	}
	return fallbackBadge(string(m))
}

// fallbackBadge は未知の列挙値に対する汎用表示を生成する。
func fallbackBadge(raw string) BadgeStyle {
	return BadgeStyle{
		Label: strings.ReplaceAll(raw, "-", " "),
		Style: "neutral",
	}
}
