// Package security はアプリケーションのセキュリティ機能を提供する。
//
// NotesSanitizerService は応募レコードの自由記述メモをサニタイズし、
// 保存されたメモが他のクライアントで表示される際のXSSリスクを防ぐ。
// メモはプレーンテキストとして扱うため、bluemondayの厳格ポリシーで
// すべてのHTMLタグを除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// NotesSanitizerService はメモのサニタイズ機能のインターフェースを定義する。
// レコードの作成・更新時、保存前に使用される。
type NotesSanitizerService interface {
	// Sanitize はメモからすべてのHTMLタグを除去したテキストを返す。
	// 前後の空白を除去し、空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(notes string) string
}

// notesSanitizer はNotesSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type notesSanitizer struct {
	policy *bluemonday.Policy
}

// NewNotesSanitizer はNotesSanitizerServiceの新しいインスタンスを生成する。
// メモはプレーンテキストのため、タグを一切許可しない厳格ポリシーを使用する。
func NewNotesSanitizer() *notesSanitizer {
	return &notesSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はメモからすべてのHTMLタグを除去したテキストを返す。
func (s *notesSanitizer) Sanitize(notes string) string {
	if notes == "" {
		return ""
	}
	return strings.TrimSpace(s.policy.Sanitize(notes))
}

// compile-time interface check
var _ NotesSanitizerService = (*notesSanitizer)(nil)
