// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/applymate/applymate/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// JobRepository は求人応募レコードの永続化インターフェース。
// すべての操作はオーナーのユーザーIDでスコープされ、
// 他ユーザーのレコードは観測も変更もできない。
type JobRepository interface {
	// ListByOwner は指定ユーザーの全レコードをcreated_at降順（新しい順）で返す。
	ListByOwner(ctx context.Context, userID string) ([]*model.Job, error)

	// FindByOwnerAndID は指定ユーザーの指定IDレコードを取得する。
	// 見つからない場合はnilを返す。
	FindByOwnerAndID(ctx context.Context, userID, id string) (*model.Job, error)

	// Insert はレコードを作成する。
	Insert(ctx context.Context, job *model.Job) error

	// Update はレコードの全フィールドを置換する。
	// オーナー不一致または未存在の場合はfalseを返す。
	Update(ctx context.Context, job *model.Job) (bool, error)

	// DeleteByOwnerAndID は指定ユーザーの指定IDレコードを削除する。
	// 削除対象が存在しない場合はfalseを返す。削除は取り消せない。
	DeleteByOwnerAndID(ctx context.Context, userID, id string) (bool, error)
}
