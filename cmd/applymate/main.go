// applymate は求人応募トラッカーのAPIサーバー。
//
// サブコマンド:
//
//	serve       APIサーバーを起動する（デフォルト）
//	migrate     データベースマイグレーションを適用する
//	healthcheck /healthエンドポイントの疎通を確認する
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/applymate/applymate/internal/app"
)

func main() {
	// .envは存在する場合のみ読み込む（本番では環境変数を直接使う）
	_ = godotenv.Load()

	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "applymate: %v\n", err)
		os.Exit(1)
	}
}
