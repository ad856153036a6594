package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jinford/sns-sentiment/internal/platform/config"
	"github.com/jinford/sns-sentiment/internal/platform/logger"
	"github.com/jinford/sns-sentiment/pkg/db"
	"github.com/jinford/sns-sentiment/pkg/dataset"
	"github.com/jinford/sns-sentiment/pkg/repository"
)

// AppContext はコマンド実行に必要な共通コンテキストを保持する
type AppContext struct {
	Config   *config.Config
	Logger   *slog.Logger
	database *db.DB
}

// NewAppContext は設定ファイルを読み込んで AppContext を作成する
// データベース接続は必要になるまで行わない
func NewAppContext(envFile string) (*AppContext, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(os.Getenv("LOG_LEVEL"))
	appLogger := logger.New(logCfg)

	return &AppContext{
		Config: cfg,
		Logger: appLogger,
	}, nil
}

// Database はデータベースに接続し、スキーマを保証して返す（遅延接続）
func (ac *AppContext) Database(ctx context.Context) (*db.DB, error) {
	if ac.database != nil {
		return ac.database, nil
	}

	database, err := db.New(ctx, db.ConnectionParams{
		Host:     ac.Config.Database.Host,
		Port:     ac.Config.Database.Port,
		User:     ac.Config.Database.User,
		Password: ac.Config.Database.Password,
		DBName:   ac.Config.Database.DBName,
		SSLMode:  ac.Config.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := repository.EnsureSchema(ctx, database.Pool); err != nil {
		database.Close()
		return nil, err
	}

	ac.database = database
	return database, nil
}

// Close はAppContextが保持するリソースをクリーンアップする
func (ac *AppContext) Close() {
	if ac.database != nil {
		ac.database.Close()
	}
}

// newLoader は設定からデータセットローダを作成する
func (ac *AppContext) newLoader(strict bool) *dataset.Loader {
	return dataset.NewLoader(dataset.LoaderConfig{
		TextColumn:   ac.Config.Dataset.TextColumn,
		LabelColumn:  ac.Config.Dataset.LabelColumn,
		LabelMapping: ac.Config.Dataset.LabelMapping,
		Strict:       strict || ac.Config.Dataset.StrictLabels,
	})
}
