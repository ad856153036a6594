package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// Database設定
	Database DatabaseConfig

	// データセット処理設定
	Dataset DatasetConfig

	// OpenAI設定（アノテーション用）
	OpenAI OpenAIConfig

	// 外部学習サービス設定
	Trainer TrainerConfig

	// 収集（スクレイピング）設定
	Collector CollectorConfig
}

// DatabaseConfig はデータベース接続設定
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DatasetConfig はデータセットの読み込み・分割・エンコード設定
type DatasetConfig struct {
	TextColumn   string
	LabelColumn  string
	LabelMapping map[string]int
	MaxLength    int
	Seed         int64
	TrainRatio   float64
	StrictLabels bool
}

// OpenAIConfig はOpenAI API設定（LLMアノテーション用）
type OpenAIConfig struct {
	APIKey string
	Model  string
}

// TrainerConfig は外部ファインチューニングサービスの設定
type TrainerConfig struct {
	BaseURL      string
	Model        string
	LearningRate float64
	BatchSize    int
	Epochs       int
	WeightDecay  float64
}

// CollectorConfig はSNS投稿収集の設定
type CollectorConfig struct {
	Query        string
	Headless     bool
	OutputDir    string
	ProgressFile string
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	labelMapping, err := parseLabelMapping(getEnv("DATASET_LABELS", "negative=0,positive=1"))
	if err != nil {
		return nil, fmt.Errorf("DATASET_LABELSの解析に失敗: %w", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "sentiment"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "sentiment"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Dataset: DatasetConfig{
			TextColumn:   getEnv("DATASET_TEXT_COLUMN", "text"),
			LabelColumn:  getEnv("DATASET_LABEL_COLUMN", "sentiment"),
			LabelMapping: labelMapping,
			MaxLength:    getEnvAsInt("DATASET_MAX_LENGTH", 128),
			Seed:         int64(getEnvAsInt("DATASET_SEED", 42)),
			TrainRatio:   getEnvAsFloat("DATASET_TRAIN_RATIO", 0.8),
			StrictLabels: getEnvAsBool("DATASET_STRICT_LABELS", false),
		},
		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Trainer: TrainerConfig{
			BaseURL:      getEnv("TRAINER_BASE_URL", "http://localhost:8000"),
			Model:        getEnv("TRAINER_MODEL", "dbmdz/bert-base-turkish-cased"),
			LearningRate: getEnvAsFloat("TRAINER_LEARNING_RATE", 2e-5),
			BatchSize:    getEnvAsInt("TRAINER_BATCH_SIZE", 16),
			Epochs:       getEnvAsInt("TRAINER_EPOCHS", 3),
			WeightDecay:  getEnvAsFloat("TRAINER_WEIGHT_DECAY", 0.01),
		},
		Collector: CollectorConfig{
			Query:        getEnv("COLLECTOR_QUERY", ""),
			Headless:     getEnvAsBool("COLLECTOR_HEADLESS", true),
			OutputDir:    getEnv("COLLECTOR_OUTPUT_DIR", "data/collected"),
			ProgressFile: getEnv("COLLECTOR_PROGRESS_FILE", "data/collected/progress.json"),
		},
	}

	return cfg, nil
}

// parseLabelMapping は "negative=0,positive=1" 形式の文字列を解析します
func parseLabelMapping(s string) (map[string]int, error) {
	mapping := make(map[string]int)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("不正なラベル指定: %q", pair)
		}
		id, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("不正なクラスID %q: %w", value, err)
		}
		mapping[strings.TrimSpace(key)] = id
	}
	if len(mapping) == 0 {
		return nil, fmt.Errorf("ラベル対応表が空です")
	}
	return mapping, nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat は環境変数を浮動小数点数として取得します
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
