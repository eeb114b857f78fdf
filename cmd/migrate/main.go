package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"matchtrack/internal/infrastructure/config"

	authinfra "matchtrack/internal/infrastructure/auth"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	migrationsPath := flag.String("dir", "db/migrations", "path to migrations directory")
	seedAdmin := flag.Bool("seed-admin", false, "upsert admin user from ADMIN_USERNAME/ADMIN_PASSWORD")
	flag.Parse()

	cfg, err := config.LoadFromFile(*cfgPath)
	if err != nil {
		log.Fatalf("讀取組態失敗: %v", err)
	}

	if cfg.DB.DSN == "" {
		log.Fatal("config.db.dsn 未設定，無法執行 migration")
	}

	absDir, err := filepath.Abs(*migrationsPath)
	if err != nil {
		log.Fatalf("解析 migrations 路徑失敗: %v", err)
	}
	if _, err := os.Stat(absDir); err != nil {
		log.Fatalf("migrations 目錄不存在: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(absDir, "*.sql"))
	if err != nil {
		log.Fatalf("讀取 migrations 失敗: %v", err)
	}
	if len(files) == 0 {
		log.Fatal("找不到任何 .sql migration 檔案")
	}
	sort.Strings(files)

	db, err := sql.Open("postgres", cfg.DB.DSN)
	if err != nil {
		log.Fatalf("連線資料庫失敗: %v", err)
	}
	defer db.Close()

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("讀取檔案 %s 失敗: %v", f, err)
		}
		log.Printf("執行 migration: %s", filepath.Base(f))
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			log.Fatalf("執行 %s 失敗: %v", filepath.Base(f), err)
		}
	}

	if *seedAdmin {
		if err := upsertAdmin(db); err != nil {
			log.Fatalf("建立管理員失敗: %v", err)
		}
	}

	fmt.Println("Migration 完成")
}

// upsertAdmin 以環境變數建立或更新管理員帳號；密碼一律重新雜湊。
func upsertAdmin(db *sql.DB) error {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return fmt.Errorf("ADMIN_USERNAME 與 ADMIN_PASSWORD 皆須設定")
	}

	hash, err := authinfra.HashPassword(password)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO users (id, username, password_hash, role)
VALUES ($1, $2, $3, 'admin')
ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash, role = 'admin';
`
	if _, err := db.Exec(q, uuid.NewString(), username, hash); err != nil {
		return err
	}
	log.Printf("管理員帳號 %s 已就緒", username)
	return nil
}
