package main

import (
	"flag"
	"fmt"
	"log"

	"studyhub/config"
	dbPkg "studyhub/pkg/db"

	"gorm.io/gorm"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "path to config.yaml")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	cfg := config.LoadConfigFrom(*configPath)

	db, err := dbPkg.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	fmt.Println("Database connected successfully")
	fmt.Printf("Driver: %s, Database: %s\n", cfg.Database.Driver, cfg.Database.Database)

	tables, err := tableNames(db)
	if err != nil {
		log.Fatalf("Failed to resolve table names: %v", err)
	}

	// Confirm
	fmt.Printf("\nWARNING: This operation will CLEAR ALL DATA in tables %v!\n", tables)
	if !*yes {
		fmt.Print("Type 'YES' to confirm: ")
		var confirm string
		_, _ = fmt.Scanln(&confirm)
		if confirm != "YES" {
			fmt.Println("Operation cancelled")
			return
		}
	}

	mysql := cfg.Database.Driver != "sqlite"
	if mysql {
		_ = db.Exec("SET FOREIGN_KEY_CHECKS=0").Error
	}

	for _, table := range tables {
		fmt.Printf("Clearing table %s... ", table)
		if err := db.Exec("DELETE FROM " + quote(table)).Error; err != nil {
			fmt.Printf("Failed: %v\n", err)
			continue
		}
		fmt.Println("Success")
	}

	// Reset auto-increment ids
	fmt.Println("\nResetting auto-increment IDs...")
	for _, table := range tables {
		var err error
		if mysql {
			err = db.Exec("ALTER TABLE " + quote(table) + " AUTO_INCREMENT = 1").Error
		} else {
			err = db.Exec("DELETE FROM sqlite_sequence WHERE name = ?", table).Error
		}
		if err != nil {
			fmt.Printf("Resetting %s failed: %v\n", table, err)
		}
	}

	if mysql {
		_ = db.Exec("SET FOREIGN_KEY_CHECKS=1").Error
	}

	fmt.Println("\nDatabase reset completed!")
	fmt.Println("All table data cleared, table structure preserved")
}

// tableNames 按迁移顺序的逆序返回表名（子表在前）
func tableNames(db *gorm.DB) ([]string, error) {
	models := dbPkg.Models()
	names := make([]string, 0, len(models))
	for i := len(models) - 1; i >= 0; i-- {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(models[i]); err != nil {
			return nil, err
		}
		names = append(names, stmt.Schema.Table)
	}
	return names, nil
}

func quote(table string) string {
	return "`" + table + "`"
}
