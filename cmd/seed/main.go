package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/storerate/storerate-backend/config"
	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Bulk-imports stores from an xlsx sheet with the columns:
// name, email, address, category, phone, website, description

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	database, err := db.Connect(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close(database)

	if err := db.Migrate(database); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	storeRepo := repository.NewStoreRepository(database)

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	stores, skipped, err := readStoresFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total stores to import: %d (skipped %d rows)\n", len(stores), skipped)

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 1000
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := storeRepo.BulkCreate(stores, batchSize); err != nil {
		log.Fatal("Failed to bulk create stores:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total stores imported: %d\n", len(stores))
}

func readStoresFromXLSX(filePath string) ([]model.Store, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, 0, fmt.Errorf("no data rows found in XLSX file")
	}

	var stores []model.Store
	seenEmails := make(map[string]bool)
	skipped := 0

	// First row is the header
	for _, row := range rows[1:] {
		name := cell(row, 0)
		email := strings.ToLower(cell(row, 1))

		// name and email are mandatory, email deduplicated
		if name == "" || email == "" || seenEmails[email] {
			skipped++
			continue
		}
		seenEmails[email] = true

		stores = append(stores, model.Store{
			Name:        name,
			Email:       email,
			Address:     cell(row, 2),
			Category:    cell(row, 3),
			Phone:       cell(row, 4),
			Website:     cell(row, 5),
			Description: cell(row, 6),
		})
	}

	return stores, skipped, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
