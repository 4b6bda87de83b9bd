// Command sheet_drift compares every mirrored table against its sheet and
// reports rows that drifted apart. Exit code 1 means drift was found, 2
// means the comparison itself failed. Intended for cron or a pre-release
// sanity check; it never writes to either side.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atelier-ops/workshop-api/internal/mirror"
	"github.com/atelier-ops/workshop-api/internal/repository"
	"github.com/atelier-ops/workshop-api/internal/schema"
	"github.com/atelier-ops/workshop-api/pkg/config"
	"github.com/atelier-ops/workshop-api/pkg/database"
)

type tableReport struct {
	table        string
	missingSheet int
	straySheet   int
	differing    int
	storeRows    int
}

func main() {
	var (
		tablesFlag string
		timeout    time.Duration
		verbose    bool
	)
	flag.StringVar(&tablesFlag, "tables", "", "comma-separated table names (default: all)")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "overall comparison timeout")
	flag.BoolVar(&verbose, "v", false, "print every differing row")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	client := mirror.NewClient(cfg.Sheets.BaseURL, cfg.Sheets.Token, cfg.Sheets.SpreadsheetID, cfg.Sheets.Timeout)
	rows := repository.NewRowRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	tables := schema.Tables
	if tablesFlag != "" {
		tables = nil
		for _, name := range strings.Split(tablesFlag, ",") {
			table, ok := schema.ByName(strings.TrimSpace(name))
			if !ok {
				log.Fatalf("unknown table %q", name)
			}
			tables = append(tables, table)
		}
	}

	drift := false
	for _, table := range tables {
		report, err := compareTable(ctx, rows, client, table, verbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: comparison failed: %v\n", table.Name, err)
			os.Exit(2)
		}
		fmt.Printf("%-10s store=%d missing_in_sheet=%d stray_in_sheet=%d differing=%d\n",
			report.table, report.storeRows, report.missingSheet, report.straySheet, report.differing)
		if report.missingSheet+report.straySheet+report.differing > 0 {
			drift = true
		}
	}
	if drift {
		os.Exit(1)
	}
}

func compareTable(ctx context.Context, rows *repository.RowRepository, api mirror.API, table schema.Table, verbose bool) (tableReport, error) {
	report := tableReport{table: table.Name}

	storeRows, err := rows.ListRows(ctx, table)
	if err != nil {
		return report, fmt.Errorf("load store rows: %w", err)
	}
	report.storeRows = len(storeRows)

	sheetRows, err := api.GetRows(ctx, table.Sheet)
	if err != nil {
		return report, fmt.Errorf("load sheet rows: %w", err)
	}

	sheetByKey := make(map[int64][]string)
	for i, cells := range sheetRows {
		if i == 0 || len(cells) == 0 {
			continue
		}
		key, err := strconv.ParseInt(strings.TrimSpace(cells[0]), 10, 64)
		if err != nil {
			report.straySheet++
			if verbose {
				fmt.Printf("  %s: sheet row %d has unparseable key %q\n", table.Name, i+1, cells[0])
			}
			continue
		}
		sheetByKey[key] = cells
	}

	pk := table.PK()
	for _, row := range storeRows {
		key, err := rowKey(row[pk.Name])
		if err != nil {
			return report, fmt.Errorf("store row key: %w", err)
		}
		cells, ok := sheetByKey[key]
		if !ok {
			report.missingSheet++
			if verbose {
				fmt.Printf("  %s: row %d missing from sheet\n", table.Name, key)
			}
			continue
		}
		delete(sheetByKey, key)
		want := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			want[i] = mirror.FormatValue(col, row[col.Name])
		}
		if !cellsEqual(want, cells) {
			report.differing++
			if verbose {
				fmt.Printf("  %s: row %d differs\n    store: %v\n    sheet: %v\n", table.Name, key, want, cells)
			}
		}
	}

	report.straySheet += len(sheetByKey)
	if verbose {
		for key := range sheetByKey {
			fmt.Printf("  %s: sheet row %d has no store row\n", table.Name, key)
		}
	}
	return report, nil
}

func rowKey(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported key type %T", value)
	}
}

func cellsEqual(want, got []string) bool {
	for i := range want {
		var cell string
		if i < len(got) {
			cell = strings.TrimSpace(got[i])
		}
		if want[i] != cell {
			return false
		}
	}
	return true
}
