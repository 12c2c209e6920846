package main

import (
	"compress/gzip"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

var header = []string{
	"code", "discount_type", "discount_value", "min_order_amount", "max_discount_amount",
	"usage_limit", "per_customer_limit", "starts_at", "ends_at", "is_active",
}

// Sample coupon files. WELCOME10 appears in both files; the later file wins on import,
// so its cap of 3000 is what ends up stored.
var files = map[string][][]string{
	"launch.csv.gz": {
		{"WELCOME10", "percent", "10", "", "2500", "", "1", "", "", "true"},
		{"FLAT5000", "fixed", "5000", "50000", "", "100", "", "", "", "true"},
		{"CARDEAL", "fixed", "250000", "10000000", "", "10", "1", "", "", "true"},
		{"EXPIRED20", "percent", "20", "", "", "", "", "2024-01-01T00:00:00Z", "2024-02-01T00:00:00Z", "true"},
	},
	"festive.csv.gz": {
		{"WELCOME10", "percent", "10", "", "3000", "", "1", "", "", "true"},
		{"XMAS15", "percent", "15", "20000", "10000", "500", "2", "2026-12-01T00:00:00Z", "2027-01-07T00:00:00Z", "true"},
		{"PAUSED", "fixed", "1000", "", "", "", "", "", "", "false"},
	},
}

func main() {
	dataDir := flag.String("dir", "data/coupons", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	for filename, rows := range files {
		filePath := filepath.Join(*dataDir, filename)
		if err := writeCouponFile(filePath, rows); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}
		fmt.Printf("Created %s with %d coupons\n", filePath, len(rows))
	}

	fmt.Println("\nImport with COUPON_SEED_FILES=data/coupons/launch.csv.gz,data/coupons/festive.csv.gz")
}

func writeCouponFile(filePath string, rows [][]string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	w := csv.NewWriter(gzipWriter)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write coupons: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush gzip stream: %w", err)
	}
	return nil
}
