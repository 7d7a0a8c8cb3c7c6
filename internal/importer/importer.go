// Package importer loads a product catalog from a CSV export. The
// table is cleared and fully repopulated; decision logic never depends
// on this package.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/repository"
)

// Result summarizes one import run.
type Result struct {
	Imported      int
	GeneratedSKUs int
	Skipped       int
}

// Header aliases accepted for each product field, RU and EN.
var columnAliases = map[string][]string{
	"sku":            {"sku", "артикул", "код", "код товара", "id", "product_id"},
	"name":           {"name", "название", "наименование", "title", "товар"},
	"qty":            {"qty", "quantity", "количество", "остаток", "stock", "available"},
	"price":          {"price", "цена", "стоимость"},
	"safety_stock":   {"safety_stock", "страховой", "страховой остаток", "min_stock", "минимум"},
	"lead_time_days": {"lead_time_days", "lead time", "leadtime", "срок поставки", "lead", "дней доставки"},
	"status":         {"status", "статус"},
}

// ImportCSV replaces the product table with the file contents. Rows
// without a name are skipped; rows without a SKU get a generated one;
// duplicate SKUs are skipped.
func ImportCSV(ctx context.Context, path string, products repository.ProductRepository, logger *zap.Logger) (Result, error) {
	logger.Info("csv import started", zap.String("path", path))

	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read csv: %w", err)
	}
	text := strings.TrimPrefix(string(raw), "\ufeff")

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = detectDelimiter(text)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Result{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return Result{}, fmt.Errorf("csv has no data rows")
	}

	header := records[0]
	cols := resolveColumns(header)
	if cols["name"] < 0 {
		logger.Error("product name column missing", zap.Strings("columns", header))
		return Result{}, fmt.Errorf("no product name column; expected one of %v", columnAliases["name"])
	}

	logger.Info("clearing product table")
	if err := products.Clear(ctx); err != nil {
		return Result{}, fmt.Errorf("clear products: %w", err)
	}

	var res Result
	seen := make(map[string]struct{})

	for idx, row := range records[1:] {
		line := idx + 2

		name := strings.TrimSpace(cell(row, cols["name"]))
		if name == "" {
			res.Skipped++
			logger.Warn("row skipped, empty name", zap.Int("line", line))
			continue
		}

		sku := strings.TrimSpace(cell(row, cols["sku"]))
		if sku == "" {
			sku = generateSKU(seen)
			res.GeneratedSKUs++
		} else {
			if _, dup := seen[sku]; dup {
				res.Skipped++
				logger.Warn("row skipped, duplicate sku", zap.Int("line", line), zap.String("sku", sku))
				continue
			}
			seen[sku] = struct{}{}
		}

		status := strings.TrimSpace(cell(row, cols["status"]))
		if status == "" {
			status = "active"
		}

		p := domain.Product{
			SKU:          sku,
			Name:         name,
			Qty:          toInt(cell(row, cols["qty"])),
			SafetyStock:  toInt(cell(row, cols["safety_stock"])),
			LeadTimeDays: toInt(cell(row, cols["lead_time_days"])),
			Price:        toFloat(cell(row, cols["price"])),
			Status:       status,
		}
		if err := products.Upsert(ctx, p); err != nil {
			res.Skipped++
			logger.Error("row import failed", zap.Int("line", line), zap.Error(err))
			continue
		}
		res.Imported++
	}

	logger.Info("csv import finished",
		zap.Int("imported", res.Imported),
		zap.Int("generated_skus", res.GeneratedSKUs),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

func detectDelimiter(sample string) rune {
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	if strings.Count(sample, ";") > strings.Count(sample, ",") {
		return ';'
	}
	return ','
}

func resolveColumns(header []string) map[string]int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cols := make(map[string]int, len(columnAliases))
	for field, aliases := range columnAliases {
		cols[field] = -1
		for _, alias := range aliases {
			for i, h := range normalized {
				if h == alias {
					cols[field] = i
					break
				}
			}
			if cols[field] >= 0 {
				break
			}
		}
	}
	return cols
}

func generateSKU(seen map[string]struct{}) string {
	for {
		sku := "GEN-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
		if _, dup := seen[sku]; !dup {
			seen[sku] = struct{}{}
			return sku
		}
	}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func toInt(val string) int {
	s := strings.TrimSpace(val)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0
	}
	return int(f)
}

func toFloat(val string) *float64 {
	s := strings.TrimSpace(val)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &f
}
