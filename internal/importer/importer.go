package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"storefront/internal/domain"

	"go.uber.org/zap"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product, attributes []domain.AttributePrice) (*domain.Product, error)
}

// CSVImporter reads catalog CSV files with the header
// id,title,description,category,price,imageUrl,attribute,attributePrice.
// A row with an id starts a product; rows without one add attribute prices to it.
type CSVImporter struct {
	reader *csv.Reader
	writer ProductWriter
	logger *zap.Logger
}

func NewCSVImporter(r io.Reader, writer ProductWriter, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVImporter{
		reader: csvr,
		writer: writer,
		logger: logger.Named("importer"),
	}
}

type pendingProduct struct {
	line       int
	product    domain.Product
	attributes []domain.AttributePrice
}

// Run parses CSV rows and upserts products with their attribute prices. Products without
// attribute rows keep whatever attribute prices are already stored.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"id", "title", "price"} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing column %q", required)
		}
	}

	var (
		current  *pendingProduct
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read line %d: %w", line, err)
		}

		idStr := pick(record, index, "id")
		attribute := pick(record, index, "attribute")
		if idStr == "" && attribute == "" {
			continue
		}

		if idStr != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current, err = parseProduct(record, index, line)
			if err != nil {
				return imported, err
			}
		} else if current == nil {
			return imported, fmt.Errorf("line %d: attribute row before any product", line)
		}

		if attribute != "" {
			price, err := parsePrice(pick(record, index, "attributePrice"), current.product.Price)
			if err != nil {
				return imported, fmt.Errorf("line %d: attributePrice: %w", line, err)
			}
			current.attributes = append(current.attributes, domain.AttributePrice{AttributeValue: attribute, Price: price})
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, p *pendingProduct) error {
	if p.product.Title == "" {
		return fmt.Errorf("line %d: product %d has no title", p.line, p.product.ID)
	}
	saved, err := i.writer.Upsert(ctx, p.product, p.attributes)
	if err != nil {
		return fmt.Errorf("upsert product %d: %w", p.product.ID, err)
	}
	i.logger.Debug("product imported", zap.Int("id", saved.ID), zap.Int("attributes", len(p.attributes)))
	return nil
}

func parseProduct(record []string, index map[string]int, line int) (*pendingProduct, error) {
	id, err := strconv.Atoi(pick(record, index, "id"))
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("line %d: id must be a positive integer", line)
	}
	price, err := parsePrice(pick(record, index, "price"), -1)
	if err != nil {
		return nil, fmt.Errorf("line %d: price: %w", line, err)
	}
	return &pendingProduct{
		line: line,
		product: domain.Product{
			ID:          id,
			Title:       pick(record, index, "title"),
			Description: pick(record, index, "description"),
			Category:    pick(record, index, "category"),
			Price:       price,
			ImageURL:    pick(record, index, "imageUrl"),
		},
	}, nil
}

// parsePrice returns def for an empty field; def < 0 makes the field required.
func parsePrice(raw string, def float64) (float64, error) {
	if raw == "" {
		if def < 0 {
			return 0, errors.New("required")
		}
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number %q", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %v", v)
	}
	return v, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
