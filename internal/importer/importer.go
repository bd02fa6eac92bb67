package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"catalog-sync/internal/domain"
	productsvc "catalog-sync/internal/service/product"
)

// ProductCreator persists one product, including its remote registration.
type ProductCreator interface {
	Create(ctx context.Context, in productsvc.CreateInput) (*domain.Product, error)
}

// CSVImporter reads a catalog CSV (id,name,description) and creates each
// product through the full registration path. Rows whose id is already
// registered are counted as skipped rather than failing the run.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductCreator
}

func NewCSVImporter(r io.Reader, products ProductCreator) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:   csvr,
		products: products,
	}
}

// Run parses CSV rows and creates products, returning created and skipped
// counts.
func (i *CSVImporter) Run(ctx context.Context) (created, skipped int, err error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return created, skipped, fmt.Errorf("read row: %w", err)
		}

		in := productsvc.CreateInput{
			ID:          pick(record, index, "id"),
			Name:        pick(record, index, "name"),
			Description: pick(record, index, "description"),
		}
		if in.ID == "" && in.Name == "" {
			continue
		}

		_, err = i.products.Create(ctx, in)
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrAlreadyRegistered), errors.Is(err, domain.ErrAlreadyExists):
			skipped++
		default:
			return created, skipped, fmt.Errorf("create product %q: %w", in.ID, err)
		}
	}

	return created, skipped, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[h] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return record[pos]
}
