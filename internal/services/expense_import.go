package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "expensetrack/internal/errors"
	"expensetrack/internal/logger"
	"expensetrack/internal/models"
	"expensetrack/internal/uuid"
)

// csvColumns is the column order of the bulk-load format. The first row is
// a header and is skipped.
var csvColumns = []string{"date", "category", "name", "organization", "amount", "notes"}

var csvDateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006"}

// ImportCSV loads expenses from r. The category column holds either a
// category ID or a category name. Either every row is inserted or none.
func (s *expenseService) ImportCSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidCSV, err.Error())
	}
	if len(records) <= 1 {
		return 0, nil
	}

	imported := 0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		categories := make(map[string]string)
		for i, record := range records[1:] {
			line := i + 2
			input, err := parseCSVRecord(tx, record, categories)
			if err != nil {
				return csvLineError(line, err)
			}
			if _, err := createExpenseWithDB(tx, input); err != nil {
				return csvLineError(line, err)
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Named("import").Infow("expenses imported", "rows", imported)
	return imported, nil
}

func parseCSVRecord(tx *gorm.DB, record []string, categories map[string]string) (ExpenseInput, error) {
	if len(record) < len(csvColumns)-1 {
		return ExpenseInput{}, fmt.Errorf("expected %d columns (%s), got %d",
			len(csvColumns), strings.Join(csvColumns, ", "), len(record))
	}

	date, err := parseCSVDate(strings.TrimSpace(record[0]))
	if err != nil {
		return ExpenseInput{}, err
	}

	categoryID, err := resolveCategory(tx, strings.TrimSpace(record[1]), categories)
	if err != nil {
		return ExpenseInput{}, err
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(record[4]))
	if err != nil {
		return ExpenseInput{}, fmt.Errorf("invalid amount %q", record[4])
	}

	input := ExpenseInput{
		ExpenseDate:  date,
		CategoryID:   categoryID,
		Name:         record[2],
		Organization: record[3],
		Amount:       amount,
	}
	if len(record) > 5 {
		input.Notes = record[5]
	}
	return input, nil
}

func parseCSVDate(s string) (time.Time, error) {
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// resolveCategory maps an ID or a name to a category ID, caching lookups.
func resolveCategory(tx *gorm.DB, ref string, cache map[string]string) (string, error) {
	if id, ok := cache[ref]; ok {
		return id, nil
	}

	q := tx.Where("name = ?", ref)
	if uuid.IsValid(ref) {
		q = tx.Where("id = ?", ref)
	}

	var category models.ExpenseCategory
	if err := q.First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("unknown category %q", ref)
		}
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	cache[ref] = category.ID
	return category.ID, nil
}

func csvLineError(line int, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.ErrInternalServer.Code {
		return err
	}
	msg := err.Error()
	if appErr != nil {
		msg = appErr.Message
	}
	return apperrors.WithMessage(apperrors.ErrInvalidCSV, fmt.Sprintf("line %d: %s", line, msg))
}
