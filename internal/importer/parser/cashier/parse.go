// Package cashier parses the CSV export of the hospital cashiering system.
package cashier

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/medledger/backend/internal/importer"
	"github.com/medledger/backend/internal/models"
	"github.com/medledger/backend/internal/money"
	"github.com/medledger/backend/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Columns of the cashiering export.
const (
	Date = iota
	Amount
	Currency
	Method
	Reference
	Payer
	Note
)

// Parse parses a cashiering export CSV file into payment previews.
//
// Amounts are display amounts in the export and are converted to minor
// units. Rows in a currency other than the configured one are rejected since
// the ledger is single-currency.
func Parse(f io.Reader) ([]importer.PaymentPreview, error) {
	unit, err := money.Unit()
	if err != nil {
		return nil, err
	}

	scale, err := money.Scale()
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(f)

	// We can reuse the array in the background to improve performance
	reader.ReuseRecord = true

	var previews []importer.PaymentPreview

	// Skip the header line
	_, err = reader.Read()
	if err == io.EOF {
		return []importer.PaymentPreview{}, nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return csvReadError(reader, fmt.Errorf("could not read line in CSV: %w", err))
		}

		date, err := types.ParseDate(record[Date])
		if err != nil {
			return csvReadError(reader, fmt.Errorf("could not parse date: %w", err))
		}

		rowUnit, err := currency.ParseISO(record[Currency])
		if err != nil {
			return csvReadError(reader, fmt.Errorf("could not parse currency: %w", err))
		}

		if rowUnit != unit {
			return csvReadError(reader, fmt.Errorf("the export contains an amount in %s, but this instance is configured for %s", rowUnit, unit))
		}

		display, err := decimal.NewFromString(record[Amount])
		if err != nil {
			return csvReadError(reader, errors.New("the amount could not be parsed to a decimal"))
		}

		amount, err := money.ToMinor(display, scale)
		if err != nil {
			return csvReadError(reader, err)
		}

		if amount <= 0 {
			return csvReadError(reader, errors.New("the amount of a payment must be positive"))
		}

		previews = append(previews, importer.PaymentPreview{
			Payment: models.Payment{
				PaymentDate:     date,
				Amount:          amount,
				Method:          models.PaymentMethod(strings.TrimSpace(record[Method])),
				ReferenceNumber: record[Reference],
				PayerName:       record[Payer],
				Note:            record[Note],
			},
		})
	}

	return previews, nil
}

// csvReadError returns the error including the line of the input the error
// occurred in.
func csvReadError(r *csv.Reader, err error) ([]importer.PaymentPreview, error) {
	// always use the first field, we are only interested in the line
	line, _ := r.FieldPos(1)

	return []importer.PaymentPreview{}, fmt.Errorf("error in line %d of the CSV: %w", line, err)
}
