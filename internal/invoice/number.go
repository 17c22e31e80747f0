package invoice

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
)

// maxNumberRetries bounds how often creation retries after a number collision.
const maxNumberRetries = 5

// GenerateInvoiceNumber produces a number of the form INV-YYYYMMDD-NNNN. The
// suffix is random, so callers must retry on a unique-constraint conflict.
func GenerateInvoiceNumber(at time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("generate invoice suffix: %w", err)
	}
	return fmt.Sprintf("INV-%s-%04d", at.Format("20060102"), n.Int64()), nil
}

// ParseInvoiceDate recovers the date segment of a generated invoice number.
func ParseInvoiceDate(number string) (time.Time, error) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 || parts[0] != "INV" {
		return time.Time{}, internal.NewValidationError("malformed invoice number", internal.ErrCodeValidationFailed)
	}
	t, err := time.Parse("20060102", parts[1])
	if err != nil {
		return time.Time{}, internal.NewValidationError("malformed invoice number date", internal.ErrCodeValidationFailed)
	}
	return t, nil
}
