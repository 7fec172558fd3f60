package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid"
)

// referenceAlphabet leaves out I and O so references read back unambiguously.
const referenceAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// NewOrderNumber returns a customer-facing order number such as
// SQ-20240312-7KQ2M9XA.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("SQ-%s-%s", now.UTC().Format("20060102"), randomCode(8))
}

// NewReference returns a gateway style reference like CARD-1710230400123-4F7K2Q.
// The millisecond timestamp keeps references sortable and the random code
// keeps two calls in the same millisecond apart.
func NewReference(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), randomCode(6))
}

func randomCode(n int) string {
	code, err := gonanoid.Generate(referenceAlphabet, n)
	if err != nil {
		// crypto/rand failure; uuid has its own source
		return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:n]
	}
	return code
}
