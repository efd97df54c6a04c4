package identity

import (
	"strconv"
	"strings"

	interrors "github.com/invoiceagent/gateway/internal/errors"
	"github.com/pkg/errors"
)

// Bucket is the coarse invoices-per-month range a business selects at signup
// instead of an exact count.
type Bucket string

const (
	Bucket1To10  Bucket = "1-10"
	Bucket11To25 Bucket = "11-25"
	Bucket26To50 Bucket = "26-50"
	Bucket50Plus Bucket = "50+"
)

// fiftyPlusUpperLimit is the sentinel sent to the backend for the open-ended
// bucket.
const fiftyPlusUpperLimit = 100

// Draft describes an in-progress registration. It is consumed synchronously
// by Register and never persisted beyond the pending-verification email.
type Draft struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	BusinessName     string `json:"businessName"`
	BusinessType     string `json:"businessType"`
	InvoicesPerMonth Bucket `json:"invoicesPerMonth"`
	FirstName        string `json:"firstName,omitempty"`
	LastName         string `json:"lastName,omitempty"`
}

// UpperLimit derives the numeric value sent to the backend: the bucket's
// upper bound, or the fixed sentinel for "50+".
func (b Bucket) UpperLimit() (int, error) {
	if b == Bucket50Plus {
		return fiftyPlusUpperLimit, nil
	}
	_, upper, found := strings.Cut(string(b), "-")
	if !found {
		return 0, errors.Wrapf(interrors.ErrUnknownBucket, "%q", b)
	}
	limit, err := strconv.Atoi(upper)
	if err != nil {
		return 0, errors.Wrapf(interrors.ErrUnknownBucket, "%q", b)
	}
	return limit, nil
}

func (b Bucket) valid() bool {
	switch b {
	case Bucket1To10, Bucket11To25, Bucket26To50, Bucket50Plus:
		return true
	}
	return false
}

func (d Draft) validate() error {
	if strings.TrimSpace(d.Email) == "" {
		return interrors.ErrMissingEmail
	}
	if d.Password == "" {
		return interrors.ErrMissingPassword
	}
	if !d.InvoicesPerMonth.valid() {
		return errors.Wrapf(interrors.ErrUnknownBucket, "%q", d.InvoicesPerMonth)
	}
	return nil
}
