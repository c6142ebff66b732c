/*
schedule.go - Amortisation schedules

PURPOSE:
  Expands a fixed-payment loan into one row per period: the payment, its
  interest and principal split, and the balance left after the payment.
  Rows are computed with the vectorised IPMT/PPMT over the period vector
  1..nper, so a schedule is exactly what those functions return.

SIGN CONVENTION:
  Money received is positive, money paid is negative. A loan of 2500 has
  pv = +2500 and negative payments; the balance shrinks towards zero as
  the (negative) principal portions are added to it.

EXAMPLE:
  s, _ := schedule.Build(0.0824/12, 12, 2500, 0, financial.End)
  for _, r := range s.Rows {
      fmt.Printf("%2d %8.2f %8.2f %8.2f\n", r.Period, r.Principal, r.Interest, r.Balance)
  }
  //  1  -200.58   -17.17  2299.42
  //  ...
  // 12  -216.26    -1.49     0.00

SEE ALSO:
  - financial/amortization.go: IPMT, PPMT
*/
package schedule

import (
	"errors"
	"fmt"
	"math"

	"github.com/warp/tvm-engine/financial"
	"github.com/warp/tvm-engine/ndarray"
)

// ErrInvalidTerm is returned when nper is not a positive whole number.
var ErrInvalidTerm = errors.New("term must be a positive whole number of periods")

// MaxPeriods bounds the size of a single schedule.
const MaxPeriods = 12 * 100

// Row is one period of a schedule.
type Row[T any] struct {
	Period    int
	Payment   T
	Principal T
	Interest  T
	// Balance is the outstanding balance after this period's payment.
	Balance T
}

// Schedule is a full amortisation table.
type Schedule[T any] struct {
	Payment        T
	TotalInterest  T
	TotalPrincipal T
	Rows           []Row[T]
}

// Build computes a float64 schedule.
func Build(rate, nper, pv, fv float64, when financial.When) (*Schedule[float64], error) {
	return BuildIn(financial.Float, rate, nper, pv, fv, when)
}

// BuildIn computes a schedule in the calculator's numeric domain.
func BuildIn[T any](c *financial.Calculator[T], rate, nper, pv, fv T, when financial.When) (*Schedule[T], error) {
	d := c.Domain()

	n := d.Float64(nper)
	if math.IsNaN(n) || n < 1 || n != math.Trunc(n) || n > MaxPeriods {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTerm, d.String(nper))
	}
	periods := int(n)

	per := make([]T, periods)
	for i := range per {
		per[i] = d.FromInt(int64(i + 1))
	}
	perArr := ndarray.Vector(per...)
	w := ndarray.Scalar(when)

	payment, err := c.PMT(ndarray.Scalar(rate), ndarray.Scalar(nper), ndarray.Scalar(pv), ndarray.Scalar(fv), w)
	if err != nil {
		return nil, err
	}
	interest, err := c.IPMT(ndarray.Scalar(rate), perArr, ndarray.Scalar(nper), ndarray.Scalar(pv), ndarray.Scalar(fv), w)
	if err != nil {
		return nil, err
	}
	principal, err := c.PPMT(ndarray.Scalar(rate), perArr, ndarray.Scalar(nper), ndarray.Scalar(pv), ndarray.Scalar(fv), w)
	if err != nil {
		return nil, err
	}

	zero := d.FromInt(0)
	s := &Schedule[T]{
		Payment:        payment.Item(),
		TotalInterest:  zero,
		TotalPrincipal: zero,
		Rows:           make([]Row[T], periods),
	}

	balance := pv
	for i := 0; i < periods; i++ {
		p, ip := principal.At(i), interest.At(i)
		balance = d.Add(balance, p)
		s.TotalInterest = d.Add(s.TotalInterest, ip)
		s.TotalPrincipal = d.Add(s.TotalPrincipal, p)
		s.Rows[i] = Row[T]{
			Period:    i + 1,
			Payment:   s.Payment,
			Principal: p,
			Interest:  ip,
			Balance:   balance,
		}
	}
	return s, nil
}
