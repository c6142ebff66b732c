/*
Package financial implements the time-value-of-money functions: future
value, payment, number of periods, interest and principal splits, present
value, rate, internal rate of return, net present value and modified
internal rate of return.

PURPOSE:
  Every function evaluates elementwise over scalars or broadcastable arrays
  and runs in any numeric.Domain (float64 or shopspring decimals), so the
  same formula serves spreadsheet-style float calculations and exact
  decimal money math.

THE ANNUITY IDENTITY:
  fv + pv*(1+rate)^nper + pmt*(1+rate*when)/rate*((1+rate)^nper - 1) == 0

  or, when rate == 0:

  fv + pv + pmt*nper == 0

  FV, PMT, NPer and PV solve it for a different unknown. IPMT and PPMT split
  a payment using the remaining balance, which is FV at per-1 periods. Rate
  solves it for rate with Newton-Raphson.

MODULES:
  when.go:          payment timing codes and their accepted spellings
  annuity.go:       FV, PMT, PV (any domain) and NPer (float64)
  amortization.go:  IPMT, PPMT, RemainingBalance
  rate.go:          Newton-Raphson rate solver over batches
  irr.go:           Newton-Raphson IRR on the cash-flow polynomial
  npv.go:           NPV and MIRR

NOT-A-NUMBER:
  Undefined or non-convergent results are the domain's NaN (math.NaN or an
  invalid decimal.NullDecimal), never an error. Errors are reserved for bad
  input: unknown timing values and shapes that cannot broadcast.

USAGE:
  pmt, err := financial.Float.PMT(
      ndarray.Scalar(0.075/12), ndarray.Scalar(180.0), ndarray.Scalar(200000.0),
      nil, nil,
  )
  // pmt.Item() == -1854.0247200054619

SEE ALSO:
  - ndarray/: broadcasting
  - numeric/: numeric domains
*/
package financial
