package model

import "time"

// PriceReport is the JSON line written for each priced token.
type PriceReport struct {
	Token      string       `json:"token"`
	Address    string       `json:"address"`
	Price      *float64     `json:"price,omitempty"`
	Error      string       `json:"error,omitempty"`
	Pools      []PoolReport `json:"pools"`
	Block      uint64       `json:"block,omitempty"`
	ComputedAt string       `json:"computed_at"`
}

// PoolReport is a single pool outcome inside a PriceReport.
type PoolReport struct {
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Protocol string   `json:"protocol"`
	Price    *float64 `json:"price,omitempty"`
	Value    *float64 `json:"value,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// NewPriceReport flattens a TokenPrice into its report form.
func NewPriceReport(result TokenPrice, computedAt time.Time) PriceReport {
	report := PriceReport{
		Token:      result.Token.Name,
		Address:    result.Token.Address.Hex(),
		Pools:      make([]PoolReport, 0, len(result.Quotes)),
		ComputedAt: computedAt.UTC().Format(time.RFC3339Nano),
	}
	if result.Err != nil {
		report.Error = result.Err.Error()
	} else {
		price := result.Price
		report.Price = &price
	}

	for _, q := range result.Quotes {
		pool := PoolReport{
			Name:     q.Pool.Name,
			Address:  q.Pool.Address.Hex(),
			Protocol: q.Pool.Protocol.String(),
		}
		if q.Err != nil {
			pool.Error = q.Err.Error()
		} else {
			price, value := q.Quote.Price, q.Quote.Value
			pool.Price = &price
			pool.Value = &value
		}
		report.Pools = append(report.Pools, pool)
	}
	return report
}
