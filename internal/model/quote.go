package model

// Quote is a pool's price and value, both in counter-asset units.
type Quote struct {
	Price float64
	Value float64
}

// PoolQuote is the outcome of quoting one pool.
type PoolQuote struct {
	Pool  PoolSpec
	Quote Quote
	Err   error
}

// TokenPrice is the aggregated result for one token. Price is only set when Err is nil.
type TokenPrice struct {
	Token  TokenSpec
	Price  float64
	Quotes []PoolQuote
	Err    error
}

// Succeeded returns the number of pools that produced a quote.
func (t TokenPrice) Succeeded() int {
	n := 0
	for _, q := range t.Quotes {
		if q.Err == nil {
			n++
		}
	}
	return n
}
