package services

import "github.com/shopspring/decimal"

// Money is computed in decimal and rounded to cents; the float64 fields of
// the models only ever hold values produced here.
const centPlaces = 2

func money(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(centPlaces)
}

func sumMoney(values []float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(money(v))
	}
	return total.InexactFloat64()
}
