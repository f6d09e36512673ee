package analytics

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// GrowthRate возвращает процентное изменение current относительно previous.
// При нулевой или отрицательной базе результат 0.
func GrowthRate(current, previous decimal.Decimal) float64 {
	if !previous.IsPositive() {
		return 0
	}
	rate, _ := current.Sub(previous).Div(previous).Mul(hundred).Float64()
	return rate
}

// AverageValue делит сумму на число заказов с округлением до копеек, 0 при пустом наборе.
func AverageValue(total decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}
