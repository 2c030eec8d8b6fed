package models

import "github.com/shopspring/decimal"

// MaxAmount наибольшая сумма, которую вмещает столбец NUMERIC(12, 2).
var MaxAmount = decimal.RequireFromString("9999999999.99")

// ValidAmount сообщает, что сумма положительна, не длиннее двух знаков после
// запятой и помещается в денежный столбец без округления.
func ValidAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(2)) && d.LessThanOrEqual(MaxAmount)
}
