package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatAmount renders a whole-rupee amount with Indian digit grouping.
func FormatAmount(amount int64) string {
	return inr.Sprintf("%d", amount)
}
