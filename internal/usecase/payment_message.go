package usecase

import (
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// IranTime is Asia/Tehran.
var IranTime = ptime.Iran()

var (
	faPrinter = message.NewPrinter(language.Persian)
	enPrinter = message.NewPrinter(language.English)
)

// PaymentDetails fills the pay_msg template.
type PaymentDetails struct {
	FullName   string
	PlanLabel  string
	OrderID    string
	Price      int64
	CardNumber string
	CardName   string
	At         time.Time
}

// RenderPaymentMessage substitutes {full_name} {plan_label} {order_id} {date} {time}
// {price} {card_number} {card_name} in tpl.
func RenderPaymentMessage(tpl string, d PaymentDetails) string {
	return strings.NewReplacer(
		"{full_name}", d.FullName,
		"{plan_label}", d.PlanLabel,
		"{order_id}", d.OrderID,
		"{date}", JalaliDate(d.At),
		"{time}", clockTime(d.At),
		"{price}", formatPrice(d.Price),
		"{card_number}", d.CardNumber,
		"{card_name}", d.CardName,
	).Replace(tpl)
}

// renderTemplate substitutes {name} placeholders from vars.
func renderTemplate(tpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

// JalaliDate formats t's day in Tehran as year/month/day of the Solar Hijri calendar, in Persian digits.
func JalaliDate(t time.Time) string {
	pt := ptime.New(t.In(IranTime))
	return persianNumber(pt.Year(), 1) + "/" + persianNumber(int(pt.Month()), 1) + "/" + persianNumber(pt.Day(), 1)
}

func clockTime(t time.Time) string {
	at := t.In(IranTime)
	return persianNumber(at.Hour(), 2) + ":" + persianNumber(at.Minute(), 2) + ":" + persianNumber(at.Second(), 2)
}

func persianNumber(v, minDigits int) string {
	return faPrinter.Sprintf("%v", number.Decimal(v, number.NoSeparator(), number.MinIntegerDigits(minDigits)))
}

// formatPrice groups thousands with commas in Latin digits.
func formatPrice(v int64) string {
	return enPrinter.Sprintf("%d", v)
}
