package collections

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Alert messages are written for the collections desk in Colombian Spanish,
// with pesos grouped the local way (500.000).
var esCO = message.NewPrinter(language.MustParse("es-CO"))

func formatPesos(amount decimal.Decimal) string {
	return esCO.Sprintf("$%d", amount.Round(0).IntPart())
}

func upcomingMessage(inst *Installment, c Classification, today time.Time) string {
	days := DaysBetween(today, inst.DueDate)
	if days == 0 {
		return esCO.Sprintf("La cuota %d vence hoy. Saldo pendiente: %s",
			inst.Number, formatPesos(c.Outstanding))
	}
	return esCO.Sprintf("La cuota %d vence el %s (en %d días). Saldo pendiente: %s",
		inst.Number, inst.DueDate.Format("2006-01-02"), days, formatPesos(c.Outstanding))
}

func overdueMessage(inst *Installment, c Classification) string {
	return esCO.Sprintf("La cuota %d está vencida hace %d días. Saldo pendiente: %s",
		inst.Number, c.DaysOverdue, formatPesos(c.Outstanding))
}

func multipleOverdueMessage(count int, total decimal.Decimal, maxDays int) string {
	return esCO.Sprintf("La venta tiene %d cuotas vencidas (la más antigua hace %d días). Total vencido: %s",
		count, maxDays, formatPesos(total))
}
