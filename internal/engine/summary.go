package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/support-bot/internal/domain"
)

const summaryTimeLayout = "2006-01-02 15:04:05"

// TicketSummary builds the operator-facing summary attached to an
// escalation ticket: the customer question, what the catalog lookup
// found and what the bot already answered.
func TicketSummary(platform, customerText string, found []domain.Product, botText string) string {
	lines := []string{
		fmt.Sprintf("Help,%s, вопрос клиента: %s", platform, customerText),
	}
	if len(found) > 0 {
		lines = append(lines, "Найдено в базе:")
		for i, p := range found {
			if i == 5 {
				break
			}
			lines = append(lines, fmt.Sprintf("- %s; остаток %d; в пути %d; lead %d",
				ProductLine(p), p.Qty, p.InTransit, p.LeadTimeDays))
		}
	} else {
		lines = append(lines, "В базе не найдено совпадений.")
	}
	lines = append(lines,
		fmt.Sprintf("Ответ бота клиенту: %s", botText),
		"Поставьте + если берете в работу.",
	)
	return strings.Join(lines, "\n")
}

// AdminLargeOrder builds the admin notice for a large-quantity request.
func AdminLargeOrder(platform, customerText string, found *domain.Product, requestedQty int, now time.Time) string {
	line := "Товар не определен"
	if found != nil {
		line = ProductLine(*found)
	}
	return fmt.Sprintf(
		"Info,%s, крупный запрос.\nКлиент хочет: %d шт.\nЗапрос: %s\nПозиция: %s\nВремя: %s",
		platform, requestedQty, customerText, line, now.Format(summaryTimeLayout),
	)
}
