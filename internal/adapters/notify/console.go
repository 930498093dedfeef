package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/ladderbot/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// ReportOrders imprime el estado de las órdenes trackeadas en el modo
// configurado.
func (c *Console) ReportOrders(_ context.Context, orders []domain.TrackedOrder) error {
	if len(orders) == 0 {
		fmt.Fprintf(c.out, "[%s] no tracked orders\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printFull(orders)
	} else {
		c.printCompact(orders)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(orders []domain.TrackedOrder) {
	now := time.Now().Format("15:04:05")
	open, disappeared, filled := countByStatus(orders)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d orders → open:%d gone:%d filled:%d",
		now, len(orders), open, disappeared, filled)

	shown := 0
	for _, o := range orders {
		if shown >= 4 {
			break
		}
		if o.Status != domain.StatusDisappeared && o.Status != domain.StatusFilled {
			continue
		}
		fmt.Fprintf(&sb, " | %s %s E%d@%s",
			o.Status, compactName(o.MarketSlug, 22), o.EntryNumber, o.Price.String())
		shown++
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla completa de posiciones.
func (c *Console) printFull(orders []domain.TrackedOrder) {
	now := time.Now().Format("15:04:05")
	open, disappeared, filled := countByStatus(orders)

	fmt.Fprintf(c.out, "\n[%s] %d tracked orders — open:%d gone:%d filled:%d\n",
		now, len(orders), open, disappeared, filled)

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Market", "Side", "E#", "Price", "Size", "Notional", "Status", "Replaced by")

	for i, o := range orders {
		entry := "-"
		if o.EntryNumber > 0 {
			entry = fmt.Sprintf("%d", o.EntryNumber)
		}
		replaced := "-"
		if o.ReplacedBy != "" {
			replaced = compactName(o.ReplacedBy, 12)
		}

		table.Append(
			fmt.Sprintf("%d", i+1),
			compactName(o.MarketSlug, 32),
			string(o.Side),
			entry,
			o.Price.StringFixed(4),
			o.Size.StringFixed(2),
			"$"+o.Notional().StringFixed(2),
			string(o.Status),
			replaced,
		)
	}

	table.Render()
	fmt.Fprintln(c.out, "  E# = rung de entrada | gone = desaparecida, pendiente de reconciliar")
}

// countByStatus cuenta órdenes por los tres estados que importan en el report.
func countByStatus(orders []domain.TrackedOrder) (open, disappeared, filled int) {
	for _, o := range orders {
		switch o.Status {
		case domain.StatusOpen:
			open++
		case domain.StatusDisappeared:
			disappeared++
		case domain.StatusFilled:
			filled++
		}
	}
	return
}

// compactName recorta un nombre largo para el output compacto.
func compactName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
