package ledger

// Package ledger mantiene el registro en memoria de todas las órdenes que el
// bot ha colocado, su estado de ciclo de vida y el enlace vieja→nueva cuando
// una orden desaparecida se recrea.

import (
	"fmt"
	"sync"

	"github.com/alejandrodnm/ladderbot/internal/domain"
)

// Ledger is the single shared mutable store of tracked orders. All mutation
// goes through its methods under one mutex, preserving the monotonic-status
// invariant even if the poll loop is ever parallelized.
type Ledger struct {
	mu     sync.Mutex
	orders map[string]*domain.TrackedOrder
	seq    []string // order IDs in insertion order
}

// New crea un ledger vacío.
func New() *Ledger {
	return &Ledger{orders: make(map[string]*domain.TrackedOrder)}
}

// Add registra una orden nueva. Falla si el order ID ya existe: los IDs son
// únicos durante toda la vida del ledger, incluso tras Remove.
func (l *Ledger) Add(order domain.TrackedOrder) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.orders[order.OrderID]; exists {
		return fmt.Errorf("ledger.Add: order %s already tracked", order.OrderID)
	}
	for _, id := range l.seq {
		if id == order.OrderID {
			return fmt.Errorf("ledger.Add: order ID %s was already used", order.OrderID)
		}
	}

	o := order
	l.orders[order.OrderID] = &o
	l.seq = append(l.seq, order.OrderID)
	return nil
}

// SetPresence actualiza una orden contra el snapshot del exchange. Si la orden
// está OPEN y ya no aparece en el listado, pasa a DISAPPEARED. No hay
// debounce: una ausencia en un tick clasifica inmediatamente (el riesgo de lag
// transitorio del exchange se compensa con el check de balance antes de
// recrear). Órdenes en estado terminal no se tocan.
func (l *Ledger) SetPresence(orderID string, stillOpen bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orders[orderID]
	if !ok || stillOpen {
		return
	}
	if o.Status.CanTransition(domain.StatusDisappeared) {
		o.Status = domain.StatusDisappeared
	}
}

// Disappeared devuelve las órdenes en estado DISAPPEARED, en orden de alta.
func (l *Ledger) Disappeared() []domain.TrackedOrder {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []domain.TrackedOrder
	for _, id := range l.seq {
		if o, ok := l.orders[id]; ok && o.Status == domain.StatusDisappeared {
			out = append(out, *o)
		}
	}
	return out
}

// MarkFilled transiciona la orden a FILLED si la máquina de estados lo permite.
func (l *Ledger) MarkFilled(orderID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if o, ok := l.orders[orderID]; ok && o.Status.CanTransition(domain.StatusFilled) {
		o.Status = domain.StatusFilled
	}
}

// MarkRecreated cierra la orden vieja como RECREATED y la enlaza con su
// reemplazo. La orden nueva debe añadirse por separado con Add.
func (l *Ledger) MarkRecreated(oldID, newID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orders[oldID]
	if !ok || !o.Status.CanTransition(domain.StatusRecreated) {
		return
	}
	o.Status = domain.StatusRecreated
	o.ReplacedBy = newID
}

// Remove marca la orden como REMOVED y la expulsa del ledger. Solo se usa
// cuando el mercado está confirmado como terminado.
func (l *Ledger) Remove(orderID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orders[orderID]
	if !ok {
		return
	}
	if o.Status.CanTransition(domain.StatusRemoved) {
		o.Status = domain.StatusRemoved
	}
	delete(l.orders, orderID)
	// seq conserva el ID: garantiza unicidad histórica de order IDs.
}

// ActiveByMarket devuelve las órdenes no terminales de un mercado, en orden de
// alta. Ese orden es el que usa la inferencia de fills ("primeras N").
func (l *Ledger) ActiveByMarket(slug string) []domain.TrackedOrder {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []domain.TrackedOrder
	for _, id := range l.seq {
		o, ok := l.orders[id]
		if ok && o.MarketSlug == slug && !o.Status.Terminal() {
			out = append(out, *o)
		}
	}
	return out
}

// MarketsWithOrders devuelve el conjunto de slugs con órdenes registradas.
func (l *Ledger) MarketsWithOrders() map[string]bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	slugs := make(map[string]bool)
	for _, o := range l.orders {
		slugs[o.MarketSlug] = true
	}
	return slugs
}

// Get devuelve una copia de la orden y true si existe.
func (l *Ledger) Get(orderID string) (domain.TrackedOrder, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if o, ok := l.orders[orderID]; ok {
		return *o, true
	}
	return domain.TrackedOrder{}, false
}

// All devuelve una copia de todas las órdenes vivas en el ledger, en orden de alta.
func (l *Ledger) All() []domain.TrackedOrder {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.TrackedOrder, 0, len(l.orders))
	for _, id := range l.seq {
		if o, ok := l.orders[id]; ok {
			out = append(out, *o)
		}
	}
	return out
}

// TrackedIDs devuelve los IDs de todas las órdenes vivas, en orden de alta.
func (l *Ledger) TrackedIDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, 0, len(l.orders))
	for _, id := range l.seq {
		if _, ok := l.orders[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Restore precarga el ledger con órdenes journaled (arranque). A diferencia de
// Add, respeta el estado persistido.
func (l *Ledger) Restore(orders []domain.TrackedOrder) error {
	for _, o := range orders {
		if o.Status.Terminal() {
			continue
		}
		if err := l.Add(o); err != nil {
			return fmt.Errorf("ledger.Restore: %w", err)
		}
	}
	return nil
}
