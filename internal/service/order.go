package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rasa-pos/api/internal/activity"
	"github.com/rasa-pos/api/internal/database"
	"github.com/rasa-pos/api/internal/enum"
	"github.com/rasa-pos/api/internal/notify"
	log "github.com/sirupsen/logrus"
)

const (
	maxOrderNumberRetries = 3
	orderNumberPrefix     = "ORD-"
	publishTimeout        = 2 * time.Second
)

var orderCodeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create and mutate orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	GetTable(ctx context.Context, id uuid.UUID) (database.Table, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	DecrementMenuItemStock(ctx context.Context, arg database.DecrementMenuItemStockParams) (database.MenuItem, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	UpdateOrder(ctx context.Context, arg database.UpdateOrderParams) (database.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the input for creating an order. CustomerID and
// ActorID are resolved from the authenticated session by the caller.
type CreateOrderRequest struct {
	CustomerID    uuid.UUID
	ActorID       uuid.UUID
	TableID       string
	Status        string
	PaymentStatus string
	PaymentMethod string
	Items         []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single line of the order.
type CreateOrderItemRequest struct {
	MenuItemID string
	Quantity   int32
}

// CreateOrderResult is the created order with its lines and display data.
type CreateOrderResult struct {
	Order        database.Order
	CustomerName string
	TableNumber  pgtype.Int4
	Items        []OrderItemResult
}

// OrderItemResult pairs a persisted line with the menu item it reserved.
type OrderItemResult struct {
	Item     database.OrderItem
	MenuItem database.MenuItem
}

// TableChange is a tri-state table assignment: unset, detach (Set with an
// empty ID) or assign.
type TableChange struct {
	Set bool
	ID  string
}

// UpdateOrderRequest carries a partial update. Nil fields are left alone.
type UpdateOrderRequest struct {
	OrderID       uuid.UUID
	ActorID       uuid.UUID
	Status        *string
	PaymentStatus *string
	PaymentMethod *string
	Table         TableChange
}

// FieldChange is one field an update actually changed.
type FieldChange struct {
	Field string
	Value string
}

// UpdateOrderResult is the order after the update plus what changed.
// Changes is empty when every provided value matched the current one.
type UpdateOrderResult struct {
	Order   database.Order
	Changes []FieldChange
}

// OrderService handles order business logic.
type OrderService struct {
	pool           TxBeginner
	newStore       NewOrderStore
	activity       ActivityRecorder
	events         notify.Publisher
	newOrderNumber func() (string, error)
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, recorder ActivityRecorder, events notify.Publisher) *OrderService {
	if events == nil {
		events = notify.Nop{}
	}
	return &OrderService{
		pool:           pool,
		newStore:       newStore,
		activity:       recorder,
		events:         events,
		newOrderNumber: generateOrderNumber,
	}
}

// generateOrderNumber returns "ORD-" plus 8 base32 characters (40 random
// bits). Uniqueness is backed by orders_order_number_key.
func generateOrderNumber() (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	return orderNumberPrefix + orderCodeEncoding.EncodeToString(b[:]), nil
}

// orderLine is a validated request line.
type orderLine struct {
	menuItemID uuid.UUID
	quantity   int32
}

// CreateOrder validates the request, reserves stock and persists the order
// in one transaction. Retries up to maxOrderNumberRetries times when the
// generated order number collides with an existing one.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	lines := make([]orderLine, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		id, err := uuid.Parse(item.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidMenuItemID)
		}
		lines[i] = orderLine{menuItemID: id, quantity: item.Quantity}
	}

	if req.Status != "" && req.Status != enum.OrderStatusPending {
		if !enum.IsOrderStatus(req.Status) {
			return nil, ErrInvalidStatus
		}
		return nil, ErrInitialStatus
	}
	paymentStatus := enum.PaymentStatusPending
	if req.PaymentStatus != "" {
		if !enum.IsPaymentStatus(req.PaymentStatus) {
			return nil, ErrInvalidPaymentStatus
		}
		paymentStatus = req.PaymentStatus
	}
	paymentMethod := pgtype.Text{}
	if req.PaymentMethod != "" {
		if !enum.IsPaymentMethod(req.PaymentMethod) {
			return nil, ErrInvalidPaymentMethod
		}
		paymentMethod = pgtype.Text{String: req.PaymentMethod, Valid: true}
	}
	tableID := pgtype.UUID{}
	if req.TableID != "" {
		tid, err := uuid.Parse(req.TableID)
		if err != nil {
			return nil, ErrInvalidTableID
		}
		tableID = pgtype.UUID{Bytes: tid, Valid: true}
	}

	params := database.CreateOrderParams{
		CustomerID:    req.CustomerID,
		TableID:       tableID,
		Status:        enum.OrderStatusPending,
		PaymentStatus: paymentStatus,
		PaymentMethod: paymentMethod,
	}

	var (
		result  *CreateOrderResult
		lastErr error
	)
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, lastErr = s.createOrderTx(ctx, params, lines)
		if lastErr == nil {
			break
		}
		if !isOrderNumberConflict(lastErr) {
			return nil, lastErr
		}
	}
	if lastErr != nil {
		// Not the client's fault: drop the unique violation so it is not
		// reported as a duplicate.
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrOrderNumberExhausted, maxOrderNumberRetries, lastErr)
	}

	verb := "dibuat oleh"
	if req.ActorID != req.CustomerID {
		verb = "dibuat untuk"
	}
	s.activity.Record(ctx, activity.Entry{
		ActorID:  req.ActorID,
		Action:   enum.ActionCreate,
		Target:   enum.TargetOrder,
		TargetID: result.Order.ID,
		Message:  fmt.Sprintf("Order %s %s %s", result.Order.OrderNumber, verb, result.CustomerName),
	})
	s.publish(ctx, notify.EventOrderCreated, result.Order)

	return result, nil
}

// isOrderNumberConflict checks if the error is a unique constraint violation
// on the order number (pgconn error code 23505).
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key"
	}
	return false
}

// createOrderTx executes the full order creation in a single transaction.
// Any error rolls back every stock decrement made so far.
func (s *OrderService) createOrderTx(ctx context.Context, params database.CreateOrderParams, lines []orderLine) (*CreateOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	customer, err := store.GetUserByID(ctx, params.CustomerID)
	if err != nil {
		return nil, notFound(err, ErrCustomerNotFound, "get customer")
	}

	result := &CreateOrderResult{CustomerName: customer.Name}

	if params.TableID.Valid {
		table, err := store.GetTable(ctx, params.TableID.Bytes)
		if err != nil {
			return nil, notFound(err, ErrTableNotFound, "get table")
		}
		result.TableNumber = pgtype.Int4{Int32: table.Number, Valid: true}
	}

	// Reserve stock in menu item ID order so concurrent orders touching the
	// same items acquire row locks in the same sequence.
	lockOrder := make([]int, len(lines))
	for i := range lockOrder {
		lockOrder[i] = i
	}
	sort.SliceStable(lockOrder, func(a, b int) bool {
		return bytes.Compare(lines[lockOrder[a]].menuItemID[:], lines[lockOrder[b]].menuItemID[:]) < 0
	})

	reserved := make([]database.MenuItem, len(lines))
	for _, i := range lockOrder {
		line := lines[i]
		item, err := store.DecrementMenuItemStock(ctx, database.DecrementMenuItemStockParams{
			ID:       line.menuItemID,
			Quantity: line.quantity,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, s.stockFailure(ctx, store, i, line)
			}
			return nil, fmt.Errorf("item[%d]: reserve stock: %w", i, err)
		}
		reserved[i] = item
	}

	var subtotal int64
	for i, line := range lines {
		subtotal += reserved[i].Price * int64(line.quantity)
	}
	params.Subtotal = subtotal

	orderNumber, err := s.newOrderNumber()
	if err != nil {
		return nil, err
	}
	params.OrderNumber = orderNumber

	order, err := store.CreateOrder(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	result.Order = order

	result.Items = make([]OrderItemResult, len(lines))
	for i, line := range lines {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:    order.ID,
			MenuItemID: line.menuItemID,
			Position:   int32(i + 1),
			Quantity:   line.quantity,
			UnitPrice:  reserved[i].Price,
		})
		if err != nil {
			return nil, fmt.Errorf("item[%d]: create order item: %w", i, err)
		}
		result.Items[i] = OrderItemResult{Item: item, MenuItem: reserved[i]}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return result, nil
}

// stockFailure tells a missing menu item apart from one with too little
// stock after the conditional decrement matched no row.
func (s *OrderService) stockFailure(ctx context.Context, store OrderStore, idx int, line orderLine) error {
	current, err := store.GetMenuItem(ctx, line.menuItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("item[%d]: %w", idx, ErrMenuItemNotFound)
		}
		return fmt.Errorf("item[%d]: get menu item: %w", idx, err)
	}
	return &StockError{
		Index:      idx,
		MenuItemID: current.ID,
		Name:       current.Name,
		Requested:  line.quantity,
		Available:  current.Stock,
	}
}

// UpdateOrder applies a partial update under a row lock. Only fields whose
// value actually changes are written and logged.
func (s *OrderService) UpdateOrder(ctx context.Context, req UpdateOrderRequest) (*UpdateOrderResult, error) {
	if req.Status == nil && req.PaymentStatus == nil && req.PaymentMethod == nil && !req.Table.Set {
		return nil, ErrNoFields
	}
	if req.Status != nil && !enum.IsOrderStatus(*req.Status) {
		return nil, ErrInvalidStatus
	}
	if req.PaymentStatus != nil && !enum.IsPaymentStatus(*req.PaymentStatus) {
		return nil, ErrInvalidPaymentStatus
	}
	if req.PaymentMethod != nil && !enum.IsPaymentMethod(*req.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}
	var newTableID uuid.UUID
	if req.Table.Set && req.Table.ID != "" {
		tid, err := uuid.Parse(req.Table.ID)
		if err != nil {
			return nil, ErrInvalidTableID
		}
		newTableID = tid
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetOrderForUpdate(ctx, req.OrderID)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound, "get order for update")
	}

	params := database.UpdateOrderParams{
		ID:            current.ID,
		Status:        current.Status,
		PaymentStatus: current.PaymentStatus,
		PaymentMethod: current.PaymentMethod,
		TableID:       current.TableID,
	}
	var changes []FieldChange

	if req.Status != nil && *req.Status != current.Status {
		if err := ValidateStatusTransition(current.Status, *req.Status); err != nil {
			return nil, err
		}
		params.Status = *req.Status
		changes = append(changes, FieldChange{Field: "status", Value: *req.Status})
	}

	if req.PaymentStatus != nil && *req.PaymentStatus != current.PaymentStatus {
		if err := ValidatePaymentTransition(current.PaymentStatus, *req.PaymentStatus); err != nil {
			return nil, err
		}
		params.PaymentStatus = *req.PaymentStatus
		changes = append(changes, FieldChange{Field: "paymentStatus", Value: *req.PaymentStatus})
	}

	if req.PaymentMethod != nil && (!current.PaymentMethod.Valid || current.PaymentMethod.String != *req.PaymentMethod) {
		params.PaymentMethod = pgtype.Text{String: *req.PaymentMethod, Valid: true}
		changes = append(changes, FieldChange{Field: "paymentMethod", Value: *req.PaymentMethod})
	}

	if req.Table.Set {
		switch {
		case req.Table.ID == "":
			if current.TableID.Valid {
				params.TableID = pgtype.UUID{}
				changes = append(changes, FieldChange{Field: "table", Value: "none"})
			}
		case !current.TableID.Valid || current.TableID.Bytes != newTableID:
			table, err := store.GetTable(ctx, newTableID)
			if err != nil {
				return nil, notFound(err, ErrTableNotFound, "get table")
			}
			params.TableID = pgtype.UUID{Bytes: newTableID, Valid: true}
			changes = append(changes, FieldChange{Field: "table", Value: strconv.Itoa(int(table.Number))})
		}
	}

	if len(changes) == 0 {
		return &UpdateOrderResult{Order: current}, nil
	}

	updated, err := store.UpdateOrder(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.activity.Record(ctx, activity.Entry{
		ActorID:  req.ActorID,
		Action:   enum.ActionUpdate,
		Target:   enum.TargetOrder,
		TargetID: updated.ID,
		Message:  fmt.Sprintf("Update order #%s [%s]", updated.OrderNumber, formatChanges(changes)),
	})
	s.publish(ctx, notify.EventOrderUpdated, updated)

	return &UpdateOrderResult{Order: updated, Changes: changes}, nil
}

// DeleteOrder removes an order and its lines. Reserved stock is not
// returned to the menu items.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID, actorID uuid.UUID) (database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	deleted, err := s.newStore(tx).DeleteOrder(ctx, orderID)
	if err != nil {
		return database.Order{}, notFound(err, ErrOrderNotFound, "delete order")
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}

	s.activity.Record(ctx, activity.Entry{
		ActorID:  actorID,
		Action:   enum.ActionDelete,
		Target:   enum.TargetOrder,
		TargetID: deleted.ID,
		Message:  fmt.Sprintf("Order #%s dihapus", deleted.OrderNumber),
	})
	s.publish(ctx, notify.EventOrderDeleted, deleted)

	return deleted, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, order database.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := s.events.Publish(ctx, notify.Event{
		Type:       eventType,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		OccurredAt: time.Now().UTC(),
		Payload:    order,
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"event":    eventType,
			"order_id": order.ID,
		}).Warn("publish order event")
	}
}

func formatChanges(changes []FieldChange) string {
	parts := make([]string, len(changes))
	for i, c := range changes {
		parts[i] = c.Field + ": " + c.Value
	}
	return strings.Join(parts, ", ")
}
