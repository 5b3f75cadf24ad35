package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tahcohcat/healplay/internal/database"
	"github.com/tahcohcat/healplay/internal/logger"
	"github.com/tahcohcat/healplay/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInactiveGoodie    = errors.New("goodie is not available")
	ErrInsufficientCoins = errors.New("not enough HealCoins")
)

// ValidationError is a client mistake in one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Publisher fans committed changes out to live admin sessions.
type Publisher interface {
	Publish(event string, payload any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

type GoodieService struct {
	db        *database.DB
	publisher Publisher
	now       func() time.Time
	logger    *logger.Log
}

func NewGoodieService(db *database.DB, publisher Publisher) *GoodieService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &GoodieService{db: db, publisher: publisher, now: time.Now, logger: logger.New()}
}

const orderColumns = `
	id, goodie_id, goodie_title, coins, status, user_name, user_email, contact_number,
	heal_coins_before, heal_coins_after,
	address_line1 AS "address.line1",
	address_line2 AS "address.line2",
	address_city AS "address.city",
	address_state AS "address.state",
	address_pincode AS "address.pincode",
	address_instructions AS "address.instructions",
	created_at`

// ListOrders returns every order, newest first.
func (s *GoodieService) ListOrders(ctx context.Context) ([]models.GoodieOrder, error) {
	orders := []models.GoodieOrder{}
	query := `SELECT` + orderColumns + ` FROM goodie_orders ORDER BY created_at DESC, id`
	if err := s.db.SelectContext(ctx, &orders, query); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *GoodieService) GetOrder(ctx context.Context, id string) (*models.GoodieOrder, error) {
	var order models.GoodieOrder
	query := `SELECT` + orderColumns + ` FROM goodie_orders WHERE id = ?`
	err := s.db.GetContext(ctx, &order, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// ListGoodies returns the catalog, newest first.
func (s *GoodieService) ListGoodies(ctx context.Context) ([]models.Goodie, error) {
	goodies := []models.Goodie{}
	query := `SELECT id, title, coins, description, image_url, is_active, created_at
			  FROM goodies ORDER BY created_at DESC, id`
	if err := s.db.SelectContext(ctx, &goodies, query); err != nil {
		return nil, fmt.Errorf("failed to list goodies: %w", err)
	}
	return goodies, nil
}

func (s *GoodieService) GetGoodie(ctx context.Context, id string) (*models.Goodie, error) {
	var g models.Goodie
	query := `SELECT id, title, coins, description, image_url, is_active, created_at FROM goodies WHERE id = ?`
	err := s.db.GetContext(ctx, &g, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get goodie: %w", err)
	}
	return &g, nil
}

// ValidateGoodie applies the catalog form rules: a trimmed title and a
// positive price.
func ValidateGoodie(req models.CreateGoodieRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	if req.Coins <= 0 {
		return &ValidationError{Field: "coins", Message: "Coins must be greater than 0"}
	}
	return nil
}

// CreateGoodie adds an active catalog item and announces it.
func (s *GoodieService) CreateGoodie(ctx context.Context, req models.CreateGoodieRequest) (*models.Goodie, error) {
	if err := ValidateGoodie(req); err != nil {
		return nil, err
	}

	g := &models.Goodie{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Coins:       req.Coins,
		Description: strings.TrimSpace(req.Description),
		ImageURL:    req.ImageURL,
		IsActive:    true,
		CreatedAt:   s.now().UTC(),
	}

	query := `
		INSERT INTO goodies (id, title, coins, description, image_url, is_active, created_at)
		VALUES (:id, :title, :coins, :description, :image_url, :is_active, :created_at)
	`
	if _, err := s.db.NamedExecContext(ctx, query, g); err != nil {
		return nil, fmt.Errorf("failed to create goodie: %w", err)
	}

	s.logger.Info(fmt.Sprintf("Goodie %q created (%d coins)", g.Title, g.Coins))
	s.publisher.Publish(models.EventCatalogNew, g)
	return g, nil
}

// DeleteGoodie removes a catalog item. Existing orders keep their copy of
// the title and price.
func (s *GoodieService) DeleteGoodie(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goodies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goodie: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete goodie: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Info(fmt.Sprintf("Goodie %s deleted", id))
	s.publisher.Publish(models.EventCatalogDelete, models.DeletedRef{ID: id})
	return nil
}

// SetOrderStatus moves an order between requested and delivered and returns
// the stored copy.
func (s *GoodieService) SetOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.GoodieOrder, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("status must be %q or %q", models.OrderRequested, models.OrderDelivered)}
	}

	res, err := s.db.ExecContext(ctx, `UPDATE goodie_orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	} else if n == 0 {
		return nil, ErrNotFound
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info(fmt.Sprintf("Order %s marked %s", id, status))
	s.publisher.Publish(models.EventOrderUpdate, order)
	return order, nil
}

func validateRedeem(req models.RedeemRequest) error {
	switch {
	case strings.TrimSpace(req.UserName) == "":
		return &ValidationError{Field: "userName", Message: "Name is required"}
	case strings.TrimSpace(req.ContactNumber) == "":
		return &ValidationError{Field: "contactNumber", Message: "Contact number is required"}
	case strings.TrimSpace(req.Address.Line1) == "":
		return &ValidationError{Field: "address.line1", Message: "Address line 1 is required"}
	case strings.TrimSpace(req.Address.City) == "":
		return &ValidationError{Field: "address.city", Message: "City is required"}
	case strings.TrimSpace(req.Address.Pincode) == "":
		return &ValidationError{Field: "address.pincode", Message: "Pincode is required"}
	}
	return nil
}

// Redeem places a requested order for goodieID against the caller's
// HealCoins balance. The balance is reported by the caller; the wallet that
// owns it lives outside this service, so the check only rejects requests
// that are short by their own account.
func (s *GoodieService) Redeem(ctx context.Context, goodieID string, req models.RedeemRequest) (*models.GoodieOrder, error) {
	if err := validateRedeem(req); err != nil {
		return nil, err
	}
	g, err := s.GetGoodie(ctx, goodieID)
	if err != nil {
		return nil, err
	}
	if !g.IsActive {
		return nil, ErrInactiveGoodie
	}
	if req.HealCoins < g.Coins {
		return nil, ErrInsufficientCoins
	}

	order := &models.GoodieOrder{
		ID:              uuid.NewString(),
		GoodieID:        g.ID,
		GoodieTitle:     g.Title,
		Coins:           g.Coins,
		Status:          models.OrderRequested,
		UserName:        strings.TrimSpace(req.UserName),
		UserEmail:       strings.TrimSpace(req.UserEmail),
		ContactNumber:   strings.TrimSpace(req.ContactNumber),
		HealCoinsBefore: req.HealCoins,
		HealCoinsAfter:  req.HealCoins - g.Coins,
		Address:         req.Address,
		CreatedAt:       s.now().UTC(),
	}

	query := `
		INSERT INTO goodie_orders (
			id, goodie_id, goodie_title, coins, status, user_name, user_email, contact_number,
			heal_coins_before, heal_coins_after,
			address_line1, address_line2, address_city, address_state, address_pincode, address_instructions,
			created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	a := order.Address
	_, err = s.db.ExecContext(ctx, query,
		order.ID, order.GoodieID, order.GoodieTitle, order.Coins, order.Status,
		order.UserName, order.UserEmail, order.ContactNumber,
		order.HealCoinsBefore, order.HealCoinsAfter,
		a.Line1, a.Line2, a.City, a.State, a.Pincode, a.Instructions,
		order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info(fmt.Sprintf("Order %s placed for %q by %s", order.ID, order.GoodieTitle, order.UserName))
	s.publisher.Publish(models.EventOrderNew, order)
	return order, nil
}
