package models

import (
	"time"
)

// Goodie is a rewards catalog item redeemable for HealCoins.
type Goodie struct {
	ID          string    `json:"_id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Coins       int       `json:"coins" db:"coins"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"imageUrl" db:"image_url"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

type OrderStatus string

const (
	OrderRequested OrderStatus = "requested"
	OrderDelivered OrderStatus = "delivered"
)

func (s OrderStatus) Valid() bool {
	return s == OrderRequested || s == OrderDelivered
}

type Address struct {
	Line1        string `json:"line1" db:"line1"`
	Line2        string `json:"line2" db:"line2"`
	City         string `json:"city" db:"city"`
	State        string `json:"state" db:"state"`
	Pincode      string `json:"pincode" db:"pincode"`
	Instructions string `json:"instructions" db:"instructions"`
}

// GoodieOrder is a redemption request.
type GoodieOrder struct {
	ID              string      `json:"_id" db:"id"`
	GoodieID        string      `json:"goodieId" db:"goodie_id"`
	GoodieTitle     string      `json:"goodieTitle" db:"goodie_title"`
	Coins           int         `json:"coins" db:"coins"`
	Status          OrderStatus `json:"status" db:"status"`
	UserName        string      `json:"userName" db:"user_name"`
	UserEmail       string      `json:"userEmail" db:"user_email"`
	ContactNumber   string      `json:"contactNumber" db:"contact_number"`
	HealCoinsBefore int         `json:"healCoinsBefore" db:"heal_coins_before"`
	HealCoinsAfter  int         `json:"healCoinsAfter" db:"heal_coins_after"`
	Address         Address     `json:"address" db:"address"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
}

// CreateGoodieRequest is the admin form payload.
type CreateGoodieRequest struct {
	Title       string `json:"title"`
	Coins       int    `json:"coins"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// RedeemRequest places an order for a goodie.
type RedeemRequest struct {
	UserName      string  `json:"userName"`
	UserEmail     string  `json:"userEmail"`
	ContactNumber string  `json:"contactNumber"`
	HealCoins     int     `json:"healCoins"` // caller-reported balance
	Address       Address `json:"address"`
}
