package models

import "time"

// Product is a storefront item owned by a user.
type Product struct {
	ID          string
	UserID      string
	Name        string
	Price       float64
	Description string
	ImageURL    string
	CreatedAt   time.Time
}
