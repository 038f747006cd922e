package models

// Product is a catalog entry. Image is a path relative to the static root.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	Image       string
}
