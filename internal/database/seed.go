package database

import (
	"context"

	"github.com/phone-storefront/app/internal/models"
)

// SeedCatalog is the fixed product list loaded into an empty store.
func SeedCatalog() []*models.Product {
	return []*models.Product{
		{
			Name:        "Apple iPhone 16 Pro",
			Description: "Apple flagship with A18 Pro, 48 MP camera plus LiDAR, 120 Hz ProMotion, iOS 18.",
			Price:       89700,
			Image:       "images/Apple iPhone 16 Pro.png",
		},
		{
			Name:        "OnePlus 12",
			Description: "Snapdragon 8 Gen 3, 120 Hz display, Hasselblad camera, 100 W charging.",
			Price:       60800,
			Image:       "images/OnePlus 12.png",
		},
		{
			Name:        "Google Pixel 6 Pro",
			Description: "Google Tensor, 120 Hz OLED, 50 MP camera with telephoto, stock Android.",
			Price:       24990,
			Image:       "images/Google Pixel 6 Pro.png",
		},
		{
			Name:        "Samsung Galaxy S23 Ultra",
			Description: "Snapdragon 8 Gen 2, 200 MP camera, S Pen, 120 Hz AMOLED.",
			Price:       63500,
			Image:       "images/Samsung Galaxy S23 Ultra.png",
		},
		{
			Name:        "Vivo X200 Pro",
			Description: "Dimensity 9400, Zeiss camera, 120 Hz AMOLED, 120 W charging.",
			Price:       51351,
			Image:       "images/Vivo X200 Pro.png",
		},
		{
			Name:        "Vivo iQOO Neo 10 Pro",
			Description: "Snapdragon 8+ Gen 1, 144 Hz display, vapor chamber cooling, 120 W charging.",
			Price:       28453,
			Image:       "images/Vivo iQOO Neo 10 Pro.png",
		},
		{
			Name:        "Realme GT Neo 6",
			Description: "Snapdragon 8s Gen 3, 144 Hz AMOLED, 100 W charging, 50 MP camera.",
			Price:       20532,
			Image:       "images/Realme GT Neo 6.jpg",
		},
		{
			Name:        "Oppo Find X7 Ultra",
			Description: "Snapdragon 8 Gen 3, Hasselblad camera, 120 Hz LTPO, 100 W charging.",
			Price:       54000,
			Image:       "images/Oppo Find X7 Ultra.jpg",
		},
		{
			Name:        "Xiaomi 15 Ultra",
			Description: "Snapdragon 8 Elite, Leica camera, 120 Hz AMOLED, 120 W charging.",
			Price:       93500,
			Image:       "images/Xiaomi 15 Ultra.png",
		},
	}
}

// SeedProducts loads SeedCatalog when the products table is empty.
// It returns the number of rows inserted, which is zero on every run after the first.
func SeedProducts(ctx context.Context, s *Store) (int, error) {
	n, err := s.CountProducts(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	products := SeedCatalog()
	if err := s.InsertProducts(ctx, products); err != nil {
		return 0, err
	}
	return len(products), nil
}
