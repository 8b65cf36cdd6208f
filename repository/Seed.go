package repository

import (
	"context"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	logx "github.com/Fomkes/uae-water-delivery1-sub001/pkg/logger"
	"github.com/shopspring/decimal"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func originalPrice(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// DemoProducts is the demonstration catalog shipped with the storefront.
func DemoProducts() []entities.Product {
	return []entities.Product{
		{
			Id:            "water-gallon-5",
			Slug:          "5-gallon-water-bottle",
			Name:          entities.Localized{En: "5 Gallon Water Bottle", Ar: "قارورة مياه 5 جالون"},
			Description:   entities.Localized{En: "Purified drinking water in a reusable 5 gallon bottle.", Ar: "مياه شرب نقية في قارورة 5 جالون قابلة لإعادة الاستخدام."},
			Price:         price("7.00"),
			OriginalPrice: originalPrice("9.00"),
			Images:        []string{"/images/products/gallon-5.jpg"},
			Category:      "gallons",
			InStock:       true,
			StockQuantity: 250,
			Features: entities.LocalizedList{
				En: []string{"BPA free", "Home delivery", "Bottle exchange"},
				Ar: []string{"خالية من BPA", "توصيل للمنازل", "استبدال القوارير"},
			},
			Rating:      4.8,
			ReviewCount: 312,
		},
		{
			Id:            "water-small-24",
			Slug:          "small-bottles-24-pack",
			Name:          entities.Localized{En: "Small Bottles 24 Pack", Ar: "عبوات صغيرة 24 حبة"},
			Description:   entities.Localized{En: "24 bottles of 330ml, ideal for offices and trips.", Ar: "24 عبوة سعة 330 مل، مثالية للمكاتب والرحلات."},
			Price:         price("12.50"),
			Images:        []string{"/images/products/small-24.jpg"},
			Category:      "bottles",
			InStock:       true,
			StockQuantity: 120,
			Features: entities.LocalizedList{
				En: []string{"330ml each", "Recyclable"},
				Ar: []string{"330 مل لكل عبوة", "قابلة لإعادة التدوير"},
			},
			Rating:      4.6,
			ReviewCount: 128,
		},
		{
			Id:            "water-medium-12",
			Slug:          "medium-bottles-12-pack",
			Name:          entities.Localized{En: "Medium Bottles 12 Pack", Ar: "عبوات متوسطة 12 حبة"},
			Description:   entities.Localized{En: "12 bottles of 1.5L for the family table.", Ar: "12 عبوة سعة 1.5 لتر لمائدة العائلة."},
			Price:         price("10.00"),
			OriginalPrice: originalPrice("11.50"),
			Images:        []string{"/images/products/medium-12.jpg"},
			Category:      "bottles",
			InStock:       true,
			StockQuantity: 80,
			Features: entities.LocalizedList{
				En: []string{"1.5L each", "Low sodium"},
				Ar: []string{"1.5 لتر لكل عبوة", "منخفضة الصوديوم"},
			},
			Rating:      4.5,
			ReviewCount: 64,
		},
		{
			Id:            "dispenser-hot-cold",
			Slug:          "hot-and-cold-water-dispenser",
			Name:          entities.Localized{En: "Hot & Cold Water Dispenser", Ar: "موزع مياه ساخن وبارد"},
			Description:   entities.Localized{En: "Top-loading dispenser for 5 gallon bottles.", Ar: "موزع بتحميل علوي لقوارير 5 جالون."},
			Price:         price("349.00"),
			OriginalPrice: originalPrice("399.00"),
			Images:        []string{"/images/products/dispenser.jpg"},
			Category:      "dispensers",
			InStock:       false,
			StockQuantity: 0,
			Features: entities.LocalizedList{
				En: []string{"Child lock", "Energy saving"},
				Ar: []string{"قفل أمان للأطفال", "موفر للطاقة"},
			},
			Rating:      4.3,
			ReviewCount: 41,
		},
	}
}

// SeedProducts inserts DemoProducts into an empty catalog.
func SeedProducts(ctx context.Context, repo ProductRepository) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logx.Debug().Int("products", n).Msg("catalog already populated, skipping seed")
		return nil
	}
	for _, p := range DemoProducts() {
		if err := repo.CreateProduct(ctx, p); err != nil {
			return err
		}
	}
	logx.Info().Int("products", len(DemoProducts())).Msg("seeded demo catalog")
	return nil
}
