package backend

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/example/shopcore/pkg/models"
)

var productNames = map[models.Category][]string{
	models.CategoryElectronics: {
		"Wireless Headphones", "Smart Watch", "Laptop Stand", "USB-C Cable",
		"Portable Charger", "Bluetooth Speaker", "Gaming Mouse",
		"Mechanical Keyboard", "4K Monitor", "Webcam HD", "Phone Case",
		"Screen Protector", "Wireless Earbuds", "Power Bank", "HDMI Cable",
	},
	models.CategoryClothing: {
		"Cotton T-Shirt", "Denim Jeans", "Leather Jacket", "Running Shoes",
		"Sneakers", "Hoodie", "Dress Shirt", "Yoga Pants", "Winter Coat",
		"Summer Dress", "Polo Shirt", "Cargo Shorts", "Baseball Cap",
		"Wool Sweater", "Athletic Shorts",
	},
	models.CategoryHome: {
		"Coffee Maker", "Vacuum Cleaner", "Bed Sheets Set", "Throw Pillow",
		"Wall Clock", "Table Lamp", "Storage Bins", "Kitchen Knife Set",
		"Cutting Board", "Dining Plates", "Bath Towels", "Area Rug",
		"Curtain Set", "Trash Can", "Laundry Basket",
	},
	models.CategoryBooks: {
		"Fiction Novel", "Self-Help Guide", "Cookbook", "Biography",
		"Science Fiction", "Mystery Thriller", "Fantasy Series",
		"Business Book", "History Book", "Art Book", "Programming Guide",
		"Poetry Collection", "Travel Guide", "Children Story", "Graphic Novel",
	},
	models.CategorySports: {
		"Yoga Mat", "Dumbbells Set", "Resistance Bands", "Jump Rope",
		"Tennis Racket", "Basketball", "Soccer Ball", "Gym Bag",
		"Water Bottle", "Exercise Ball", "Foam Roller", "Fitness Tracker",
		"Running Belt", "Knee Sleeves", "Protein Shaker",
	},
	models.CategoryBeauty: {
		"Face Moisturizer", "Hair Shampoo", "Body Lotion", "Lip Balm",
		"Nail Polish", "Makeup Brush Set", "Face Mask", "Sunscreen SPF 50",
		"Eye Cream", "Hair Serum", "Body Wash", "Perfume", "Hair Dryer",
		"Facial Cleanser", "Makeup Remover",
	},
	models.CategoryToys: {
		"Building Blocks", "Action Figure", "Board Game", "Puzzle Set",
		"Stuffed Animal", "Remote Car", "Doll House", "Art Supplies",
		"Science Kit", "Musical Toy", "Educational Toy", "Card Game",
		"Play Dough Set", "Toy Train", "Outdoor Toy",
	},
}

var adjectives = []string{
	"Premium", "Professional", "Deluxe", "Essential", "Ultimate", "Classic",
	"Modern", "Vintage", "Eco-Friendly", "Luxury", "Compact", "Portable",
	"Heavy Duty", "Lightweight", "Advanced",
}

var categoryDescriptions = map[models.Category][]string{
	models.CategoryElectronics: {
		"High-quality electronics with latest technology.",
		"Designed for performance and durability.",
		"Features advanced connectivity options.",
		"Compatible with all major devices.",
	},
	models.CategoryClothing: {
		"Comfortable and stylish apparel for everyday wear.",
		"Made from premium quality materials.",
		"Perfect fit with modern design.",
		"Durable fabric that lasts longer.",
	},
	models.CategoryHome: {
		"Essential home item for everyday use.",
		"Stylish design that complements any decor.",
		"Built to last with premium materials.",
		"Makes your home more comfortable.",
	},
	models.CategoryBooks: {
		"Engaging read that captivates from start to finish.",
		"Well-written with compelling storytelling.",
		"Perfect for book lovers and enthusiasts.",
		"Highly rated by readers worldwide.",
	},
	models.CategorySports: {
		"Professional-grade equipment for athletes.",
		"Helps you achieve your fitness goals.",
		"Durable construction for intense workouts.",
		"Ergonomic design for maximum comfort.",
	},
	models.CategoryBeauty: {
		"Premium beauty product for radiant skin.",
		"Dermatologist tested and approved.",
		"Natural ingredients for gentle care.",
		"Suitable for all skin types.",
	},
	models.CategoryToys: {
		"Fun and educational toy for children.",
		"Safe and non-toxic materials.",
		"Encourages creativity and imagination.",
		"Perfect gift for kids of all ages.",
	},
}

var commonTags = []string{"bestseller", "popular", "new arrival", "trending"}

var categoryTags = map[models.Category][]string{
	models.CategoryElectronics: {"tech", "gadget", "wireless", "smart"},
	models.CategoryClothing:    {"fashion", "comfortable", "stylish", "casual"},
	models.CategoryHome:        {"decor", "essential", "practical", "cozy"},
	models.CategoryBooks:       {"reading", "literature", "educational", "entertainment"},
	models.CategorySports:      {"fitness", "athletic", "workout", "active"},
	models.CategoryBeauty:      {"skincare", "cosmetics", "wellness", "natural"},
	models.CategoryToys:        {"kids", "fun", "educational", "creative"},
}

func generateDescription(rng *rand.Rand, name string, category models.Category) string {
	pool := categoryDescriptions[category]
	return fmt.Sprintf("%s - %s High customer satisfaction guaranteed.", name, pool[rng.Intn(len(pool))])
}

func generateTags(rng *rand.Rand, category models.Category) []string {
	tags := append([]string(nil), categoryTags[category]...)
	extra := rng.Intn(2) + 1
	for i := 0; i < extra; i++ {
		tag := commonTags[rng.Intn(len(commonTags))]
		seen := false
		for _, t := range tags {
			if t == tag {
				seen = true
				break
			}
		}
		if !seen {
			tags = append(tags, tag)
		}
	}
	if len(tags) > 4 {
		tags = tags[:4]
	}
	return tags
}

// GenerateCatalog builds count mock products spread evenly across the
// categories, deterministic for a given rng.
func GenerateCatalog(count int, rng *rand.Rand, now time.Time) []models.Product {
	perCategory := count / len(models.Categories)
	products := make([]models.Product, 0, perCategory*len(models.Categories))

	for catIndex, category := range models.Categories {
		names := productNames[category]
		for i := 0; i < perCategory; i++ {
			baseName := names[i%len(names)]
			name := baseName
			if rng.Float64() > 0.5 {
				name = adjectives[rng.Intn(len(adjectives))] + " " + baseName
			}

			id := fmt.Sprintf("%s-%d", category, catIndex*perCategory+i+1)
			products = append(products, models.Product{
				ID:          id,
				Name:        name,
				Description: generateDescription(rng, name, category),
				Price:       float64(rng.Intn(990) + 10),
				Category:    category,
				ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/400/400", id),
				Rating:      float64(rng.Intn(20)+30) / 10,
				ReviewCount: rng.Intn(500) + 10,
				Stock:       rng.Intn(100),
				Tags:        generateTags(rng, category),
				CreatedAt:   now.AddDate(0, 0, -rng.Intn(365)),
			})
		}
	}

	return products
}
