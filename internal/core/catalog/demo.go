package catalog

import "github.com/hay-kot/shopcart/internal/core/cart"

// DemoProducts returns the storefront's demo catalog. Each call returns a
// fresh slice.
func DemoProducts() []Product {
	return []Product{
		{
			Name:        "Amazon Echo Dot 3rd Generation",
			Image:       "https://images.unsplash.com/photo-1518441902113-c1d3e1b2a3a4?q=80&w=900&auto=format&fit=crop",
			Price:       cart.FromFloat(29.99),
			Rating:      5,
			NumReviews:  1,
			Brand:       "Amazon",
			Category:    "Electronics",
			Description: "Smart speaker with **Alexa**. Voice control your music, smart home, and more.",
		},
		{
			Name:        "iPhone 11 Pro 256GB Memory",
			Image:       "https://images.unsplash.com/photo-1567581935884-3349723552ca?q=80&w=900&auto=format&fit=crop",
			Price:       cart.FromFloat(599.99),
			Rating:      4,
			NumReviews:  2,
			Brand:       "Apple",
			Category:    "Mobile",
			Description: "Triple camera system, Super Retina XDR display and **256GB** of storage.",
		},
		{
			Name:        "Sony Playstation 4 Pro White Version",
			Image:       "https://images.unsplash.com/photo-1606813907291-76c67c1a6f3b?q=80&w=900&auto=format&fit=crop",
			Price:       cart.FromFloat(399.99),
			Rating:      5,
			NumReviews:  12,
			Brand:       "Sony",
			Category:    "Gaming",
			Description: "4K gaming and entertainment console in the white edition.",
		},
		{
			Name:        "Logitech G-Series Gaming Mouse",
			Image:       "https://images.unsplash.com/photo-1588349427182-2f6f1e3b1c39?q=80&w=900&auto=format&fit=crop",
			Price:       cart.FromFloat(49.99),
			Rating:      5,
			NumReviews:  1,
			Brand:       "Logitech",
			Category:    "Accessories",
			Description: "Programmable buttons and an adjustable DPI sensor.",
		},
		{
			Name:        "Airpods Wireless Bluetooth Headphones",
			Image:       "https://images.unsplash.com/photo-1585386959984-a41552231658?q=80&w=900&auto=format&fit=crop",
			Price:       cart.FromFloat(89.99),
			Rating:      4,
			NumReviews:  1,
			Brand:       "Apple",
			Category:    "Audio",
			Description: "Wireless earbuds with a charging case.\n\n- Quick pairing\n- Up to 5 hours of listening time",
		},
		{
			Name:        "Canon EOS 80D DSLR Camera",
			Image:       "https://images.unsplash.com/photo-1519183071298-a2962be96f83?q=80&w=900&auto=format&fit=crop",
			Price:       cart.FromFloat(929.99),
			Rating:      5,
			NumReviews:  12,
			Brand:       "Canon",
			Category:    "Camera",
			Description: "24.2MP APS-C sensor, 45-point autofocus and built-in Wi-Fi.",
		},
	}
}
