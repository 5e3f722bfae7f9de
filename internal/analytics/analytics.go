package analytics

// Dashboard is the admin analytics snapshot.
type Dashboard struct {
	TotalUsers         int          `json:"totalUsers"`
	TotalOrders        int          `json:"totalOrders"`
	TotalRevenue       float64      `json:"totalRevenue"`
	TopSellingProducts []TopProduct `json:"topSellingProducts"`
}

// TopProduct is a best-seller entry ranked by summed quantity across all
// orders.
type TopProduct struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	TotalSold int     `json:"totalSold"`
}
