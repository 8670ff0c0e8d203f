package domain

// Analytics summarises a vendor's reviews, favorites and menu.
type Analytics struct {
	AverageRating    float64        `json:"average_rating"`
	TotalReviews     int            `json:"total_reviews"`
	RecentChange     float64        `json:"recent_change"` // 7-day average minus overall average
	TotalFavorites   int            `json:"total_favorites"`
	RecentFavorites  int            `json:"recent_favorites"` // last 7 days
	MenuItems        int            `json:"menu_items"`
	ItemsByCategory  map[string]int `json:"items_by_category"`
	ReviewsByWeekday [7]int         `json:"reviews_by_weekday"` // index is time.Weekday
	RatingHistogram  [5]int         `json:"rating_histogram"`   // index is rating-1
}

// CustomerStats holds the counts shown on a customer's profile.
type CustomerStats struct {
	Reviews   int `json:"reviews"`
	Favorites int `json:"favorites"`
}
