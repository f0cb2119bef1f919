package dto

// NotificationItem is one alert for the admin dashboard feed.
type NotificationItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ListNotificationsResponse is the dashboard notification feed
type ListNotificationsResponse struct {
	Items []*NotificationItem `json:"items"`
	Total int                 `json:"total"`
}
