package structs

type V0DashboardStats struct {
	TotalUsers int64 `json:"total_users"`
	TotalPosts int64 `json:"total_posts"`
	TodayPosts int64 `json:"today_posts"`
	TotalLikes int64 `json:"total_likes"`
}

type V0Upload struct {
	Url  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}
