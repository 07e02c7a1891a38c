package dto

// RateNovelDTO upserts the calling user's rating for a novel.
type RateNovelDTO struct {
	Score int `json:"score" binding:"required,min=1,max=5"`
}

type RatingResponse struct {
	NovelID       string   `json:"novelId"`
	Score         int      `json:"score"`
	AverageRating *float64 `json:"averageRating,omitempty"`
	RatingCount   int64    `json:"ratingCount"`
}
