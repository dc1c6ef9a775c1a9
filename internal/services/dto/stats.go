package dto

// ViewTotal is the number of unique (ip, day) views of a video.
type ViewTotal struct {
	VideoID uint   `json:"video_id"`
	Title   string `json:"title"`
	Count   int    `json:"count"`
}

type PlaybackRequest struct {
	Username string `json:"username"`
}
