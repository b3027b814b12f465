package dto

import "time"

type ReferenceResponse struct {
	ID     string `json:"id" example:"arc_4f1c..."`
	URL    string `json:"url" example:"http://localhost:8080/v1/archives/arc_4f1c.wav"`
	Format string `json:"format" example:"audio/wav"`
	Size   int    `json:"size" example:"32044"`
}

type HistoryEntryResponse struct {
	ID        string            `json:"id"`
	Turn      int               `json:"turn" example:"3"`
	Received  ReferenceResponse `json:"received"`
	Recorded  ReferenceResponse `json:"recorded"`
	Status    string            `json:"status" example:"played"`
	CreatedAt time.Time         `json:"created_at"`
}

type HistoryResponse struct {
	Total   int                    `json:"total" example:"1"`
	Entries []HistoryEntryResponse `json:"entries"`
}
