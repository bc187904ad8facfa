package prints

import "time"

type Print struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	URL               string    `json:"url,omitempty"`
	QuantityAvailable int       `json:"quantityAvailable"`
	Code              string    `json:"code,omitempty"`
	IsAvailable       bool      `json:"isAvailable"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ImportItem is one validated row handed over by the import collaborator.
type ImportItem struct {
	Name              string `json:"name"`
	URL               string `json:"url,omitempty"`
	QuantityAvailable int    `json:"quantityAvailable"`
	Code              string `json:"code,omitempty"`
}
