package orders

import "time"

type Order struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	PrintID         string     `json:"printId"`
	Quantity        int        `json:"quantity"`
	Description     string     `json:"description,omitempty"`
	PhotosLink      string     `json:"photosLink,omitempty"`
	Status          Status     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	StatusUpdatedAt *time.Time `json:"statusUpdatedAt,omitempty"`
}

// UserOrder is an order as shown to its owner, joined with its print.
type UserOrder struct {
	Order
	PrintName string `json:"printName"`
	PrintCode string `json:"printCode,omitempty"`
}

// AdminOrder is an order as shown on the admin overview.
type AdminOrder struct {
	Order
	PrintName string `json:"printName"`
}

type CreateInput struct {
	PrintID     string `json:"printId"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
	PhotosLink  string `json:"photosLink"`
}

type UpdateInput struct {
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
	PhotosLink  string `json:"photosLink"`
}
