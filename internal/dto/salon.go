package dto

// BookingOptionsResponse lists bookable dates and times.
type BookingOptionsResponse struct {
	Dates []string `json:"dates"`
	Times []string `json:"times"`
}
