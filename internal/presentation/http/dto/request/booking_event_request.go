package request

// BookingCustomer is the contact captured on a booking form.
type BookingCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// BookingCreatedRequest is sent by the booking subsystem after a booking is
// stored. Either booking_id or customer must be present.
type BookingCreatedRequest struct {
	BookingID string          `json:"booking_id" binding:"omitempty,uuid"`
	Customer  BookingCustomer `json:"customer"`
	Date      string          `json:"date"`
	Source    string          `json:"source"`
}

// BookingStatusChangedRequest names the affected client or booking.
type BookingStatusChangedRequest struct {
	BookingID string `json:"booking_id" binding:"omitempty,uuid"`
	ClientID  string `json:"client_id" binding:"omitempty,uuid"`
}
