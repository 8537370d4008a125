// Package jobs defines the asynq task names and payloads shared by the API
// and the worker.
package jobs

const TaskBookingConfirmed = "notify:booking_confirmed"

type BookingConfirmedPayload struct {
	BookingID int64  `json:"booking_id"`
	GuestID   string `json:"guest_id"`
}
