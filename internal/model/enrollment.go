package model

import "time"

// Enrollment is a user's registration record for the event.  There is
// at most one enrollment per user (unique user_id) and it must exist
// before the user can buy a ticket.
type Enrollment struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	Name      string    `json:"name"`
	CPF       string    `json:"cpf"`
	Birthday  time.Time `json:"birthday"`
	Phone     string    `json:"phone"`
	Address   *Address  `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Address is the postal address attached to an enrollment.
type Address struct {
	ID            uint64    `json:"id"`
	EnrollmentID  uint64    `json:"enrollmentId"`
	CEP           string    `json:"cep"`
	Street        string    `json:"street"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	Number        string    `json:"number"`
	Neighborhood  string    `json:"neighborhood"`
	AddressDetail *string   `json:"addressDetail"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
