package validation

import (
	"strings"

	"usersvc/internal/models"
)

// FullNamePayload is the inbound shape of a user's name.
type FullNamePayload struct {
	FirstName *string `json:"firstName" validate:"required,min=1,max=20,capitalized"`
	LastName  *string `json:"lastName" validate:"required,min=1,max=20,capitalized"`
}

// AddressPayload is the inbound shape of a postal address.
type AddressPayload struct {
	Street  *string `json:"street" validate:"required,min=1"`
	City    *string `json:"city" validate:"required,min=1"`
	Country *string `json:"country" validate:"required,min=1"`
}

// UserPayload is the inbound shape of a full user document. Pointer fields let
// the validator tell a missing key from a zero value.
type UserPayload struct {
	UserID   *int64           `json:"userId" validate:"required"`
	Username *string          `json:"username" validate:"required,min=1"`
	Password *string          `json:"password" validate:"required,min=1,max=72"`
	FullName *FullNamePayload `json:"fullName" validate:"required"`
	Age      *float64         `json:"age" validate:"required"`
	Email    *string          `json:"email" validate:"required,email"`
	IsActive *bool            `json:"isActive" validate:"required"`
	Hobbies  []*string        `json:"hobbies" validate:"required,dive,required"`
	Address  *AddressPayload  `json:"address" validate:"required"`
}

// OrderPayload is the inbound shape of a single order.
type OrderPayload struct {
	ProductName *string  `json:"productName" validate:"required,min=1"`
	Price       *float64 `json:"price" validate:"required"`
	Quantity    *float64 `json:"quantity" validate:"required"`
}

// normalize trims the name parts so the rules check the value that is stored.
func (p *UserPayload) normalize() {
	if p.FullName == nil {
		return
	}
	for _, part := range []*string{p.FullName.FirstName, p.FullName.LastName} {
		if part != nil {
			*part = strings.TrimSpace(*part)
		}
	}
}

// User converts a validated payload. Orders are never taken from the payload.
func (p UserPayload) User() models.User {
	hobbies := make([]string, 0, len(p.Hobbies))
	for _, h := range p.Hobbies {
		hobbies = append(hobbies, *h)
	}
	return models.User{
		UserID:   *p.UserID,
		Username: *p.Username,
		Password: *p.Password,
		FullName: models.FullName{
			FirstName: *p.FullName.FirstName,
			LastName:  *p.FullName.LastName,
		},
		Age:      *p.Age,
		Email:    *p.Email,
		IsActive: *p.IsActive,
		Hobbies:  hobbies,
		Address: models.Address{
			Street:  *p.Address.Street,
			City:    *p.Address.City,
			Country: *p.Address.Country,
		},
	}
}

// Order converts a validated payload.
func (p OrderPayload) Order() models.Order {
	return models.Order{
		ProductName: *p.ProductName,
		Price:       *p.Price,
		Quantity:    *p.Quantity,
	}
}
