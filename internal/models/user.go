package models

import "time"

// FullName holds the capitalized first and last name of a user.
type FullName struct {
	FirstName string `json:"firstName" bson:"firstName" gorm:"type:varchar(20)"`
	LastName  string `json:"lastName" bson:"lastName" gorm:"type:varchar(20)"`
}

// Address is the postal address of a user.
type Address struct {
	Street  string `json:"street" bson:"street"`
	City    string `json:"city" bson:"city"`
	Country string `json:"country" bson:"country"`
}

// User is the stored user record. The whole nested structure, orders included,
// lives in a single row or document.
type User struct {
	ID       uint     `json:"-" bson:"-" gorm:"primaryKey"`
	UserID   int64    `json:"userId" bson:"userId" gorm:"uniqueIndex;not null"`
	Username string   `json:"username" bson:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	Password string   `json:"-" bson:"password" gorm:"type:varchar(255);not null"` // bcrypt digest, never rendered
	FullName FullName `json:"fullName" bson:"fullName" gorm:"embedded;embeddedPrefix:full_name_"`
	Age      float64  `json:"age" bson:"age"`
	Email    string   `json:"email" bson:"email" gorm:"type:varchar(255)"`
	IsActive bool     `json:"isActive" bson:"isActive"`
	Hobbies  []string `json:"hobbies" bson:"hobbies" gorm:"serializer:json"`
	Address  Address  `json:"address" bson:"address" gorm:"embedded;embeddedPrefix:address_"`
	Orders   []Order  `json:"orders" bson:"orders,omitempty" gorm:"serializer:json"`

	// Version is bumped on every write and guards read-modify-write cycles.
	Version   int64     `json:"-" bson:"version" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"-" bson:"createdAt"`
	UpdatedAt time.Time `json:"-" bson:"updatedAt"`
}

// Clone returns a deep copy of u so callers can mutate slices freely.
func (u User) Clone() User {
	c := u
	if u.Hobbies != nil {
		c.Hobbies = append([]string(nil), u.Hobbies...)
	}
	if u.Orders != nil {
		c.Orders = append([]Order(nil), u.Orders...)
	}
	return c
}

// UserView is the client-facing rendering of a User. Only projected fields are set,
// so unset keys are absent from the JSON output.
type UserView struct {
	UserID   *int64    `json:"userId,omitempty"`
	Username *string   `json:"username,omitempty"`
	Password *string   `json:"password,omitempty"`
	FullName *FullName `json:"fullName,omitempty"`
	Age      *float64  `json:"age,omitempty"`
	Email    *string   `json:"email,omitempty"`
	IsActive *bool     `json:"isActive,omitempty"`
	Hobbies  *[]string `json:"hobbies,omitempty"`
	Address  *Address  `json:"address,omitempty"`
	Orders   *[]Order  `json:"orders,omitempty"`
}
