package models

// JSON field names usable in a Projection.
const (
	FieldUserID   = "userId"
	FieldUsername = "username"
	FieldPassword = "password"
	FieldFullName = "fullName"
	FieldAge      = "age"
	FieldEmail    = "email"
	FieldIsActive = "isActive"
	FieldHobbies  = "hobbies"
	FieldAddress  = "address"
	FieldOrders   = "orders"
)

// AllFields lists every user field except the password digest.
var AllFields = []string{
	FieldUserID, FieldUsername, FieldFullName, FieldAge, FieldEmail,
	FieldIsActive, FieldHobbies, FieldAddress, FieldOrders,
}

// Projection selects the user fields a read or write returns.
// An empty Fields list means every field. The password digest is
// only loaded when IncludePassword is set.
type Projection struct {
	Fields          []string
	IncludePassword bool
}

var (
	// ProjectPublic is every field except the password.
	ProjectPublic = Projection{}
	// ProjectSummary is the shape returned when listing users.
	ProjectSummary = Projection{Fields: []string{FieldUsername, FieldFullName, FieldAge, FieldEmail, FieldAddress}}
	// ProjectOrders loads only the order history.
	ProjectOrders = Projection{Fields: []string{FieldOrders}}
	// ProjectInternal loads everything, the digest included. Never render it.
	ProjectInternal = Projection{IncludePassword: true}
)

// Includes reports whether field is selected.
func (p Projection) Includes(field string) bool {
	if field == FieldPassword {
		return p.IncludePassword
	}
	if len(p.Fields) == 0 {
		return true
	}
	for _, f := range p.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Selected returns the projected field names, password included when requested.
func (p Projection) Selected() []string {
	fields := p.Fields
	if len(fields) == 0 {
		fields = AllFields
	}
	out := append([]string(nil), fields...)
	if p.IncludePassword {
		out = append(out, FieldPassword)
	}
	return out
}

// Apply zeroes the fields of u that p does not select.
func (p Projection) Apply(u User) User {
	out := User{ID: u.ID, Version: u.Version, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
	if p.Includes(FieldUserID) {
		out.UserID = u.UserID
	}
	if p.Includes(FieldUsername) {
		out.Username = u.Username
	}
	if p.Includes(FieldPassword) {
		out.Password = u.Password
	}
	if p.Includes(FieldFullName) {
		out.FullName = u.FullName
	}
	if p.Includes(FieldAge) {
		out.Age = u.Age
	}
	if p.Includes(FieldEmail) {
		out.Email = u.Email
	}
	if p.Includes(FieldIsActive) {
		out.IsActive = u.IsActive
	}
	if p.Includes(FieldHobbies) {
		out.Hobbies = append([]string(nil), u.Hobbies...)
	}
	if p.Includes(FieldAddress) {
		out.Address = u.Address
	}
	if p.Includes(FieldOrders) {
		out.Orders = append([]Order(nil), u.Orders...)
	}
	return out
}

// View renders the projected fields of u for a client.
func (p Projection) View(u User) UserView {
	var v UserView
	if p.Includes(FieldUserID) {
		v.UserID = &u.UserID
	}
	if p.Includes(FieldUsername) {
		v.Username = &u.Username
	}
	if p.Includes(FieldPassword) {
		v.Password = &u.Password
	}
	if p.Includes(FieldFullName) {
		v.FullName = &u.FullName
	}
	if p.Includes(FieldAge) {
		v.Age = &u.Age
	}
	if p.Includes(FieldEmail) {
		v.Email = &u.Email
	}
	if p.Includes(FieldIsActive) {
		v.IsActive = &u.IsActive
	}
	if p.Includes(FieldHobbies) {
		hobbies := u.Hobbies
		if hobbies == nil {
			hobbies = []string{}
		}
		v.Hobbies = &hobbies
	}
	if p.Includes(FieldAddress) {
		v.Address = &u.Address
	}
	if p.Includes(FieldOrders) {
		orders := u.Orders
		if orders == nil {
			orders = []Order{}
		}
		v.Orders = &orders
	}
	return v
}
