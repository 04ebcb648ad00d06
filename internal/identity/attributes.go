package identity

import "github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"

// Attribute types linking users in the identity graph.
const (
	AttributeEmail     = "EMAIL"
	AttributePhone     = "PHONE"
	AttributeDigitalID = "DIGITAL_ID"
)

// Attribute is a hashed identity attribute of a user.
type Attribute struct {
	Type  string
	Value string
}

// Attributes derives the hashed identity attributes of u. Empty values are
// skipped so unrelated users never link through a blank field.
func Attributes(u domain.User) []Attribute {
	var attrs []Attribute
	if email := NormalizeEmail(u.Email); email != "" {
		attrs = append(attrs, Attribute{Type: AttributeEmail, Value: HashValue(email)})
	}
	if phone := NormalizePhone(u.Phone); phone != "" {
		attrs = append(attrs, Attribute{Type: AttributePhone, Value: HashValue(phone)})
	}
	if u.DigitalID != nil && u.DigitalID.ID != "" {
		attrs = append(attrs, Attribute{Type: AttributeDigitalID, Value: HashValue(u.DigitalID.ID)})
	}
	return attrs
}
