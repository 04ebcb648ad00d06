package domain

// SharedAttribute links users that hold the same hashed identity attribute.
type SharedAttribute struct {
	AttributeType string   `json:"attributeType"`
	AttributeHash string   `json:"attributeHash"`
	UserIDs       []string `json:"connectedUsers"`
}

// UserLinks groups the shared attributes of a user.
type UserLinks struct {
	UserID           string            `json:"userId"`
	SharedAttributes []SharedAttribute `json:"sharedAttributes"`
}
