package ledger

import (
	"strings"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
)

// AppendInput is the caller supplied part of a ledger event.
type AppendInput struct {
	Type      string         `json:"type"`
	ActorID   string         `json:"actorId"`
	ActorName string         `json:"actorName"`
	Details   map[string]any `json:"details"`
}

// Validate checks presence of every required field.
func (in AppendInput) Validate() error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(in.Type) == "" {
		verr.Add("type", "type is required")
	}
	if strings.TrimSpace(in.ActorID) == "" {
		verr.Add("actorId", "actorId is required")
	}
	if strings.TrimSpace(in.ActorName) == "" {
		verr.Add("actorName", "actorName is required")
	}
	if in.Details == nil {
		verr.Add("details", "details is required")
	}
	return verr.OrNil()
}

// ParseAppendRequest checks presence and JSON type of every field of a
// decoded request body and reports all failures together.
func ParseAppendRequest(body map[string]any) (AppendInput, error) {
	verr := &domain.ValidationError{}
	var in AppendInput

	in.Type = stringField(body, "type", verr)
	in.ActorID = stringField(body, "actorId", verr)
	in.ActorName = stringField(body, "actorName", verr)

	switch details := body["details"].(type) {
	case nil:
		verr.Add("details", "details is required")
	case map[string]any:
		in.Details = details
	default:
		verr.Add("details", "details must be an object")
	}

	if err := verr.OrNil(); err != nil {
		return AppendInput{}, err
	}
	return in, nil
}

func stringField(body map[string]any, field string, verr *domain.ValidationError) string {
	raw, ok := body[field]
	if !ok || raw == nil {
		verr.Add(field, field+" is required")
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		verr.Add(field, field+" must be a string")
		return ""
	}
	if strings.TrimSpace(s) == "" {
		verr.Add(field, field+" must not be empty")
		return ""
	}
	return s
}
