package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/identity"
)

// Links projects users and their hashed identity attributes into the graph.
// A Links with a nil client is disabled: writes are skipped and reads return
// ErrUnavailable.
type Links struct {
	client Client
	logger *slog.Logger
}

// NewLinks returns a Links over client, which may be nil.
func NewLinks(client Client, logger *slog.Logger) *Links {
	return &Links{client: client, logger: logger.With("component", "graph")}
}

// Enabled reports whether a graph client is attached.
func (l *Links) Enabled() bool { return l != nil && l.client != nil }

// RecordUser merges the user node and replaces its attribute edges.
func (l *Links) RecordUser(ctx context.Context, user domain.User) error {
	if !l.Enabled() {
		return nil
	}
	if user.ID == "" {
		return errors.New("user id is required")
	}

	attrs := identity.Attributes(user)
	params := map[string]any{
		"userId": user.ID,
		"props": map[string]any{
			"name":       user.Name,
			"role":       string(user.Role),
			"isVerified": user.IsVerified,
			"createdAt":  formatTime(user.CreatedAt),
		},
		"attributes": attributeParams(attrs),
	}
	if _, err := l.client.ExecuteWrite(ctx, recordUserCypher, params); err != nil {
		return fmt.Errorf("record user %s in graph: %w", user.ID, err)
	}
	l.logger.Debug("user projected", "userId", user.ID, "attributes", len(attrs))
	return nil
}

// RemoveUser deletes the user node and orphaned attributes.
func (l *Links) RemoveUser(ctx context.Context, userID string) error {
	if !l.Enabled() {
		return nil
	}
	if _, err := l.client.ExecuteWrite(ctx, removeUserCypher, map[string]any{"userId": userID}); err != nil {
		return fmt.Errorf("remove user %s from graph: %w", userID, err)
	}
	return nil
}

// SharedAttributes lists attributes of userID held by at least one other user.
func (l *Links) SharedAttributes(ctx context.Context, userID string) (domain.UserLinks, error) {
	links := domain.UserLinks{UserID: userID, SharedAttributes: []domain.SharedAttribute{}}
	if !l.Enabled() {
		return links, ErrUnavailable
	}

	res, err := l.client.ExecuteRead(ctx, sharedAttributesCypher, map[string]any{"userId": userID})
	if err != nil {
		return links, fmt.Errorf("query shared attributes of %s: %w", userID, err)
	}
	for _, rec := range res.Records {
		links.SharedAttributes = append(links.SharedAttributes, domain.SharedAttribute{
			AttributeType: toString(rec["attributeType"]),
			AttributeHash: toString(rec["attributeHash"]),
			UserIDs:       toStrings(rec["userIds"]),
		})
	}
	return links, nil
}

func attributeParams(attrs []identity.Attribute) []map[string]any {
	out := make([]map[string]any, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, map[string]any{"type": a.Type, "value": a.Value})
	}
	return out
}

const recordUserCypher = `
MERGE (u:User {userId: $userId})
SET u += $props
WITH u
OPTIONAL MATCH (u)-[old:HAS_ATTRIBUTE]->(:Attribute)
DELETE old
WITH DISTINCT u
FOREACH (attr IN $attributes |
	MERGE (a:Attribute {attributeType: attr.type, value: attr.value})
	MERGE (u)-[:HAS_ATTRIBUTE]->(a)
)
RETURN u.userId AS userId
`

const removeUserCypher = `
MATCH (u:User {userId: $userId})
OPTIONAL MATCH (u)-[:HAS_ATTRIBUTE]->(a:Attribute)
DETACH DELETE u
WITH DISTINCT a
WHERE a IS NOT NULL AND NOT (a)<-[:HAS_ATTRIBUTE]-()
DELETE a
`

const sharedAttributesCypher = `
MATCH (u:User {userId: $userId})-[:HAS_ATTRIBUTE]->(a:Attribute)<-[:HAS_ATTRIBUTE]-(other:User)
WHERE other.userId <> $userId
RETURN a.attributeType AS attributeType,
       a.value AS attributeHash,
       collect(DISTINCT other.userId) AS userIds
ORDER BY attributeType, attributeHash
`
