package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

// uniqueIndexFields maps unique index names to the API field they protect.
var uniqueIndexFields = map[string]string{
	"email_1":     "email",
	"github_id_1": "githubId",
}

// translate turns driver errors into domain errors. what names the entity
// for messages ("patient", "user", ...).
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsError(err); ok {
		return err
	}

	if mongo.IsDuplicateKeyError(err) {
		msg := err.Error()
		if strings.Contains(msg, slotIndexName) {
			return domain.ErrSlotTaken
		}
		for index, field := range uniqueIndexFields {
			if strings.Contains(msg, index) {
				return domain.NewConflictError(field, field+" already exists")
			}
		}
		return domain.NewConflictError("", what+" already exists")
	}

	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, mongo.ErrClientDisconnected) {
		return domain.NewUnavailableError(what+" store unavailable", err)
	}
	return err
}

// objectID parses a hex id, reporting malformed input as a validation error.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidID
	}
	return oid, nil
}

// objectIDs parses ids, skipping malformed entries.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}
