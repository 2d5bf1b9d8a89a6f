package schemas

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostId is assigned by the remote store and never changes afterwards.
type PostId string

func NewPostId() PostId {
	return PostId(primitive.NewObjectID().Hex())
}

func (id PostId) String() string {
	return string(id)
}

func (id PostId) ObjectID() (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("incorrect id %q: %w", string(id), err)
	}
	return oid, nil
}
