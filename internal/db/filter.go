package db

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FilterBuilder accumulates conditions into a single bson.M. Conditions on the same
// field overwrite each other.
type FilterBuilder struct {
	filter bson.M
}

func NewFilter() *FilterBuilder {
	return &FilterBuilder{filter: bson.M{}}
}

func (f *FilterBuilder) ID(id primitive.ObjectID) *FilterBuilder {
	return f.Eq("_id", id)
}

func (f *FilterBuilder) Eq(field string, value interface{}) *FilterBuilder {
	f.filter[field] = value
	return f
}

func (f *FilterBuilder) Ne(field string, value interface{}) *FilterBuilder {
	f.filter[field] = bson.M{"$ne": value}
	return f
}

// Or is a no-op when called without alternatives.
func (f *FilterBuilder) Or(alternatives ...bson.M) *FilterBuilder {
	if len(alternatives) == 0 {
		return f
	}
	f.filter["$or"] = alternatives
	return f
}

func (f *FilterBuilder) Build() bson.M {
	return f.filter
}
