package mongostore

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rightswatch/core/store"
)

// filterDocument translates list filters to a BSON query. Equality on an
// array field matches when any element equals the value.
func filterDocument(f store.RecordFilter, paths store.FieldPaths) bson.D {
	filter := bson.D{}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: f.Status})
	}
	if f.Country != "" {
		filter = append(filter, bson.E{Key: strings.Join(paths.Country, "."), Value: f.Country})
	}
	if f.Violation != "" {
		filter = append(filter, bson.E{Key: strings.Join(paths.Violations, "."), Value: f.Violation})
	}
	return filter
}

func listOptions(f store.RecordFilter) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(f.EffectiveLimit()))
}
