package mongo

import (
	"testing"

	"clinicbook/internal/bookings/repository"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections_Bookings(t *testing.T) {
	resources := []string{"Dental", "Surgery"}
	defs := collections(resources)

	def, ok := defs[repository.CollectionName]
	if !ok {
		t.Fatalf("expected %s collection", repository.CollectionName)
	}
	if len(def.Indexes) != 2 {
		t.Errorf("expected 2 indexes, got %d", len(def.Indexes))
	}

	first, ok := def.Indexes[0].Keys.(bson.D)
	if !ok || len(first) != 2 || first[0].Key != "resource" || first[1].Key != "start" {
		t.Errorf("conflict scan index must be (resource, start), got %v", def.Indexes[0].Keys)
	}

	schema := def.Validator["$jsonSchema"].(bson.M)
	props := schema["properties"].(bson.M)
	enum := props["resource"].(bson.M)["enum"].([]string)
	if len(enum) != 2 || enum[0] != "Dental" || enum[1] != "Surgery" {
		t.Errorf("resource enum must follow configuration, got %v", enum)
	}
	if props["start"].(bson.M)["bsonType"] != "date" {
		t.Error("start must be stored as a BSON date")
	}

	requestedBy := props["requested_by"].(bson.M)
	for _, limit := range []string{"maxLength", "minLength", "pattern"} {
		if _, ok := requestedBy[limit]; ok {
			t.Errorf("requested_by must accept any string the validator admits, found %s", limit)
		}
	}
}
