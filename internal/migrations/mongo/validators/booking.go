package validators

import "go.mongodb.org/mongo-driver/bson"

// BookingValidator is the $jsonSchema enforced on the Bookings collection.
// Resource names are fixed by configuration, so the enum is built from them.
func BookingValidator(resources []string) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{
				"_id",
				"resource",
				"start",
				"end",
			},
			"additionalProperties": true,

			"properties": bson.M{
				"_id": bson.M{
					"bsonType":  "string",
					"minLength": 36,
					"maxLength": 36,
				},

				"resource": bson.M{
					"bsonType": "string",
					"enum":     resources,
				},

				"start": bson.M{
					"bsonType": "date",
				},

				"end": bson.M{
					"bsonType": "date",
				},

				// Free text, never length-checked at admission.
				"requested_by": bson.M{
					"bsonType": "string",
				},
			},
		},
	}
}
