package validators

import "go.mongodb.org/mongo-driver/bson"

var BlockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"facility_id",
			"slot",
			"date",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"facility_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"facility_name": bson.M{
				"bsonType": "string",
			},

			"day": bson.M{
				"bsonType": "string",
			},

			"slot": bson.M{
				"bsonType": "string",
				"pattern":  "^\\d{2}:\\d{2} - \\d{2}:\\d{2}$",
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  "^\\d{4}-\\d{2}-\\d{2}$",
			},

			"created_by": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
