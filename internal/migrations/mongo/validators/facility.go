package validators

import "go.mongodb.org/mongo-driver/bson"

var FacilityValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"type",
			"status",
			"staff_id",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"type": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},

			"outdoor": bson.M{
				"bsonType": "bool",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"Available",
					"Closed",
					"Under Maintenance",
				},
			},

			"staff_id": bson.M{
				"bsonType": "string",
			},

			"capacity": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  50,
			},

			"timeslots": bson.M{
				"bsonType": "object",
				"additionalProperties": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": []string{"start", "end"},
						"properties": bson.M{
							"start":     bson.M{"bsonType": "string"},
							"end":       bson.M{"bsonType": "string"},
							"is_booked": bson.M{"bsonType": "bool"},
						},
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
