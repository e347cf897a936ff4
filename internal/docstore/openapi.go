package docstore

import "github.com/JaimeStill/logomagic/pkg/openapi"

type spec struct {
	List *openapi.Operation
	Find *openapi.Operation
}

var collectionParam = &openapi.Parameter{
	Name:        "collection",
	In:          "path",
	Required:    true,
	Description: "Collection name",
	Schema: &openapi.Schema{
		Type: "string",
		Enum: []string{CollectionUsers, CollectionPayments},
	},
}

var Spec = spec{
	List: &openapi.Operation{
		Summary:     "List records",
		Description: "List records in a collection, newest first",
		Parameters: []*openapi.Parameter{
			collectionParam,
			openapi.QueryParam("page", "integer", "Page number", false),
			openapi.QueryParam("page_size", "integer", "Items per page", false),
			openapi.QueryParam("search", "string", "Search in record fields", false),
			openapi.QueryParam("sort", "string", "Sort fields: CreatedAt, Id (prefix - for descending)", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Paginated list of records", "RecordPageResult"),
			400: openapi.ResponseRef("BadRequest"),
			500: openapi.ResponseRef("Unexpected"),
		},
	},
	Find: &openapi.Operation{
		Summary: "Find record by ID",
		Parameters: []*openapi.Parameter{
			collectionParam,
			openapi.PathParam("id", "uuid", "Record UUID"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Record details", "Record"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

func (spec) Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Record": {
			Type: "object",
			Properties: map[string]*openapi.Property{
				"id":         {Type: "string", Format: "uuid"},
				"collection": {Type: "string", Example: CollectionUsers},
				"fields":     {Type: "object", Description: "Submitted values, keyed by field name"},
				"created_at": {Type: "string", Format: "date-time"},
			},
		},
		"RecordPageResult": {
			Type: "object",
			Properties: map[string]*openapi.Property{
				"data":        {Type: "array", Description: "Array of Record objects"},
				"total":       {Type: "integer", Description: "Total number of matching records"},
				"page":        {Type: "integer", Description: "Current page number"},
				"page_size":   {Type: "integer", Description: "Number of items per page"},
				"total_pages": {Type: "integer", Description: "Total number of pages"},
			},
		},
	}
}
