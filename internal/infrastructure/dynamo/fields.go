package dynamo

// DynamoDB attribute and index names shared across repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEnable    = "enable"
	fieldUpdatedAt = "updated_at"
	fieldCreatedAt = "created_at"

	indexUsername          = "username-index"
	indexEmail             = "email-index"
	indexUserCreatedAt     = "user_id-created_at-index"
	indexReadingID         = "reading_id-index"
	conditionNewPrimaryKey = "attribute_not_exists(%s)"
)
