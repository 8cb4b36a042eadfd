package mapping

import "github.com/winback/message-service/internal/types"

// fieldAliases holds the recognized header spellings for each target
// field. Matching is case-insensitive substring matching, so the order
// matters: more specific aliases come first and generic ones ("id",
// "product") last.
var fieldAliases = map[types.TargetField][]string{
	types.FieldMessageID:        {"message_id", "message id", "messageid", "id"},
	types.FieldSandboxMessageID: {"sandbox message id", "sandbox_message_id", "sandbox messageid"},
	types.FieldHeader:           {"header", "title"},
	types.FieldBody:             {"body", "message", "text"},
	types.FieldLocale:           {"locale", "locale shortcode", "language", "lang"},
	types.FieldImageID:          {"image_id", "image id", "imageid", "imageidentifier", "image identifier"},
	types.FieldSandboxImageID:   {"sandbox image id", "sandbox_image_id", "sandbox imageid"},
	types.FieldImageAltText:     {"image_alt_text", "alt text", "alttext", "alt_text", "image alt"},
	types.FieldEnvironment:      {"environment", "env"},
	types.FieldProductID:        {"product_id", "product id", "productid", "product"},
}

// sandboxVariant maps a base field to its sandbox-specific counterpart,
// consulted before the base column when the run targets SANDBOX.
var sandboxVariant = map[types.TargetField]types.TargetField{
	types.FieldMessageID: types.FieldSandboxMessageID,
	types.FieldImageID:   types.FieldSandboxImageID,
}
