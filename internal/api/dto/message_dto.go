package dto

// MessageCreateRequest payload for posting a message.
type MessageCreateRequest struct {
	Body            string  `json:"body"`
	ParentMessageID *string `json:"parent_message_id"`
}

// MessageEditRequest payload for editing a message body.
type MessageEditRequest struct {
	Body string `json:"body"`
}
