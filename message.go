package dockstream

// Message is one entry in the conversation sent with a chat request.
// The gateway's chat API exchanges plain role/content pairs; richer
// content types live behind the gateway, not in this client.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
