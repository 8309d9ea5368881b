package contract

type GatewayName string

const (
	GatewayCatalog        GatewayName = "catalog"
	GatewayConversation   GatewayName = "conversation"
	GatewayRecommendation GatewayName = "recommendation"
)

// PromptRequest is the body of both POST endpoints.
type PromptRequest struct {
	Prompt string `json:"prompt"`
}

// ChatReply is the conversation service's answer to one utterance.
type ChatReply struct {
	Response string `json:"response"`
}
