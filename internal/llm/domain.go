package llm

// Role identifies the author of a conversation turn
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest represents a request for a free-text reply
type CompletionRequest struct {
	ChatID       int64     `json:"chat_id"`
	SystemPrompt string    `json:"system_prompt"`
	History      []Message `json:"history"`
	Prompt       string    `json:"prompt" validate:"required"`
	MaxTokens    int       `json:"max_tokens"`
	Temperature  float64   `json:"temperature"`
}

// Messages returns the prior turns followed by the new user prompt,
// without the system prompt
func (r CompletionRequest) Messages() []Message {
	out := make([]Message, 0, len(r.History)+1)
	out = append(out, r.History...)
	return append(out, Message{Role: RoleUser, Content: r.Prompt})
}

// CompletionResponse represents the model reply
type CompletionResponse struct {
	Text             string `json:"text"`
	Model            string `json:"model"`
	FinishReason     string `json:"finish_reason"`
	PromptTokens     int64  `json:"prompt_tokens"`
	CompletionTokens int64  `json:"completion_tokens"`
}

// DefaultSystemPrompt keeps the assistant in the persona of the store's
// virtual waiter and inside the beer delivery domain
const DefaultSystemPrompt = "Você é o BotChopp, garçom virtual informal, espirituoso e simpático. " +
	"Responda como se estivesse servindo um cliente no balcão de um boteco com humor e leveza. " +
	"Fale apenas sobre chopp, pedidos, entregas, pagamentos e atendimento da loja; " +
	"se não souber a resposta, peça para o cliente falar com um atendente. Responda em português, em poucas frases."

// Generation defaults
const (
	defaultMaxTokens   = 400
	defaultTemperature = 0.7
)
