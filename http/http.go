// Package http implements [titan.ChatClient] for the Titan chat service.
//
// Replies arrive as a line-oriented record stream: every line starting with
// "data: " carries one JSON object. The parser reads one record per step
// and maps it to a semantic [titan.Event]. Auxiliary endpoints (session
// bootstrap, thinking mode, cancellation, history, feedback) share one
// cookie-carrying HTTP client so the server can track the session.
package http

const (
	chatPath         = "/chat-stream"
	initSessionPath  = "/api/init-session"
	userStatusPath   = "/api/user-status"
	thinkingModePath = "/thinking-mode"
	cancelPath       = "/cancel-request"
	clearHistoryPath = "/clear-chat-history"
	reportPath       = "/api/feedback"
	votePath         = "/feedback"
)

// chatRequest is the JSON body sent to the chat endpoint.
type chatRequest struct {
	Message      string `json:"mensagem"`
	ThinkingMode bool   `json:"thinking_mode"`
}

// record is one decoded "data: " line. Fields are populated depending on Type.
type record struct {
	Type string `json:"type"`

	// content
	Content string `json:"content"`

	// thinking_done, done
	Thinking     string `json:"thinking"`
	FinalContent string `json:"final_content"`

	// error
	Error          string `json:"error"`
	ActionRequired string `json:"action_required"`

	// limit_info
	Used         int  `json:"used"`
	Limit        int  `json:"limit"`
	Remaining    int  `json:"remaining"`
	LimitReached bool `json:"limit_reached"`
}

// apiErrorResponse is the JSON body of a non-success response.
type apiErrorResponse struct {
	Error          string `json:"error"`
	Erro           string `json:"erro"`
	Message        string `json:"message"`
	Type           string `json:"type"`
	ActionRequired string `json:"action_required"`
	MessagesUsed   int    `json:"messages_used"`
	Limit          int    `json:"limit"`
	Remaining      int    `json:"remaining"`
	CurrentPlan    string `json:"current_plan"`
}

func (r apiErrorResponse) message() string {
	switch {
	case r.Error != "":
		return r.Error
	case r.Erro != "":
		return r.Erro
	default:
		return r.Message
	}
}

type sessionResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	Anonymous bool   `json:"anonymous"`
}

type statusResponse struct {
	LoggedIn     bool   `json:"logged_in"`
	Anonymous    bool   `json:"anonymous"`
	NeedsSession bool   `json:"needs_session_init"`
	SessionID    string `json:"session_id"`
	Plan         *struct {
		Name     string   `json:"name"`
		Features []string `json:"features"`
	} `json:"plan"`
	AnonymousLimits *struct {
		Used      int `json:"used"`
		Limit     int `json:"limit"`
		Remaining int `json:"remaining"`
	} `json:"anonymous_limits"`
}

type thinkingModeRequest struct {
	Enabled bool `json:"enabled"`
}

type cancelRequest struct {
	Action string `json:"action"`
}

type reportRequest struct {
	Kind         string `json:"tipo"`
	Title        string `json:"titulo"`
	Description  string `json:"descricao"`
	Steps        string `json:"passos_reproducao"`
	Category     string `json:"categoria"`
	Priority     string `json:"prioridade"`
	ThinkingMode bool   `json:"thinking_mode"`
	Timestamp    string `json:"timestamp"`
}

type voteRequest struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	SessionID string `json:"session_id,omitempty"`
	Timestamp string `json:"timestamp"`
}
