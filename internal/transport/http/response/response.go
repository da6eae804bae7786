package response

import "github.com/gin-gonic/gin"

// ErrorBody is every non-2xx body: {"error": "..."}.
type ErrorBody struct {
	Error string `json:"error"`
}

// Error builds the body for code; customMsg overrides the default.
func Error(code int, customMsg string) ErrorBody {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	if msg == "" {
		msg = "Request failed"
	}
	return ErrorBody{Error: msg}
}

// Abort writes the error body with the real status and stops the chain.
func Abort(c *gin.Context, code int, customMsg string) {
	c.AbortWithStatusJSON(code, Error(code, customMsg))
}

// Success is the envelope for mutations.
type Success struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	User    any    `json:"user,omitempty"`
}

func OK(user any, message string) Success {
	return Success{Success: true, User: user, Message: message}
}
