package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"usdrop-admin/internal/domain"
	resp "usdrop-admin/internal/transport/http/response"
)

type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定（并校验 binding tag）
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Query / c.Param 取
)

// AErr is a transport-level failure with an explicit status.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error { return &AErr{Code: http.StatusBadRequest, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

var actionTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "admin_actions_total", Help: "Actions handled, by outcome"},
	[]string{"action", "result"},
)

func init() { prometheus.MustRegister(actionTotal) }

// Action is one endpoint: bind I, run Handler, write O.
type Action[I any, O any] struct {
	Name    string // metrics label; defaults to Path
	Method  string // GET | POST | PUT | PATCH | DELETE
	Path    string
	Binder  Binder
	Auth    bool // 401 unless the session middleware attached a caller
	Status  int  // success status, default 200
	Handler func(c *gin.Context, in *I) (O, error)

	// Guard runs before binding so a caller without access never sees validation errors.
	Guard func(c *gin.Context) error

	// Write replaces the JSON writer, e.g. for file downloads.
	Write func(c *gin.Context, out O)
	// BindMessage turns a binding error into the 400 body. Default: "Invalid request body".
	BindMessage func(err error) string
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	name := a.Name
	if name == "" {
		name = a.Path
	}
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}

	h := func(c *gin.Context) {
		if a.Auth && CallerFrom(c).ID == "" {
			actionTotal.WithLabelValues(name, "unauthorized").Inc()
			resp.Abort(c, http.StatusUnauthorized, "")
			return
		}

		if a.Guard != nil {
			if err := a.Guard(c); err != nil {
				code, msg := StatusOf(err)
				if code >= http.StatusInternalServerError {
					e.log.Error("action guard failed", zap.String("action", name), zap.String("rid", RequestIDFrom(c)), zap.Error(err))
				}
				actionTotal.WithLabelValues(name, "denied").Inc()
				resp.Abort(c, code, msg)
				return
			}
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		var tooLarge *http.MaxBytesError
		if errors.As(bindErr, &tooLarge) {
			actionTotal.WithLabelValues(name, "too_large").Inc()
			resp.Abort(c, http.StatusRequestEntityTooLarge, "")
			return
		}
		if bindErr != nil {
			msg := "Invalid request body"
			if a.BindMessage != nil {
				msg = a.BindMessage(bindErr)
			}
			actionTotal.WithLabelValues(name, "invalid").Inc()
			resp.Abort(c, http.StatusBadRequest, msg)
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			code, msg := StatusOf(err)
			if code >= http.StatusInternalServerError {
				e.log.Error("action failed",
					zap.String("action", name),
					zap.String("rid", RequestIDFrom(c)),
					zap.String("caller", CallerFrom(c).ID),
					zap.Error(err),
				)
			}
			actionTotal.WithLabelValues(name, strings.ToLower(strings.ReplaceAll(http.StatusText(code), " ", "_"))).Inc()
			resp.Abort(c, code, msg)
			return
		}
		actionTotal.WithLabelValues(name, "ok").Inc()
		if a.Write != nil {
			a.Write(c, out)
			return
		}
		c.JSON(status, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

// StatusOf maps an error to its status and the message safe to return.
func StatusOf(err error) (int, string) {
	var (
		ae *AErr
		ve *domain.ValidationError
		ce *domain.ConflictError
		ie *domain.InternalError
	)
	switch {
	case errors.As(err, &ae):
		return ae.Code, ae.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Msg
	case errors.As(err, &ce):
		return http.StatusBadRequest, ce.Msg
	case errors.As(err, &ie):
		return http.StatusInternalServerError, ie.Msg
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "User not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
