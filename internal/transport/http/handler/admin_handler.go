package handler

import (
	"encoding/csv"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"usdrop-admin/internal/domain"
	"usdrop-admin/internal/service"
	"usdrop-admin/internal/transport/http/ez"
	resp "usdrop-admin/internal/transport/http/response"
)

// AdminHandler mounts the dashboard endpoints under the session-guarded /admin group.
type AdminHandler struct {
	svc *service.AdminService
	log *zap.Logger
}

func NewAdminHandler(svc *service.AdminService, l *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, log: l}
}

type deleteQ struct {
	UserID string `form:"userId"`
}

// authorize is every admin action's Guard; the service checks again under its own context.
func (h *AdminHandler) authorize(c *gin.Context) error {
	_, err := h.svc.Authorize(c.Request.Context(), ez.CallerFrom(c))
	return err
}

func (h *AdminHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[struct{}, *service.StatsResult]{
		Name:   "stats",
		Method: http.MethodGet,
		Path:   "/stats",
		Binder: ez.BindNone,
		Auth:   true,
		Guard:  h.authorize,
		Handler: func(c *gin.Context, _ *struct{}) (*service.StatsResult, error) {
			return h.svc.Stats(c.Request.Context(), ez.CallerFrom(c))
		},
	})

	ez.RegisterAction(e, ez.Action[service.ListQuery, *domain.UserPage]{
		Name:        "list_users",
		Method:      http.MethodGet,
		Path:        "/users",
		Binder:      ez.BindQuery,
		Auth:        true,
		Guard:       h.authorize,
		BindMessage: func(error) string { return "Invalid query parameters" },
		Handler: func(c *gin.Context, in *service.ListQuery) (*domain.UserPage, error) {
			return h.svc.ListUsers(c.Request.Context(), ez.CallerFrom(c), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[service.ListQuery, []domain.User]{
		Name:        "export_users",
		Method:      http.MethodGet,
		Path:        "/users/export",
		Binder:      ez.BindQuery,
		Auth:        true,
		Guard:       h.authorize,
		BindMessage: func(error) string { return "Invalid query parameters" },
		Handler: func(c *gin.Context, in *service.ListQuery) ([]domain.User, error) {
			return h.svc.ExportUsers(c.Request.Context(), ez.CallerFrom(c), *in)
		},
		Write: h.writeCSV,
	})

	ez.RegisterAction(e, ez.Action[service.CreateUserInput, resp.Success]{
		Name:   "create_user",
		Method: http.MethodPost,
		Path:   "/users/create",
		Binder: ez.BindJSON,
		Auth:   true,
		Guard:  h.authorize,
		BindMessage: func(err error) string {
			return service.MessageFor(service.CreateUserInput{}, err)
		},
		Handler: func(c *gin.Context, in *service.CreateUserInput) (resp.Success, error) {
			u, err := h.svc.CreateUser(c.Request.Context(), ez.CallerFrom(c), *in)
			if err != nil {
				return resp.Success{}, err
			}
			return resp.OK(u, ""), nil
		},
	})

	ez.RegisterAction(e, ez.Action[deleteQ, resp.Success]{
		Name:   "delete_user",
		Method: http.MethodDelete,
		Path:   "/users/delete",
		Binder: ez.BindQuery,
		Auth:   true,
		Guard:  h.authorize,
		Handler: func(c *gin.Context, in *deleteQ) (resp.Success, error) {
			if err := h.svc.DeleteUser(c.Request.Context(), ez.CallerFrom(c), in.UserID); err != nil {
				return resp.Success{}, err
			}
			return resp.OK(nil, "User deleted successfully"), nil
		},
	})

	ez.RegisterAction(e, ez.Action[service.UpdateRoleInput, resp.Success]{
		Name:   "update_role",
		Method: http.MethodPatch,
		Path:   "/users/update-role",
		Binder: ez.BindJSON,
		Auth:   true,
		Guard:  h.authorize,
		BindMessage: func(err error) string {
			return service.MessageFor(service.UpdateRoleInput{}, err)
		},
		Handler: func(c *gin.Context, in *service.UpdateRoleInput) (resp.Success, error) {
			p, err := h.svc.UpdateRole(c.Request.Context(), ez.CallerFrom(c), *in)
			if err != nil {
				return resp.Success{}, err
			}
			return resp.OK(p, "User role updated successfully"), nil
		},
	})
}

var csvHeader = []string{"id", "full_name", "email", "role_id", "plan", "created_at", "updated_at"}

// csvCell keeps user-supplied text from being read as a formula by spreadsheet apps.
func csvCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

func (h *AdminHandler) writeCSV(c *gin.Context, users []domain.User) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="users.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(csvHeader)
	for _, u := range users {
		_ = w.Write([]string{
			csvCell(u.ID),
			csvCell(u.FullName),
			csvCell(u.Email),
			string(u.Role),
			string(u.Plan),
			u.CreatedAt.UTC().Format(time.RFC3339),
			u.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.log.Warn("write csv", zap.String("rid", ez.RequestIDFrom(c)), zap.Error(err))
	}
}
