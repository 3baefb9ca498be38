package v1

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	api "github.com/clipforge/clipforge/api/v1"
	"github.com/clipforge/clipforge/internal/service"
)

type ServiceHandler struct {
	userSrv  *service.UserService
	jobSrv   *service.JobService
	validate *validator.Validate

	// maxUploadBytes bounds multipart parsing before the service-level size
	// check runs.
	maxUploadBytes int64
}

func NewServiceHandler(userSrv *service.UserService, jobSrv *service.JobService, maxUploadBytes int64) *ServiceHandler {
	return &ServiceHandler{
		userSrv:        userSrv,
		jobSrv:         jobSrv,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		maxUploadBytes: maxUploadBytes,
	}
}

func respond(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	envelope := api.Envelope{Success: true, Message: message}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			zap.S().Named("handlers").Errorw("failed to marshal response payload", "error", err)
			respondError(w, r, http.StatusInternalServerError, "Error", "internal error")
			return
		}
		envelope.Data = raw
	}
	render.Status(r, status)
	render.JSON(w, r, envelope)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message, errMsg string) {
	render.Status(r, status)
	render.JSON(w, r, api.Envelope{Success: false, Message: message, Error: errMsg})
}

// decodeAndValidate decodes the JSON request body into dst and runs struct
// validation on it.
func (h *ServiceHandler) decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return h.validate.Struct(dst)
}
