package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agreement-radar/api/response"
	"agreement-radar/service"
	"agreement-radar/types"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AgreementService is what the HTTP layer needs from the service package.
type AgreementService interface {
	Upload(ctx context.Context, fileName string, data []byte) (*types.Agreement, error)
	List(ctx context.Context) ([]types.Agreement, error)
	Get(ctx context.Context, id string) (*service.AgreementDetail, error)
	Download(ctx context.Context, id string) (*service.SourceFile, error)
	Search(ctx context.Context, query string) ([]types.Agreement, error)
	KeyDatesBetween(ctx context.Context, rng types.KeyDateRange) ([]types.UpcomingKeyDate, error)
	Export(ctx context.Context, w io.Writer) error
}

type AgreementHandler struct {
	svc AgreementService
	log zerolog.Logger
}

func NewAgreementHandler(svc AgreementService, log zerolog.Logger) *AgreementHandler {
	return &AgreementHandler{svc: svc, log: log}
}

// List GET /agreements
func (h *AgreementHandler) List(c *gin.Context) {
	agreements, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, gin.H{"agreements": agreements})
}

// Upload POST /agreements/upload，表单字段名为 file
func (h *AgreementHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", tooLarge.Limit))
			return
		}
		response.Fail(c, http.StatusBadRequest, "No file")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "No file")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		h.handleError(c, fmt.Errorf("read upload: %w", err))
		return
	}

	agreement, err := h.svc.Upload(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, gin.H{"agreement": agreement})
}

// Get GET /agreements/:id
func (h *AgreementHandler) Get(c *gin.Context) {
	detail, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, detail)
}

// Download GET /agreements/:id/file 返回原始上传文件
func (h *AgreementHandler) Download(c *gin.Context) {
	file, err := h.svc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+file.FileName+"\"")
	c.Data(http.StatusOK, http.DetectContentType(file.Data), file.Data)
}

// Search GET /agreements/search?q=
func (h *AgreementHandler) Search(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "query parameter q is required")
		return
	}

	agreements, err := h.svc.Search(c.Request.Context(), req.Query)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, gin.H{"agreements": agreements})
}

// KeyDates GET /key-dates?from=&to=
func (h *AgreementHandler) KeyDates(c *gin.Context) {
	var rng types.KeyDateRange
	if err := c.ShouldBindQuery(&rng); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.svc.KeyDatesBetween(c.Request.Context(), rng)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, gin.H{"keyDates": rows})
}

// Export GET /agreements/export
func (h *AgreementHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.Export(c.Request.Context(), &buf); err != nil {
		h.handleError(c, err)
		return
	}

	fileName := fmt.Sprintf("agreements-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *AgreementHandler) Healthz(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

func (h *AgreementHandler) handleError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationFailed(c, verr.Issues)
	case errors.Is(err, service.ErrNoFile):
		response.Fail(c, http.StatusBadRequest, "No file")
	case errors.Is(err, service.ErrInvalidInput):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		response.Fail(c, http.StatusInternalServerError, err.Error())
	}
}
