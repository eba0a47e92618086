package conversions

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-converter/internal/shared/server/respond"
	"resume-converter/resume/compose"
	"resume-converter/resume/model"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches conversion routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/conversions", h.create)
	rg.GET("/conversions", h.list)
	rg.GET("/conversions/:id", h.get)
	rg.GET("/conversions/:id/download", h.download)
}

func (h *Handler) create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	in, err := bindConvertInput(c)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}

	rec, err := h.Svc.Convert(c.Request.Context(), in)
	if rec.ID != "" {
		c.Set("conversionId", rec.ID)
		c.Set("statusTransition", string(StateForm)+"->"+string(rec.Status))
	}
	if err != nil {
		code := ErrorCode(err)
		respond.Error(c, httpStatus(code), code, UserMessage(err), gin.H{"conversionId": rec.ID})
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(rec))
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items, err := h.Svc.List(c.Request.Context(), limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, CodeInternal, "failed to list conversions", nil)
		return
	}
	respond.OK(c, ListResponse{Conversions: toResponses(items)})
}

func (h *Handler) get(c *gin.Context) {
	rec, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "conversion not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, CodeInternal, "failed to load conversion", nil)
		return
	}
	respond.OK(c, toResponse(rec))
}

func (h *Handler) download(c *gin.Context) {
	rc, rec, err := h.Svc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no generated document for this conversion", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, CodeInternal, "failed to open generated document", nil)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", compose.DocxMIMEType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.OutputFileName))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		// Headers are already out; nothing left to do but log via gin's error sink.
		_ = c.Error(err)
	}
}

// bindConvertInput accepts either a multipart form with a file part or a
// JSON body pointing at a stored object or remote URL.
func bindConvertInput(c *gin.Context) (ConvertInput, error) {
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return bindMultipart(c)
	}
	return bindJSON(c)
}

func bindMultipart(c *gin.Context) (ConvertInput, error) {
	var in ConvertInput
	in.Info = model.CandidateInfo{
		CandidateName:  strings.TrimSpace(c.PostForm("candidateName")),
		Nationality:    strings.TrimSpace(c.PostForm("nationality")),
		Gender:         strings.TrimSpace(c.PostForm("gender")),
		ExpectedSalary: strings.TrimSpace(c.PostForm("expectedSalary")),
		NoticePeriod:   strings.TrimSpace(c.PostForm("noticePeriod")),
		PreparedBy:     strings.TrimSpace(c.PostForm("preparedBy")),
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ConvertInput{}, errors.New("file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return ConvertInput{}, errors.New("unable to read file")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return ConvertInput{}, errors.New("unable to read file")
	}

	in.Data = data
	in.FileName = fileHeader.Filename
	in.MimeType = fileHeader.Header.Get("Content-Type")
	return in, nil
}

type convertRequest struct {
	CandidateName  string `json:"candidateName"`
	Nationality    string `json:"nationality"`
	Gender         string `json:"gender"`
	ExpectedSalary string `json:"expectedSalary"`
	NoticePeriod   string `json:"noticePeriod"`
	PreparedBy     string `json:"preparedBy"`
	SourceKey      string `json:"sourceKey"`
	SourceURL      string `json:"sourceUrl"`
	FileName       string `json:"fileName"`
	MimeType       string `json:"mimeType"`
}

func bindJSON(c *gin.Context) (ConvertInput, error) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return ConvertInput{}, errors.New("invalid request body")
	}
	return ConvertInput{
		Info: model.CandidateInfo{
			CandidateName:  strings.TrimSpace(req.CandidateName),
			Nationality:    strings.TrimSpace(req.Nationality),
			Gender:         strings.TrimSpace(req.Gender),
			ExpectedSalary: strings.TrimSpace(req.ExpectedSalary),
			NoticePeriod:   strings.TrimSpace(req.NoticePeriod),
			PreparedBy:     strings.TrimSpace(req.PreparedBy),
		},
		SourceKey: strings.TrimSpace(req.SourceKey),
		SourceURL: strings.TrimSpace(req.SourceURL),
		FileName:  strings.TrimSpace(req.FileName),
		MimeType:  strings.TrimSpace(req.MimeType),
	}, nil
}

func httpStatus(code string) int {
	switch code {
	case CodeValidation, CodeUnsupportedFormat:
		return http.StatusBadRequest
	case CodeInsufficientText, CodeJSONParse:
		return http.StatusUnprocessableEntity
	case CodeFetch, CodeAIService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
