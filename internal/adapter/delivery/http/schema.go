package http

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/golinks/internal/entity"
)

const statusError = "error"

// createLinkRequest represents the structure for a request to create a link.
type createLinkRequest struct {
	URL         string  `json:"url" validate:"required,url"`
	ShortCode   string  `json:"shortCode" validate:"omitempty,alias"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	Owner       *string `json:"owner" validate:"omitnil,max=255"`
}

func (req createLinkRequest) toEntity() entity.Link {
	return entity.Link{
		URL:         req.URL,
		ShortCode:   req.ShortCode,
		Description: req.Description,
		Owner:       req.Owner,
	}
}

// updateLinkRequest represents a partial link update. Omitted fields are left unchanged.
type updateLinkRequest struct {
	URL         *string `json:"url" validate:"omitnil,url"`
	ShortCode   *string `json:"shortCode" validate:"omitnil,alias"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	Owner       *string `json:"owner" validate:"omitnil,max=255"`
}

func (req updateLinkRequest) toEntity() entity.LinkUpdate {
	return entity.LinkUpdate{
		URL:         req.URL,
		ShortCode:   req.ShortCode,
		Description: req.Description,
		Owner:       req.Owner,
	}
}

// linkResponse represents a link as returned by the API.
type linkResponse struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	ShortCode   string    `json:"shortCode"`
	Description *string   `json:"description"`
	Visits      int64     `json:"visits"`
	Owner       *string   `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toLinkResponse(link *entity.Link) linkResponse {
	return linkResponse{
		ID:          link.ID,
		URL:         link.URL,
		ShortCode:   link.ShortCode,
		Description: link.Description,
		Visits:      link.Visits,
		Owner:       link.Owner,
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
	}
}

type pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

type linkPageResponse struct {
	Data       []linkResponse `json:"data"`
	Pagination pagination     `json:"pagination"`
}

func toLinkPageResponse(page *entity.LinkPage, pageNum, limit int) linkPageResponse {
	data := make([]linkResponse, len(page.Links))
	for i := range page.Links {
		data[i] = toLinkResponse(&page.Links[i])
	}

	return linkPageResponse{
		Data: data,
		Pagination: pagination{
			Total:      page.Total,
			Page:       pageNum,
			Limit:      limit,
			TotalPages: (page.Total + int64(limit) - 1) / int64(limit),
		},
	}
}

type searchResultResponse struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	ShortCode   string    `json:"shortCode"`
	Description *string   `json:"description"`
	Visits      int64     `json:"visits"`
	CreatedAt   time.Time `json:"createdAt"`
	Similarity  float64   `json:"similarity"`
}

func toSearchResponse(results []entity.SearchResult) []searchResultResponse {
	resp := make([]searchResultResponse, len(results))
	for i, res := range results {
		resp[i] = searchResultResponse{
			ID:          res.ID,
			URL:         res.URL,
			ShortCode:   res.ShortCode,
			Description: res.Description,
			Visits:      res.Visits,
			CreatedAt:   res.CreatedAt,
			Similarity:  res.Similarity,
		}
	}
	return resp
}

type dailyCountResponse struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

func toDailyResponse(counts []entity.DailyCount) []dailyCountResponse {
	resp := make([]dailyCountResponse, len(counts))
	for i, dc := range counts {
		resp[i] = dailyCountResponse{Date: dc.Date, Count: dc.Count}
	}
	return resp
}

type aggregatedClicksResponse struct {
	Range       entity.Range         `json:"range"`
	DailyClicks []dailyCountResponse `json:"dailyClicks"`
	TotalClicks int64                `json:"totalClicks"`
}

type linkAnalyticsResponse struct {
	LinkID      int64                `json:"linkId"`
	Range       entity.Range         `json:"range"`
	TotalVisits int64                `json:"totalVisits"`
	DailyVisits []dailyCountResponse `json:"dailyVisits"`
}

type linkUsageResponse struct {
	linkResponse
	TotalVisits   int64 `json:"totalVisits"`
	VisitsInRange int64 `json:"visitsInRange"`
}

type usageReportResponse struct {
	Links []linkUsageResponse `json:"links"`
	Range entity.Range        `json:"range"`
	Limit int                 `json:"limit"`
}

func toUsageReportResponse(report *entity.UsageReport) usageReportResponse {
	links := make([]linkUsageResponse, len(report.Links))
	for i := range report.Links {
		u := &report.Links[i]
		links[i] = linkUsageResponse{
			linkResponse:  toLinkResponse(&u.Link),
			TotalVisits:   u.TotalVisits(),
			VisitsInRange: u.VisitsInRange,
		}
	}

	return usageReportResponse{
		Links: links,
		Range: report.Range,
		Limit: report.Limit,
	}
}

type metadataResponse struct {
	OGImage *string `json:"ogImage"`
}

// validationError represents an individual validation error.
type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse represents a structured error response.
type errorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  []validationError `json:"errors,omitempty"`
}

func newErrorResponse(msg string) errorResponse {
	return errorResponse{
		Status:  statusError,
		Message: msg,
	}
}

// Predefined error responses for common scenarios.
var (
	emptyRequestBodyResponse   = newErrorResponse("empty request body")
	invalidRequestBodyResponse = newErrorResponse("invalid request body")
	serverErrorResponse        = newErrorResponse("server error occurred")
)

// messageForTag returns a user-friendly message based on the validation tag.
func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "url":
		return "invalid url"
	case "alias":
		return "must be at least 2 characters, without '/' and not starting with '-'"
	case "max":
		return "value is too long"
	default:
		return "invalid value"
	}
}

// getValidationErrors processes validation errors and returns a list of validationError.
func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}

// validationErrorResponse constructs an errorResponse for validation errors.
func validationErrorResponse(err error) errorResponse {
	return errorResponse{
		Status:  statusError,
		Message: "validation error",
		Errors:  getValidationErrors(err),
	}
}
