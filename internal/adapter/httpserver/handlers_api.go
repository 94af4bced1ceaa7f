package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/postpulse/internal/app"
	"github.com/pscheid92/postpulse/internal/domain"
	apperrors "github.com/pscheid92/postpulse/internal/platform/errors"
)

type signalRequest struct {
	Polarity   float64  `json:"polarity" validate:"gte=-1,lte=1"`
	Confidence float64  `json:"confidence" validate:"gte=0,lte=1"`
	Topics     []string `json:"topics" validate:"max=20"`
}

type recommendRequest struct {
	Topic     string         `json:"topic" validate:"max=200"`
	Hashtag   string         `json:"hashtag" validate:"max=100"`
	Posts     []string       `json:"posts" validate:"max=500"`
	Sentiment *signalRequest `json:"sentiment"`
	TopN      int            `json:"top_n" validate:"gte=0,lte=24"`
}

type evaluateRequest struct {
	recommendRequest
	AccountID    string               `json:"account_id" validate:"max=128"`
	Observations []domain.Observation `json:"observations" validate:"max=10000"`
}

type ingestRequest struct {
	Observations []app.IngestObservation `json:"observations" validate:"required,min=1,max=1000"`
}

func (s *Server) registerAPIRoutes() {
	api := s.echo.Group("/api/v1", newRateLimiter(s.config.APIRateLimit, s.config.APIRateBurst, s.metrics))
	api.POST("/accounts/:account/observations", s.handleIngestObservations)
	api.POST("/accounts/:account/recommendations", s.handleRecommend)
	api.POST("/recommendations", s.handleEvaluate)
}

// handleRecommend ranks posting windows from the account's stored history.
func (s *Server) handleRecommend(c echo.Context) error {
	account, err := s.accountParam(c)
	if err != nil {
		return err
	}

	var body recommendRequest
	if err := s.bindAndValidate(c, &body); err != nil {
		return err
	}

	req := body.toRequest()
	req.AccountID = account

	result, err := s.app.Recommend(c.Request().Context(), req)
	if err != nil {
		return serviceError(err, "failed to compute recommendations")
	}

	return writeJSON(c, http.StatusOK, result)
}

// handleEvaluate ranks posting windows from observations supplied inline. Nothing is stored or cached.
func (s *Server) handleEvaluate(c echo.Context) error {
	var body evaluateRequest
	if err := s.bindAndValidate(c, &body); err != nil {
		return err
	}

	req := body.toRequest()
	req.AccountID = body.AccountID

	result, err := s.app.Evaluate(c.Request().Context(), body.Observations, req)
	if err != nil {
		return serviceError(err, "failed to compute recommendations")
	}

	return writeJSON(c, http.StatusOK, result)
}

func (s *Server) handleIngestObservations(c echo.Context) error {
	account, err := s.accountParam(c)
	if err != nil {
		return err
	}

	var body ingestRequest
	if err := s.bindAndValidate(c, &body); err != nil {
		return err
	}

	result, err := s.app.IngestObservations(c.Request().Context(), account, body.Observations)
	if err != nil {
		return serviceError(err, "failed to store observations")
	}

	status := http.StatusOK
	if result.Accepted == 0 && len(result.Rejected) > 0 {
		status = http.StatusUnprocessableEntity
	}
	return writeJSON(c, status, result)
}

func (s *Server) accountParam(c echo.Context) (string, error) {
	account := c.Param("account")
	if err := s.validator.Var("account", account, "required,max=128,printascii"); err != nil {
		return "", err
	}
	return account, nil
}

func (s *Server) bindAndValidate(c echo.Context, body any) error {
	if err := c.Bind(body); err != nil {
		return apperrors.InvalidInput("malformed request body", err)
	}
	if err := c.Validate(body); err != nil {
		return err
	}
	return nil
}

func (r recommendRequest) toRequest() app.RecommendRequest {
	req := app.RecommendRequest{
		Topic:   r.Topic,
		Hashtag: r.Hashtag,
		Posts:   r.Posts,
		TopN:    r.TopN,
	}
	if r.Sentiment != nil {
		req.Signal = &domain.SentimentSignal{
			Polarity:   r.Sentiment.Polarity,
			Confidence: r.Sentiment.Confidence,
			Topics:     r.Sentiment.Topics,
		}
	}
	return req
}

// serviceError maps service sentinels onto client errors; anything else is a 500.
func serviceError(err error, message string) error {
	switch {
	case errors.Is(err, app.ErrAccountRequired):
		return apperrors.InvalidInput("account is required", err).WithContext("field", "account")
	case errors.Is(err, domain.ErrInvalidParams):
		return apperrors.InvalidInput("invalid parameters", err)
	case errors.Is(err, domain.ErrInvalidSignal):
		return apperrors.InvalidInput("invalid sentiment signal", err).WithContext("field", "sentiment")
	default:
		return apperrors.InternalError(message, err)
	}
}

func writeJSON(c echo.Context, status int, v any) error {
	if err := c.JSON(status, v); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
