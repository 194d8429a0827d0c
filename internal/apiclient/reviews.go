package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/desertthunder/memoru/internal/models"
)

// SubmitReview records a 0-5 recall grade for a card.
func (c *Client) SubmitReview(ctx context.Context, cardID string, grade int) (*models.ReviewResponse, error) {
	req := models.ReviewRequest{Grade: grade}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	return Do[models.ReviewResponse](ctx, c, "/reviews/"+url.PathEscape(cardID), RequestOptions{Method: http.MethodPost, Body: body})
}
