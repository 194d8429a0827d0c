package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/memoru/internal/models"
)

func jsonBody(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return data, nil
}

func cardPath(id string) string {
	return "/cards/" + url.PathEscape(id)
}

// ListCards returns the user's cards.
func (c *Client) ListCards(ctx context.Context) (*models.CardList, error) {
	return Do[models.CardList](ctx, c, "/cards", RequestOptions{})
}

func (c *Client) GetCard(ctx context.Context, id string) (*models.Card, error) {
	return Do[models.Card](ctx, c, cardPath(id), RequestOptions{})
}

func (c *Client) CreateCard(ctx context.Context, req models.CreateCardRequest) (*models.Card, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	return Do[models.Card](ctx, c, "/cards", RequestOptions{Method: http.MethodPost, Body: body})
}

func (c *Client) UpdateCard(ctx context.Context, id string, req models.UpdateCardRequest) (*models.Card, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	return Do[models.Card](ctx, c, cardPath(id), RequestOptions{Method: http.MethodPut, Body: body})
}

// DeleteCard removes a card. The server answers 204.
func (c *Client) DeleteCard(ctx context.Context, id string) error {
	return c.Request(ctx, cardPath(id), RequestOptions{Method: http.MethodDelete}, nil)
}

// GenerateCards asks the server to draft cards from free text. Nothing is saved.
func (c *Client) GenerateCards(ctx context.Context, req models.GenerateCardsRequest) (*models.GenerateCardsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	return Do[models.GenerateCardsResponse](ctx, c, "/cards/generate", RequestOptions{Method: http.MethodPost, Body: body})
}

// DueCards returns up to limit cards due for review. A non-positive limit uses the server default.
func (c *Client) DueCards(ctx context.Context, limit int) (*models.DueCardsResponse, error) {
	endpoint := "/cards/due"
	if limit > 0 {
		endpoint += "?limit=" + strconv.Itoa(limit)
	}
	return Do[models.DueCardsResponse](ctx, c, endpoint, RequestOptions{})
}

// DueCount returns the number of cards due now.
func (c *Client) DueCount(ctx context.Context) (int, error) {
	resp, err := c.DueCards(ctx, 1)
	if err != nil {
		return 0, err
	}
	if resp == nil {
		return 0, nil
	}
	return resp.TotalDueCount, nil
}
