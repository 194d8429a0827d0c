package apiclient

import (
	"context"
	"net/http"

	"github.com/desertthunder/memoru/internal/models"
)

func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	return Do[models.User](ctx, c, "/users/me", RequestOptions{})
}

func (c *Client) UpdateSettings(ctx context.Context, req models.UpdateSettingsRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	return Do[models.User](ctx, c, "/users/me/settings", RequestOptions{Method: http.MethodPut, Body: body})
}

// LinkLine links the LINE account identified by the id token.
func (c *Client) LinkLine(ctx context.Context, req models.LinkLineRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	return Do[models.User](ctx, c, "/users/link-line", RequestOptions{Method: http.MethodPost, Body: body})
}

func (c *Client) UnlinkLine(ctx context.Context) (*models.User, error) {
	return Do[models.User](ctx, c, "/users/me/unlink-line", RequestOptions{Method: http.MethodPost})
}
