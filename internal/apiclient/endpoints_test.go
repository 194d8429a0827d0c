package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/memoru/internal/models"
	"github.com/desertthunder/memoru/internal/shared"
)

type recorded struct {
	method string
	path   string
	query  string
	body   map[string]any
}

// recordingServer replies with the canned body for each "METHOD path" key and records every request.
func recordingServer(t *testing.T, routes map[string]string) (*Client, *[]recorded) {
	t.Helper()
	var reqs []recorded
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.EscapedPath(), query: r.URL.RawQuery}
		json.NewDecoder(r.Body).Decode(&rec.body)
		reqs = append(reqs, rec)

		body, ok := routes[r.Method+" "+r.URL.EscapedPath()]
		switch {
		case !ok:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Not found"}`))
		case body == "":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		}
	}))
	t.Cleanup(server.Close)

	c := New(Options{BaseURL: server.URL + "/api"})
	c.SetAccessToken("token")
	return c, &reqs
}

func TestCardEndpoints(t *testing.T) {
	ctx := context.Background()
	card := `{"card_id":"c1","user_id":"u1","front":"Q","back":"A","tags":["go"],"interval":1,"ease_factor":2.5,"repetitions":0,"created_at":"2025-01-01T00:00:00Z"}`

	t.Run("ListCards", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"GET /api/cards": `{"cards":[` + card + `],"total":1}`,
		})

		list, err := c.ListCards(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if list.Total != 1 || len(list.Cards) != 1 || list.Cards[0].CardID != "c1" {
			t.Errorf("unexpected list %+v", list)
		}
		if len(*reqs) != 1 {
			t.Errorf("expected 1 request, got %d", len(*reqs))
		}
	})

	t.Run("GetCard Escapes Id", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"GET /api/cards/a%2Fb": card,
		})

		got, err := c.GetCard(ctx, "a/b")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.CardID != "c1" {
			t.Errorf("unexpected card %+v", got)
		}
		if (*reqs)[0].path != "/api/cards/a%2Fb" {
			t.Errorf("expected escaped path, got %s", (*reqs)[0].path)
		}
	})

	t.Run("GetCard Not Found", func(t *testing.T) {
		c, _ := recordingServer(t, map[string]string{})

		_, err := c.GetCard(ctx, "missing")
		if StatusCode(err) != http.StatusNotFound {
			t.Errorf("expected 404, got %v", err)
		}
		if err.Error() != "Not found" {
			t.Errorf("expected server message, got %q", err.Error())
		}
	})

	t.Run("CreateCard", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"POST /api/cards": card,
		})

		got, err := c.CreateCard(ctx, models.CreateCardRequest{Front: "Q", Back: "A", Tags: []string{" go ", ""}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.CardID != "c1" {
			t.Errorf("unexpected card %+v", got)
		}

		body := (*reqs)[0].body
		if body["front"] != "Q" || body["back"] != "A" {
			t.Errorf("unexpected body %v", body)
		}
		if tags, _ := body["tags"].([]any); len(tags) != 1 || tags[0] != "go" {
			t.Errorf("expected normalized tags, got %v", body["tags"])
		}
	})

	t.Run("CreateCard Validation Skips Network", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{})

		_, err := c.CreateCard(ctx, models.CreateCardRequest{Front: "Q"})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if len(*reqs) != 0 {
			t.Errorf("expected no requests, got %d", len(*reqs))
		}
	})

	t.Run("UpdateCard", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"PUT /api/cards/c1": card,
		})

		back := "A2"
		if _, err := c.UpdateCard(ctx, "c1", models.UpdateCardRequest{Back: &back}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		body := (*reqs)[0].body
		if _, ok := body["front"]; ok {
			t.Error("unset fields should be omitted")
		}
		if body["back"] != "A2" {
			t.Errorf("unexpected body %v", body)
		}
	})

	t.Run("DeleteCard", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"DELETE /api/cards/c1": "",
		})

		if err := c.DeleteCard(ctx, "c1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if (*reqs)[0].method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", (*reqs)[0].method)
		}
	})

	t.Run("GenerateCards", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"POST /api/cards/generate": `{"generated_cards":[{"front":"f","back":"b","suggested_tags":["t"]}],"generation_info":{"input_length":20,"model_used":"m","processing_time_ms":5}}`,
		})

		resp, err := c.GenerateCards(ctx, models.GenerateCardsRequest{InputText: "a long enough input text"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(resp.GeneratedCards) != 1 || resp.GenerationInfo.ModelUsed != "m" {
			t.Errorf("unexpected response %+v", resp)
		}

		body := (*reqs)[0].body
		if body["card_count"] != float64(models.DefaultCardCount) || body["difficulty"] != "medium" || body["language"] != "ja" {
			t.Errorf("expected defaults in body, got %v", body)
		}
	})

	t.Run("DueCards And DueCount", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"GET /api/cards/due": `{"due_cards":[{"card_id":"c1","front":"Q","back":"A","overdue_days":2}],"total_due_count":7}`,
		})

		due, err := c.DueCards(ctx, 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(due.DueCards) != 1 || due.DueCards[0].OverdueDays != 2 {
			t.Errorf("unexpected due cards %+v", due)
		}
		if (*reqs)[0].query != "limit=20" {
			t.Errorf("expected limit=20, got %q", (*reqs)[0].query)
		}

		n, err := c.DueCount(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 7 {
			t.Errorf("expected 7 due, got %d", n)
		}
		if (*reqs)[1].query != "limit=1" {
			t.Errorf("expected limit=1, got %q", (*reqs)[1].query)
		}
	})
}

func TestReviewEndpoint(t *testing.T) {
	ctx := context.Background()
	c, reqs := recordingServer(t, map[string]string{
		"POST /api/reviews/c1": `{"card_id":"c1","grade":4,"previous":{"ease_factor":2.5,"interval":1,"repetitions":0},"updated":{"ease_factor":2.5,"interval":6,"repetitions":1,"due_date":"2025-01-07"},"reviewed_at":"2025-01-01T00:00:00Z"}`,
	})

	resp, err := c.SubmitReview(ctx, "c1", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Updated.Interval != 6 {
		t.Errorf("expected interval 6, got %d", resp.Updated.Interval)
	}
	if (*reqs)[0].body["grade"] != float64(4) {
		t.Errorf("unexpected body %v", (*reqs)[0].body)
	}

	if _, err := c.SubmitReview(ctx, "c1", 6); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for grade 6, got %v", err)
	}
	if len(*reqs) != 1 {
		t.Errorf("invalid grade should not reach the server")
	}
}

func TestUserEndpoints(t *testing.T) {
	ctx := context.Background()
	user := `{"user_id":"u1","display_name":"Aki","line_linked":true,"timezone":"Asia/Tokyo","created_at":"2025-01-01T00:00:00Z"}`
	c, reqs := recordingServer(t, map[string]string{
		"GET /api/users/me":              user,
		"PUT /api/users/me/settings":     user,
		"POST /api/users/link-line":      user,
		"POST /api/users/me/unlink-line": user,
	})

	t.Run("CurrentUser", func(t *testing.T) {
		u, err := c.CurrentUser(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.Name() != "Aki" || !u.LineLinked {
			t.Errorf("unexpected user %+v", u)
		}
	})

	t.Run("UpdateSettings", func(t *testing.T) {
		tm := "21:00"
		if _, err := c.UpdateSettings(ctx, models.UpdateSettingsRequest{NotificationTime: &tm}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		last := (*reqs)[len(*reqs)-1]
		if last.method != http.MethodPut || last.body["notification_time"] != "21:00" {
			t.Errorf("unexpected request %+v", last)
		}
	})

	t.Run("LinkLine", func(t *testing.T) {
		if _, err := c.LinkLine(ctx, models.LinkLineRequest{IDToken: "line-id-token"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		last := (*reqs)[len(*reqs)-1]
		if last.body["id_token"] != "line-id-token" {
			t.Errorf("unexpected body %v", last.body)
		}
	})

	t.Run("UnlinkLine", func(t *testing.T) {
		if _, err := c.UnlinkLine(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		last := (*reqs)[len(*reqs)-1]
		if last.path != "/api/users/me/unlink-line" || last.method != http.MethodPost {
			t.Errorf("unexpected request %+v", last)
		}
	})
}
