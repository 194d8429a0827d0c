package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/memoru/internal/apiclient"
	"github.com/desertthunder/memoru/internal/models"
)

type mockCreator struct {
	mu      sync.Mutex
	created []string
	failOn  map[string]error
}

func (m *mockCreator) CreateCard(ctx context.Context, req models.CreateCardRequest) (*models.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.failOn[req.Front]; ok {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, req.Front)
	return &models.Card{CardID: "card-" + req.Front, Front: req.Front, Back: req.Back}, nil
}

type mockCacher struct {
	cards []models.Card
	err   error
}

func (m *mockCacher) Upsert(cards []models.Card) error {
	m.cards = append(m.cards, cards...)
	return m.err
}

func requests(n int) []models.CreateCardRequest {
	reqs := make([]models.CreateCardRequest, n)
	for i := range reqs {
		reqs[i] = models.CreateCardRequest{Front: fmt.Sprintf("front-%d", i), Back: "back"}
	}
	return reqs
}

func TestNewImporter(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		imp := NewImporter(&mockCreator{}, nil, ImportOpts{}, nil)
		if imp.opts.Workers != DefaultWorkers {
			t.Errorf("expected %d workers, got %d", DefaultWorkers, imp.opts.Workers)
		}
		if imp.opts.RateLimit != DefaultRateLimit {
			t.Errorf("expected rate %v, got %v", DefaultRateLimit, imp.opts.RateLimit)
		}
	})

	t.Run("caps workers", func(t *testing.T) {
		imp := NewImporter(&mockCreator{}, nil, ImportOpts{Workers: 50}, nil)
		if imp.opts.Workers != MaxWorkers {
			t.Errorf("expected %d workers, got %d", MaxWorkers, imp.opts.Workers)
		}
	})
}

func TestImporterRun(t *testing.T) {
	t.Run("imports every card", func(t *testing.T) {
		api := &mockCreator{}
		cache := &mockCacher{}
		imp := NewImporter(api, cache, ImportOpts{Workers: 3, RateLimit: 1000}, nil)

		progress := make(chan ProgressUpdate, 100)
		report, err := imp.Run(context.Background(), progress, requests(6))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.Succeeded != 6 || report.Failed != 0 || report.Skipped != 0 {
			t.Errorf("unexpected counts: %+v", report)
		}
		if report.BatchID == "" {
			t.Error("expected batch id")
		}
		if len(api.created) != 6 {
			t.Errorf("expected 6 API calls, got %d", len(api.created))
		}
		if len(cache.cards) != 6 {
			t.Errorf("expected 6 cached cards, got %d", len(cache.cards))
		}

		for i, res := range report.Results {
			if res.Index != i {
				t.Errorf("result %d has index %d", i, res.Index)
			}
			if res.Card == nil || res.Card.Front != fmt.Sprintf("front-%d", i) {
				t.Errorf("result %d out of order: %+v", i, res.Card)
			}
		}

		close(progress)
		var phases []Phase
		for u := range progress {
			phases = append(phases, u.Phase)
		}
		if len(phases) == 0 || phases[0] != CreateCards || phases[len(phases)-1] != CacheCards {
			t.Errorf("unexpected phases: %v", phases)
		}
	})

	t.Run("partial failures do not abort", func(t *testing.T) {
		api := &mockCreator{failOn: map[string]error{
			"front-1": &apiclient.HTTPError{Status: 400, Message: "bad card"},
		}}
		imp := NewImporter(api, nil, ImportOpts{Workers: 2, RateLimit: 1000}, nil)

		report, err := imp.Run(context.Background(), nil, requests(4))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Succeeded != 3 || report.Failed != 1 {
			t.Errorf("expected 3 succeeded and 1 failed, got %+v", report)
		}
		if report.Results[1].Error == nil || report.Results[1].Error.Error() != "bad card" {
			t.Errorf("expected error on result 1, got %v", report.Results[1].Error)
		}
	})

	t.Run("expired session stops the batch", func(t *testing.T) {
		api := &mockCreator{failOn: map[string]error{
			"front-0": &apiclient.SessionExpiredError{},
		}}
		imp := NewImporter(api, nil, ImportOpts{Workers: 1, RateLimit: 1000}, nil)

		report, err := imp.Run(context.Background(), nil, requests(5))
		if err == nil {
			t.Fatal("expected error")
		}
		if !errors.Is(err, apiclient.ErrSessionExpired) {
			t.Errorf("expected session expired, got %v", err)
		}
		if report.Failed < 1 {
			t.Errorf("expected a failed result, got %+v", report)
		}
		if report.Succeeded+report.Failed+report.Skipped != 5 {
			t.Errorf("counts do not add up: %+v", report)
		}
		if report.Skipped == 0 {
			t.Errorf("expected skipped cards, got %+v", report)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		imp := NewImporter(&mockCreator{}, nil, ImportOpts{RateLimit: 1000}, nil)
		report, err := imp.Run(ctx, nil, requests(3))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if report.Succeeded != 0 {
			t.Errorf("expected no cards created, got %d", report.Succeeded)
		}
	})

	t.Run("cache errors are not fatal", func(t *testing.T) {
		cache := &mockCacher{err: errors.New("disk full")}
		imp := NewImporter(&mockCreator{}, cache, ImportOpts{RateLimit: 1000}, nil)

		report, err := imp.Run(context.Background(), nil, requests(2))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Succeeded != 2 {
			t.Errorf("expected 2 succeeded, got %d", report.Succeeded)
		}
	})

	t.Run("full progress channel does not block", func(t *testing.T) {
		progress := make(chan ProgressUpdate)
		imp := NewImporter(&mockCreator{}, nil, ImportOpts{RateLimit: 1000}, nil)

		if _, err := imp.Run(context.Background(), progress, requests(3)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestPhaseString(t *testing.T) {
	tests := map[Phase]string{
		ParseInput:  "parse_input",
		CreateCards: "create_cards",
		CacheCards:  "cache_cards",
		Phase(99):   "",
	}
	for phase, want := range tests {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}

func TestParseCSV(t *testing.T) {
	t.Run("with header", func(t *testing.T) {
		in := "front,back,tags,deck\nこんにちは,hello,greeting;basic,jp-1\n猫,cat,,\n"
		reqs, err := ParseCSV(strings.NewReader(in))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reqs) != 2 {
			t.Fatalf("expected 2 cards, got %d", len(reqs))
		}
		if reqs[0].Front != "こんにちは" || reqs[0].Back != "hello" {
			t.Errorf("unexpected card: %+v", reqs[0])
		}
		if len(reqs[0].Tags) != 2 || reqs[0].Tags[1] != "basic" {
			t.Errorf("unexpected tags: %v", reqs[0].Tags)
		}
		if reqs[0].DeckID == nil || *reqs[0].DeckID != "jp-1" {
			t.Errorf("unexpected deck: %v", reqs[0].DeckID)
		}
		if reqs[1].Tags != nil || reqs[1].DeckID != nil {
			t.Errorf("expected no tags or deck: %+v", reqs[1])
		}
	})

	t.Run("without header", func(t *testing.T) {
		reqs, err := ParseCSV(strings.NewReader("a,b\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reqs) != 1 {
			t.Errorf("expected 1 card, got %d", len(reqs))
		}
	})

	t.Run("missing back", func(t *testing.T) {
		if _, err := ParseCSV(strings.NewReader("only-front\n")); err == nil {
			t.Error("expected error")
		}
	})
}

func TestParseJSON(t *testing.T) {
	reqs, err := ParseJSON(strings.NewReader(`[{"front":"a","back":"b","tags":["x"]}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reqs) != 1 || reqs[0].Front != "a" || reqs[0].Tags[0] != "x" {
		t.Errorf("unexpected result: %+v", reqs)
	}

	if _, err := ParseJSON(strings.NewReader(`{"front":"a"}`)); err == nil {
		t.Error("expected error for non-array input")
	}
}

func TestParseImportFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("unsupported extension", func(t *testing.T) {
		path := dir + "/cards.txt"
		writeFile(t, path, "a,b")
		if _, err := ParseImportFile(path); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("csv", func(t *testing.T) {
		path := dir + "/cards.csv"
		writeFile(t, path, "a,b\nc,d\n")
		reqs, err := ParseImportFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reqs) != 2 {
			t.Errorf("expected 2 cards, got %d", len(reqs))
		}
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
