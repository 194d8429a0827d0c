package formatter

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/memoru/internal/models"
	"github.com/desertthunder/memoru/internal/shared"
	th "github.com/desertthunder/memoru/internal/testing"
)

func testCards() []models.Card {
	deck := "jp-basics"
	next := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []models.Card{
		{
			CardID:       "card1",
			Front:        "こんにちは",
			Back:         "hello",
			DeckID:       &deck,
			Tags:         []string{"greeting", "basic"},
			NextReviewAt: &next,
			Interval:     6,
			EaseFactor:   2.5,
			Repetitions:  2,
		},
		{
			CardID:     "card2",
			Front:      "猫",
			Back:       "cat,\nfeline",
			EaseFactor: 2.36,
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("CardsToCSV", func(t *testing.T) {
		data, err := CardsToCSV(testCards())
		if err != nil {
			t.Fatalf("CardsToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "ID,Front,Back,Deck,Tags,Next Review,Interval,Ease Factor,Repetitions") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "card1,こんにちは,hello,jp-basics,greeting;basic,2026-03-01T09:00:00Z,6,2.50,2") {
			t.Errorf("CSV missing card1 row, got: %s", output)
		}
		if !strings.Contains(output, "\"cat,\nfeline\"") {
			t.Errorf("CSV did not quote card2 back, got: %s", output)
		}
	})

	t.Run("CardsToMarkdown", func(t *testing.T) {
		data, err := CardsToMarkdown("Japanese", testCards())
		if err != nil {
			t.Fatalf("CardsToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "# Japanese") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "**Cards**: 2") {
			t.Errorf("Markdown missing card count")
		}
		if !strings.Contains(output, "## 1. こんにちは") {
			t.Errorf("Markdown missing card1 heading, got: %s", output)
		}
		if !strings.Contains(output, "**Deck**: jp-basics") {
			t.Errorf("Markdown missing deck")
		}
		if !strings.Contains(output, "**Tags**: `greeting` `basic`") {
			t.Errorf("Markdown missing tags, got: %s", output)
		}
		if !strings.Contains(output, "## 2. 猫") {
			t.Errorf("Markdown missing card2 heading")
		}
	})

	t.Run("CardsToMarkdown default title", func(t *testing.T) {
		data, err := CardsToMarkdown("", nil)
		if err != nil {
			t.Fatalf("CardsToMarkdown failed: %v", err)
		}
		if !strings.HasPrefix(string(data), "# Cards\n") {
			t.Errorf("expected default title, got: %s", data)
		}
	})

	t.Run("CardsToText", func(t *testing.T) {
		data, err := CardsToText(testCards())
		if err != nil {
			t.Fatalf("CardsToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Cards: 2") {
			t.Errorf("Text missing card count")
		}
		if !strings.Contains(output, "1. こんにちは -> hello [greeting, basic]") {
			t.Errorf("Text missing card1, got: %s", output)
		}
		if !strings.Contains(output, "2. 猫 -> cat, feline\n") {
			t.Errorf("Text missing card2, got: %s", output)
		}
	})
}

func TestExportCards(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		data, err := ExportCards(testCards(), "json")
		if err != nil {
			t.Fatalf("ExportCards failed: %v", err)
		}

		var cards []models.Card
		if err := json.Unmarshal(data, &cards); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(cards) != 2 || cards[0].CardID != "card1" {
			t.Errorf("unexpected cards: %+v", cards)
		}
	})

	t.Run("empty json is an array", func(t *testing.T) {
		data, err := ExportCards(nil, "json")
		if err != nil {
			t.Fatalf("ExportCards failed: %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("expected [], got %s", data)
		}
	})

	t.Run("markdown alias", func(t *testing.T) {
		data, err := ExportCards(testCards(), "Markdown")
		if err != nil {
			t.Fatalf("ExportCards failed: %v", err)
		}
		if !strings.HasPrefix(string(data), "# Cards") {
			t.Errorf("expected markdown output, got: %s", data)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := ExportCards(testCards(), "xml")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("WithDefaultPath", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		path, err := WriteExport(testCards(), "text", "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if path != "cards.txt" {
			t.Errorf("Expected 'cards.txt', got '%s'", path)
		}

		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "Cards: 2") {
			t.Errorf("unexpected file content: %s", content)
		}
	})

	t.Run("WithCustomPath", func(t *testing.T) {
		path := t.TempDir() + "/deck.csv"

		got, err := WriteExport(testCards(), "csv", path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != path {
			t.Errorf("Expected '%s', got '%s'", path, got)
		}
		th.AssertFileExists(t, path)
	})
}
