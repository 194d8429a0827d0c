// package formatter provides functions to export cards to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/memoru/internal/models"
	"github.com/desertthunder/memoru/internal/shared"
)

// Format names accepted by [ExportCards].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "md"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// ParseFormat normalizes a user supplied format name.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (use csv, md, txt or json)", shared.ErrInvalidFlag, s)
	}
}

// CardsToCSV converts cards to CSV with columns: ID, Front, Back, Deck, Tags, Next Review, Interval, Ease Factor, Repetitions
//
// Tags are joined with ";" so the output can be fed back into an import.
func CardsToCSV(cards []models.Card) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Front", "Back", "Deck", "Tags", "Next Review", "Interval", "Ease Factor", "Repetitions"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, card := range cards {
		record := []string{
			card.CardID,
			card.Front,
			card.Back,
			card.Deck(),
			strings.Join(card.Tags, ";"),
			formatDate(card.NextReviewAt),
			strconv.Itoa(card.Interval),
			strconv.FormatFloat(card.EaseFactor, 'f', 2, 64),
			strconv.Itoa(card.Repetitions),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// CardsToMarkdown renders cards as a Markdown document, one section per card.
func CardsToMarkdown(title string, cards []models.Card) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Cards"
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Cards**: %d\n\n", len(cards))

	for i, card := range cards {
		fmt.Fprintf(&buf, "## %d. %s\n\n", i+1, singleLine(card.Front))
		fmt.Fprintf(&buf, "%s\n\n", card.Back)

		var meta []string
		if deck := card.Deck(); deck != "" {
			meta = append(meta, fmt.Sprintf("**Deck**: %s", deck))
		}
		if len(card.Tags) > 0 {
			tags := make([]string, len(card.Tags))
			for j, tag := range card.Tags {
				tags[j] = "`" + tag + "`"
			}
			meta = append(meta, fmt.Sprintf("**Tags**: %s", strings.Join(tags, " ")))
		}
		if card.NextReviewAt != nil {
			meta = append(meta, fmt.Sprintf("**Next review**: %s", formatDate(card.NextReviewAt)))
		}
		if len(meta) > 0 {
			buf.WriteString(strings.Join(meta, " · "))
			buf.WriteString("\n\n")
		}
	}

	return buf.Bytes(), nil
}

// CardsToText converts cards to a plain text list
func CardsToText(cards []models.Card) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Cards: %d\n\n", len(cards))
	for i, card := range cards {
		fmt.Fprintf(&buf, "%d. %s -> %s", i+1, singleLine(card.Front), singleLine(card.Back))
		if len(card.Tags) > 0 {
			fmt.Fprintf(&buf, " [%s]", strings.Join(card.Tags, ", "))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportCards renders cards in the given format (see [ParseFormat]).
func ExportCards(cards []models.Card, format string) ([]byte, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	switch f {
	case FormatCSV:
		return CardsToCSV(cards)
	case FormatMarkdown:
		return CardsToMarkdown("Cards", cards)
	case FormatText:
		return CardsToText(cards)
	default:
		if cards == nil {
			cards = []models.Card{}
		}
		return shared.MarshalJSON(cards, true)
	}
}

// WriteExport renders cards and writes them to path.
//
// Defaults to cards.{format} as the filename.
func WriteExport(cards []models.Card, format, path string) (string, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return "", err
	}
	if path == "" {
		path = "cards." + f
	}

	data, err := ExportCards(cards, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
