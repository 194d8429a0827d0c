package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/memoru/internal/formatter"
	"github.com/desertthunder/memoru/internal/models"
	"github.com/desertthunder/memoru/internal/shared"
	"github.com/desertthunder/memoru/internal/tasks"
	"github.com/urfave/cli/v3"
)

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.StringArg(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return v, nil
}

// CardsList lists cards from the API, refreshing the local cache, or from the cache with --offline.
func (r *Runner) CardsList(ctx context.Context, cmd *cli.Command) error {
	var cards []models.Card

	if cmd.Bool("offline") {
		if err := r.database(); err != nil {
			return err
		}
		cached, err := r.cache.List()
		if err != nil {
			return err
		}
		cards = cached
		r.logger.Info("listing cached cards", "count", len(cards))
	} else {
		api, err := r.client(ctx)
		if err != nil {
			return err
		}
		list, err := api.ListCards(ctx)
		if err != nil {
			return err
		}
		cards = list.Cards

		if r.cache != nil {
			if err := r.cache.Replace(cards); err != nil {
				r.logger.Warn("failed to refresh card cache", "error", err)
			}
		}
	}

	if format := cmd.String("format"); format != "" {
		if out := cmd.String("output"); out != "" {
			path, err := formatter.WriteExport(cards, format, out)
			if err != nil {
				return err
			}
			return r.writePlain("✓ Exported %d cards to %s\n", len(cards), path)
		}

		data, err := formatter.ExportCards(cards, format)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(cards, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d cards:\n\n", len(cards))
	for i, c := range cards {
		r.writePlain("%d. %s\n", i+1, shared.Truncate(c.Front, 60))
		r.writePlain("   ID: %s\n", c.CardID)
		if len(c.Tags) > 0 {
			r.writePlain("   Tags: %s\n", strings.Join(c.Tags, ", "))
		}
		r.writePlain("\n")
	}
	return nil
}

// CardsGet shows one card.
func (r *Runner) CardsGet(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}

	api, err := r.client(ctx)
	if err != nil {
		return err
	}
	card, err := api.GetCard(ctx, id)
	if err != nil {
		return err
	}
	if card == nil {
		return fmt.Errorf("%w: empty response", shared.ErrAPIRequest)
	}

	if cmd.Bool("json") {
		return r.writeJSON(card, cmd.Bool("pretty"))
	}
	r.writeCard(card)
	return nil
}

// CardsCreate creates a card from flags.
func (r *Runner) CardsCreate(ctx context.Context, cmd *cli.Command) error {
	req := models.CreateCardRequest{
		Front: cmd.String("front"),
		Back:  cmd.String("back"),
		Tags:  cmd.StringSlice("tag"),
	}
	if deck := cmd.String("deck"); deck != "" {
		req.DeckID = &deck
	}

	api, err := r.client(ctx)
	if err != nil {
		return err
	}
	card, err := api.CreateCard(ctx, req)
	if err != nil {
		return err
	}
	if card == nil {
		return fmt.Errorf("%w: empty response", shared.ErrAPIRequest)
	}

	r.cacheCard(card)

	if cmd.Bool("json") {
		return r.writeJSON(card, cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Created card %s\n", card.CardID)
}

// CardsUpdate changes the fields given as flags.
func (r *Runner) CardsUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}

	var req models.UpdateCardRequest
	if cmd.IsSet("front") {
		front := cmd.String("front")
		req.Front = &front
	}
	if cmd.IsSet("back") {
		back := cmd.String("back")
		req.Back = &back
	}
	if cmd.IsSet("deck") {
		deck := cmd.String("deck")
		req.DeckID = &deck
	}
	if cmd.IsSet("tag") {
		req.Tags = cmd.StringSlice("tag")
	}

	api, err := r.client(ctx)
	if err != nil {
		return err
	}
	card, err := api.UpdateCard(ctx, id, req)
	if err != nil {
		return err
	}
	if card == nil {
		return fmt.Errorf("%w: empty response", shared.ErrAPIRequest)
	}

	r.cacheCard(card)

	if cmd.Bool("json") {
		return r.writeJSON(card, cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Updated card %s\n", card.CardID)
}

// CardsDelete deletes a card.
func (r *Runner) CardsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}

	api, err := r.client(ctx)
	if err != nil {
		return err
	}
	if err := api.DeleteCard(ctx, id); err != nil {
		return err
	}

	if r.cache != nil {
		if err := r.cache.Delete(id); err != nil {
			r.logger.Warn("failed to remove card from cache", "error", err)
		}
	}
	return r.writePlain("✓ Deleted card %s\n", id)
}

// CardsDue lists cards due for review.
func (r *Runner) CardsDue(ctx context.Context, cmd *cli.Command) error {
	var due *models.DueCardsResponse

	if cmd.Bool("offline") {
		cached, err := r.cachedDue(time.Now(), cmd.Int("limit"))
		if err != nil {
			return err
		}
		due = cached
	} else {
		api, err := r.client(ctx)
		if err != nil {
			return err
		}
		if due, err = api.DueCards(ctx, cmd.Int("limit")); err != nil {
			return err
		}
		if due == nil {
			return fmt.Errorf("%w: empty response", shared.ErrAPIRequest)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(due, cmd.Bool("pretty"))
	}

	r.writePlain("%d cards due (showing %d):\n\n", due.TotalDueCount, len(due.DueCards))
	for i, c := range due.DueCards {
		r.writePlain("%d. %s\n", i+1, shared.Truncate(c.Front, 60))
		r.writePlain("   ID: %s\n", c.CardID)
		if c.OverdueDays > 0 {
			r.writePlain("   Overdue: %d days\n", c.OverdueDays)
		}
	}
	if len(due.DueCards) == 0 && due.NextDueDate != nil {
		r.writePlain("Next card due %s\n", due.NextDueDate.Local().Format(time.RFC1123))
	}
	return nil
}

// cachedDue builds a due list from the card cache. Overdue days count whole days past the schedule.
func (r *Runner) cachedDue(now time.Time, limit int) (*models.DueCardsResponse, error) {
	if err := r.database(); err != nil {
		return nil, err
	}
	cards, err := r.cache.Due(now, 0)
	if err != nil {
		return nil, err
	}

	due := &models.DueCardsResponse{TotalDueCount: len(cards), DueCards: []models.DueCard{}}
	if limit > 0 && len(cards) > limit {
		cards = cards[:limit]
	}
	for _, c := range cards {
		item := models.DueCard{CardID: c.CardID, Front: c.Front, Back: c.Back, DeckID: c.DeckID, DueDate: c.NextReviewAt}
		if c.NextReviewAt != nil {
			item.OverdueDays = int(now.Sub(*c.NextReviewAt).Hours() / 24)
		}
		due.DueCards = append(due.DueCards, item)
	}
	r.logger.Info("listing cached due cards", "count", len(due.DueCards), "total", due.TotalDueCount)
	return due, nil
}

// CardsGenerate asks the API to draft cards from text and optionally creates them.
func (r *Runner) CardsGenerate(ctx context.Context, cmd *cli.Command) error {
	text := cmd.String("text")
	if file := cmd.String("file"); file != "" {
		if text != "" {
			return fmt.Errorf("%w: cannot specify both --text and --file", shared.ErrInvalidArgument)
		}
		data, err := shared.VerifyAndReadFile(file)
		if err != nil {
			return err
		}
		text = string(data)
	}
	if text == "" {
		return fmt.Errorf("%w: either --text or --file must be provided", shared.ErrMissingArgument)
	}

	req := models.GenerateCardsRequest{
		InputText:  text,
		CardCount:  cmd.Int("count"),
		Difficulty: cmd.String("difficulty"),
		Language:   cmd.String("language"),
	}

	api, err := r.client(ctx)
	if err != nil {
		return err
	}
	resp, err := api.GenerateCards(ctx, req)
	if err != nil {
		return err
	}

	if !cmd.Bool("save") {
		if cmd.Bool("json") {
			return r.writeJSON(resp, cmd.Bool("pretty"))
		}
		r.writePlain("Generated %d cards (%s, %dms):\n\n", len(resp.GeneratedCards), resp.GenerationInfo.ModelUsed, resp.GenerationInfo.ProcessingTimeMS)
		for i, c := range resp.GeneratedCards {
			r.writePlain("%d. %s\n   → %s\n", i+1, c.Front, c.Back)
			if len(c.SuggestedTags) > 0 {
				r.writePlain("   Tags: %s\n", strings.Join(c.SuggestedTags, ", "))
			}
		}
		return nil
	}

	reqs := make([]models.CreateCardRequest, len(resp.GeneratedCards))
	for i, c := range resp.GeneratedCards {
		reqs[i] = c.CreateRequest()
	}
	return r.runImport(ctx, cmd, reqs)
}

// CardsImport creates cards from a JSON or CSV file.
func (r *Runner) CardsImport(ctx context.Context, cmd *cli.Command) error {
	path, err := requireArg(cmd, "file")
	if err != nil {
		return err
	}

	reqs, err := tasks.ParseImportFile(path)
	if err != nil {
		return err
	}
	r.logger.Info("parsed import file", "path", path, "cards", len(reqs))
	return r.runImport(ctx, cmd, reqs)
}

func (r *Runner) runImport(ctx context.Context, cmd *cli.Command, reqs []models.CreateCardRequest) error {
	if len(reqs) == 0 {
		return r.writePlain("Nothing to import\n")
	}

	api, err := r.client(ctx)
	if err != nil {
		return err
	}

	opts := tasks.ImportOpts{Workers: r.config.Import.Workers, RateLimit: r.config.Import.RateLimit}
	if cmd.IsSet("workers") {
		opts.Workers = cmd.Int("workers")
	}
	var cache tasks.CardCacher
	if r.cache != nil {
		cache = r.cache
	}
	importer := tasks.NewImporter(api, cache, opts, r.logger)

	useJSON := cmd.Bool("json")
	progress := make(chan tasks.ProgressUpdate, len(reqs)+2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if !useJSON {
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	report, runErr := importer.Run(ctx, progress, reqs)
	close(progress)
	<-done

	if useJSON {
		if err := r.writeJSON(report, cmd.Bool("pretty")); err != nil {
			return err
		}
		return runErr
	}

	r.writePlainln("Import %s: %d created, %d failed, %d skipped in %s",
		report.BatchID, report.Succeeded, report.Failed, report.Skipped, report.Duration.Round(time.Millisecond))
	return runErr
}

func (r *Runner) writeCard(c *models.Card) {
	r.writePlainHeader(c.CardID)
	r.writePlain("Front: %s\n", c.Front)
	r.writePlain("Back:  %s\n", c.Back)
	if deck := c.Deck(); deck != "" {
		r.writePlain("Deck:  %s\n", deck)
	}
	if len(c.Tags) > 0 {
		r.writePlain("Tags:  %s\n", strings.Join(c.Tags, ", "))
	}
	if c.NextReviewAt != nil {
		r.writePlain("Next review: %s\n", c.NextReviewAt.Local().Format(time.RFC1123))
	}
	r.writePlain("Interval: %d days, ease %.2f, %d repetitions\n", c.Interval, c.EaseFactor, c.Repetitions)
}

func (r *Runner) cacheCard(c *models.Card) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Upsert([]models.Card{*c}); err != nil {
		r.logger.Warn("failed to cache card", "error", err)
	}
}
