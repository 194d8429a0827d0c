package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/memoru/internal/shared"
	"github.com/urfave/cli/v3"
)

// Review submits one grade for a card.
func (r *Runner) Review(ctx context.Context, cmd *cli.Command) error {
	cardID, err := requireArg(cmd, "card-id")
	if err != nil {
		return err
	}
	if !cmd.IsSet("grade") {
		return fmt.Errorf("%w: --grade", shared.ErrMissingArgument)
	}

	api, err := r.client(ctx)
	if err != nil {
		return err
	}
	review, err := api.SubmitReview(ctx, cardID, cmd.Int("grade"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(review, cmd.Bool("pretty"))
	}

	r.writePlain("✓ Reviewed %s with grade %d\n", review.CardID, review.Grade)
	r.writePlain("Interval: %d → %d days\n", review.Previous.Interval, review.Updated.Interval)
	r.writePlain("Ease:     %.2f → %.2f\n", review.Previous.EaseFactor, review.Updated.EaseFactor)
	if review.Updated.DueDate != nil {
		r.writePlain("Next review: %s\n", *review.Updated.DueDate)
	}
	return nil
}
