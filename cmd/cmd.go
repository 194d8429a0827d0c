// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/memoru/internal/models"
	"github.com/urfave/cli/v3"
)

func outputFlags(prettyDefault bool) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: prettyDefault,
		},
	}
}

// setupCommand handles setup operations for the database and configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles sign-in and session state
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Sign in through the browser",
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Delete the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the stored session",
				Flags:  outputFlags(true),
				Action: r.AuthStatus,
			},
		},
	}
}

func cardFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "front",
			Usage: "Front (question) text",
		},
		&cli.StringFlag{
			Name:  "back",
			Usage: "Back (answer) text",
		},
		&cli.StringFlag{
			Name:  "deck",
			Usage: "Deck ID",
		},
		&cli.StringSliceFlag{
			Name:    "tag",
			Aliases: []string{"t"},
			Usage:   "Tag (repeatable)",
		},
	}
}

// cardsCommand handles card operations
func cardsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "cards",
		Aliases: []string{"card"},
		Usage:   "Card operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cards",
				Flags: append(outputFlags(false),
					&cli.BoolFlag{
						Name:  "offline",
						Usage: "Read from the local cache instead of the API",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: csv, md, txt or json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the export to a file",
					},
				),
				Action: r.CardsList,
			},
			{
				Name:      "get",
				Usage:     "Show one card",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     outputFlags(true),
				Action:    r.CardsGet,
			},
			{
				Name:   "create",
				Usage:  "Create a card",
				Flags:  append(cardFlags(), outputFlags(true)...),
				Action: r.CardsCreate,
			},
			{
				Name:      "update",
				Usage:     "Update a card",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     append(cardFlags(), outputFlags(true)...),
				Action:    r.CardsUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a card",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.CardsDelete,
			},
			{
				Name:  "due",
				Usage: "List cards due for review",
				Flags: append(outputFlags(false),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of cards to return",
					},
					&cli.BoolFlag{
						Name:  "offline",
						Usage: "Read due cards from the local cache",
					},
				),
				Action: r.CardsDue,
			},
			{
				Name:  "generate",
				Usage: "Generate cards from text",
				Flags: append(outputFlags(false),
					&cli.StringFlag{
						Name:  "text",
						Usage: "Source text",
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "Read source text from a file",
					},
					&cli.IntFlag{
						Name:  "count",
						Usage: "Number of cards to generate",
						Value: models.DefaultCardCount,
					},
					&cli.StringFlag{
						Name:  "difficulty",
						Usage: "easy, medium or hard",
						Value: models.DefaultDifficulty,
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "ja or en",
						Value: models.DefaultLanguage,
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Create the generated cards",
					},
				),
				Action: r.CardsGenerate,
			},
			{
				Name:      "import",
				Usage:     "Create cards from a JSON or CSV file",
				Arguments: []cli.Argument{&cli.StringArg{Name: "file"}},
				Flags: append(outputFlags(false),
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent requests (default from config)",
					},
				),
				Action: r.CardsImport,
			},
		},
	}
}

// reviewCommand handles single reviews and the interactive session
func reviewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "review",
		Usage:     "Grade a card or start a review session",
		Arguments: []cli.Argument{&cli.StringArg{Name: "card-id"}},
		Flags: append(outputFlags(true),
			&cli.IntFlag{
				Name:    "grade",
				Aliases: []string{"g"},
				Usage:   "Recall grade from 0 (forgot) to 5 (perfect)",
			},
		),
		Action: r.Review,
		Commands: []*cli.Command{
			{
				Name:    "session",
				Aliases: []string{"tui"},
				Usage:   "Review due cards interactively",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of cards to review",
						Value: 20,
					},
				},
				Action: r.ReviewSession,
			},
		},
	}
}

// settingsCommand handles account settings
func settingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Account settings",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the current user",
				Flags:  outputFlags(true),
				Action: r.SettingsShow,
			},
			{
				Name:  "update",
				Usage: "Update notification time or timezone",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "notification-time",
						Usage: "Daily reminder time (HH:MM)",
					},
					&cli.StringFlag{
						Name:  "timezone",
						Usage: "IANA timezone, e.g. Asia/Tokyo",
					},
				},
				Action: r.SettingsUpdate,
			},
			{
				Name:  "link-line",
				Usage: "Link a LINE account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id-token",
						Usage: "LINE ID token",
					},
				},
				Action: r.SettingsLinkLine,
			},
			{
				Name:   "unlink-line",
				Usage:  "Unlink the LINE account",
				Action: r.SettingsUnlinkLine,
			},
		},
	}
}
