package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/db"
	"github.com/tendhq/tend/internal/errors"
	"github.com/tendhq/tend/internal/ops"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(store *db.Store, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "tend",
		Usage:   "Relationship and task tending from your notes",
		Version: Version,
		Commands: []*cli.Command{
			detectCmd(cfg),
			triageCmd(store, cfg),
			scanCmd(store, cfg),
			interactionCmd(store, cfg),
			recommendCmd(store, cfg),
			recommendationsCmd(store, cfg),
			addPersonCmd(store, cfg),
			personCmd(store, cfg),
			peopleCmd(store, cfg),
			tasksCmd(store, cfg),
			reviewsCmd(store, cfg),
			resolveCmd(store, cfg),
			linkCmd(store, cfg),
			linksCmd(store, cfg),
			logCmd(store, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// sourceFlags are shared by the text-scanning commands.
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Originating file path"},
		&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Source category (meeting_prep, meeting, one_on_one, planning, journal)"},
		&cli.StringFlag{Name: "meeting-type", Aliases: []string{"m"}, Usage: "Meeting type (leadership, strategic_planning, ...)"},
	}
}

// detectCmd creates the detect command.
func detectCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "detect",
		Usage: "Scan text for people and tasks without writing anything (reads text from stdin)",
		Flags: sourceFlags(),
		Action: func(c *cli.Context) error {
			text, err := requireStdin()
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Detect(c.Context, cfg, ops.DetectInput{
				Text:        text,
				File:        c.String("file"),
				Category:    c.String("category"),
				MeetingType: c.String("meeting-type"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// triageCmd creates the triage command.
func triageCmd(store *db.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "triage",
		Usage: "Scan text and route every candidate (reads text from stdin)",
		Flags: sourceFlags(),
		Action: func(c *cli.Context) error {
			text, err := requireStdin()
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Triage(c.Context, store, cfg, ops.TriageInput{
				Text:        text,
				File:        c.String("file"),
				Category:    c.String("category"),
				MeetingType: c.String("meeting-type"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// scanCmd creates the scan command.
func scanCmd(store *db.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Triage one or more note files in a single pass",
		ArgsUsage: "<file> [file ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Source category applied to every file"},
			&cli.StringFlag{Name: "meeting-type", Aliases: []string{"m"}, Usage: "Meeting type applied to every file"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("at least one file is required"))
			}

			docs := make([]ops.ScanDocument, 0, c.NArg())
			for _, path := range c.Args().Slice() {
				data, err := os.ReadFile(path)
				if err != nil {
					return outputError(errors.NewInvalidRequest(fmt.Sprintf("read %s: %v", path, err)))
				}
				docs = append(docs, ops.ScanDocument{
					Text:        string(data),
					File:        path,
					Category:    c.String("category"),
					MeetingType: c.String("meeting-type"),
				})
			}

			output, err := ops.Scan(c.Context, store, cfg, ops.ScanInput{Documents: docs})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// interactionCmd creates the interaction command.
func interactionCmd(store *db.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "interaction",
		Usage:     "Record an interaction with a known person",
		ArgsUsage: "<person>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: "ad_hoc", Usage: "meeting, chat, email, call, or ad_hoc"},
			&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Usage: "Quality rating 1-5"},
			&cli.StringFlag{Name: "topics", Usage: "Comma-separated topics"},
			&cli.Int64Flag{Name: "occurred-at", Usage: "Unix timestamp; omit for now"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("person key is required"))
			}

			output, err := ops.RecordInteraction(c.Context, store, cfg, ops.RecordInteractionInput{
				PersonKey:  c.Args().First(),
				Type:       c.String("type"),
				Quality:    c.Int("quality"),
				Topics:     parseList(c.String("topics")),
				OccurredAt: c.Int64("occurred-at"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// recommendCmd creates the recommend command.
func recommendCmd(store *db.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "recommend",
		Usage: "Rebuild engagement recommendations from current state",
		Action: func(c *cli.Context) error {
			output, err := ops.GenerateRecommendations(c.Context, store, cfg)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// recommendationsCmd creates the recommendations command.
func recommendationsCmd(store *db.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "recommendations",
		Usage: "List stored recommendations without regenerating",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "pending, completed, or expired"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListRecommendations(c.Context, store, cfg, ops.ListRecommendationsInput{
				Status: c.String("status"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// addPersonCmd creates the add-person command.
func addPersonCmd(store *db.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "add-person",
		Usage:     "Create a person record directly, bypassing detection",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "role", Usage: "Role title"},
			&cli.StringFlag{Name: "team", Usage: "Team or org unit"},
			&cli.StringFlag{Name: "importance", Aliases: []string{"i"}, Usage: "critical, high, medium, or low"},
			&cli.StringFlag{Name: "cadence", Usage: "weekly, biweekly, monthly, quarterly, or as_needed"},
			&cli.StringFlag{Name: "channels", Usage: "Comma-separated preferred channels"},
			&cli.StringFlag{Name: "style", Usage: "Communication style note"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("name is required"))
			}

			output, err := ops.AddPerson(c.Context, store, cfg, ops.AddPersonInput{
				Name:       strings.Join(c.Args().Slice(), " "),
				Role:       c.String("role"),
				Team:       c.String("team"),
				Importance: c.String("importance"),
				Cadence:    c.String("cadence"),
				Channels:   parseList(c.String("channels")),
				Style:      c.String("style"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// personCmd creates the person command.
func personCmd(store *db.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "person",
		Usage:     "Retrieve one person record",
		ArgsUsage: "<key-or-name>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("key is required"))
			}

			output, err := ops.GetPerson(c.Context, store, cfg, ops.GetPersonInput{
				Key: strings.Join(c.Args().Slice(), " "),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// peopleCmd creates the people command.
func peopleCmd(store *db.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "people",
		Usage: "List every person record",
		Action: func(c *cli.Context) error {
			output, err := ops.ListPeople(c.Context, store, cfg)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// tasksCmd creates the tasks command.
func tasksCmd(store *db.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "List tracked tasks, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "active, blocked, completed, or deferred"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListTasks(c.Context, store, cfg, ops.ListTasksInput{
				Status: c.String("status"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// reviewsCmd creates the reviews command.
func reviewsCmd(store *db.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "reviews",
		Usage: "List review-queue entries with their clarifying questions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "pending or completed"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListReviews(c.Context, store, cfg, ops.ListReviewsInput{
				Status: c.String("status"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// resolveCmd creates the resolve command.
func resolveCmd(store *db.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve one review entry",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "action", Aliases: []string{"a"}, Value: "dismiss", Usage: `"create" or "dismiss"`},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("review id is required"))
			}

			output, err := ops.ResolveReview(c.Context, store, cfg, ops.ResolveReviewInput{
				ID:     c.Args().First(),
				Action: c.String("action"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// linkCmd creates the link command.
func linkCmd(store *db.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "link",
		Usage:     "Tie a person to an initiative they care about",
		ArgsUsage: "<person>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "initiative", Aliases: []string{"i"}, Usage: "Initiative name", Required: true},
			&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Value: "high", Usage: "Interest level"},
			&cli.StringFlag{Name: "cadence", Value: "weekly", Usage: "Update cadence the person expects"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("person key is required"))
			}

			output, err := ops.AddLink(c.Context, store, cfg, ops.AddLinkInput{
				PersonKey:       c.Args().First(),
				Initiative:      c.String("initiative"),
				Level:           c.String("level"),
				RequiredCadence: c.String("cadence"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// linksCmd creates the links command.
func linksCmd(store *db.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "links",
		Usage:     "List a person's active interest links",
		ArgsUsage: "<person>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("person key is required"))
			}

			output, err := ops.ListLinks(c.Context, store, cfg, ops.ListLinksInput{
				PersonKey: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// logCmd creates the log command.
func logCmd(store *db.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "List discarded-candidate log entries, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum entries to return"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListDetectionLog(c.Context, store, cfg, ops.ListDetectionLogInput{
				Limit: c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if tendErr, ok := err.(*errors.TendError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", tendErr.Code, tendErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// requireStdin reads piped text from stdin.
func requireStdin() (string, error) {
	if !stdinHasData() {
		return "", errors.NewInvalidRequest("text must be piped via stdin")
	}
	text, err := readStdin()
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if text == "" {
		return "", errors.NewInvalidRequest("text is required")
	}
	return text, nil
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseList splits a comma-separated string into a slice.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			items = append(items, t)
		}
	}
	return items
}
