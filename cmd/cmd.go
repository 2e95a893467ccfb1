// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

const defaultConfigPath = "config.toml"

// newApp builds the root command.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "transx",
		Usage:   "Upload, translate and export novels with a chapter translation server",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Translation server base URL (overrides server.base_url)",
				Sources: cli.EnvVars("TRANSX_SERVER"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write the default configuration file",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// identityCommand shows or resets the identity cookie.
func identityCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "identity",
		Usage: "Show the identity cookie sent to the server",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "Discard the stored identity and create a new one",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Identity,
	}
}

// uploadCommand uploads source text and prints the resulting chapters.
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "upload",
		Usage: "Upload a file or pasted text and split it into chapters",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "text",
				Aliases: []string{"t"},
				Usage:   "Text to upload when no file is given (- reads stdin)",
			},
		},
		Action: r.Upload,
	}
}

// chaptersCommand renders the chapter list.
func chaptersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "chapters",
		Aliases: []string{"ls"},
		Usage:   "List chapters with translation snippets",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the chapter view as JSON",
			},
		},
		Action: r.Chapters,
	}
}

// statusCommand prints translation progress.
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show translation progress",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Keep polling until interrupted",
			},
			&cli.DurationFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Polling interval (default from watch.interval_seconds)",
			},
		},
		Action: r.Status,
	}
}

// translateCommand requests translation of a chapter range.
func translateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "translate",
		Usage: "Translate an inclusive, 1-based range of chapters",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "start",
				Usage:    "First chapter to translate",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "end",
				Usage:    "Last chapter to translate",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "keys",
				Aliases: []string{"k"},
				Usage:   "Comma separated API keys (default from config or TRANSX_API_KEYS)",
			},
			&cli.StringFlag{
				Name:    "prompt",
				Aliases: []string{"p"},
				Usage:   "Prompt template (default from config)",
			},
		},
		Action: r.Translate,
	}
}

// exportCommand exports translated chapters.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export translated chapters as an EPUB or a local file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "title",
				Usage: "Book title (prompted for when omitted)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: epub, md, txt or csv",
				Value:   "epub",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default from export.output_dir)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the EPUB download in the browser instead of saving it",
			},
		},
		Action: r.Export,
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the translation server",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive TUI",
		Action:  r.TUI,
	}
}
