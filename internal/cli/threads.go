// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jeranaias/toonchat/internal/export"
	"github.com/jeranaias/toonchat/internal/model"
	"github.com/jeranaias/toonchat/internal/storage"
	"github.com/jeranaias/toonchat/internal/util"
)

// threadJSON is the --json shape of a thread summary.
type threadJSON struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt int64  `json:"updatedAt"`
	Updated   string `json:"updated"`
}

// threadDetailJSON adds the messages for threads show.
type threadDetailJSON struct {
	threadJSON
	Questions int             `json:"questions"`
	Messages  []model.Message `json:"msgs"`
}

// listTitleWidth sizes the title column of threads list to the terminal.
// The rest of the line holds the 36-cell id and the date.
func listTitleWidth() int {
	return min(max(GetTerminalWidth()-56, 12), 48)
}

func toThreadJSON(s model.ThreadSummary) threadJSON {
	return threadJSON{
		ID:        s.ID,
		Title:     s.Title,
		UpdatedAt: s.UpdatedAt,
		Updated:   s.Updated().Format(time.RFC3339),
	}
}

// HandleThreads runs the threads subcommands.
func HandleThreads(ctx context.Context, a *App, args Args) error {
	switch args.Subcommand {
	case "list", "ls":
		return a.listThreads(ctx, "threads list", a.Store.ListThreads(ctx))

	case "search", "find":
		query := strings.Join(args.Rest, " ")
		if strings.TrimSpace(query) == "" {
			return ErrMissingArgument("query", "toonchat threads search 나혼렙")
		}
		return a.listThreads(ctx, "threads search", a.Store.Search(ctx, query))

	case "show":
		return a.showThread(ctx, args)

	case "new", "create":
		return OutputJSON(a.Out, a.JSON, "threads new", func() (interface{}, error) {
			id, err := a.Store.CreateThread(ctx)
			if err != nil {
				return nil, NewCommandError("threads", "new", "could not create thread", err)
			}
			if !a.JSON {
				fmt.Fprintln(a.Out, id)
			}
			return map[string]string{"id": id}, nil
		})

	case "rename":
		if len(args.Rest) < 2 {
			return ErrMissingArgument("title", "toonchat threads rename ID 새 제목")
		}
		id, title := args.Rest[0], strings.Join(args.Rest[1:], " ")
		return OutputJSON(a.Out, a.JSON, "threads rename", func() (interface{}, error) {
			if !a.Store.Exists(ctx, id) {
				return nil, ErrNotFound("thread", id)
			}
			if err := a.Store.RenameThread(ctx, id, title); err != nil {
				return nil, NewCommandError("threads", "rename", "could not rename thread", err)
			}
			th, err := a.Store.Thread(ctx, id)
			if err != nil {
				return nil, err
			}
			a.notify("%s %s", SuccessStyle.Render("[OK]"), th.Title)
			return toThreadJSON(th.Summary()), nil
		})

	case "delete", "rm":
		if len(args.Rest) < 1 {
			return ErrMissingArgument("id", "toonchat threads delete ID")
		}
		id := args.Rest[0]
		return OutputJSON(a.Out, a.JSON, "threads delete", func() (interface{}, error) {
			if !a.Store.Exists(ctx, id) {
				return nil, ErrNotFound("thread", id)
			}
			if err := a.Store.DeleteThread(ctx, id); err != nil {
				return nil, NewCommandError("threads", "delete", "could not delete thread", err)
			}
			a.notify("%s deleted %s", SuccessStyle.Render("[OK]"), id)
			return map[string]string{"id": id}, nil
		})

	case "export":
		return a.exportThread(ctx, args)

	default:
		return NewValidationErrorWithExample("subcommand", args.Subcommand,
			"unknown threads subcommand", "toonchat threads list")
	}
}

// notify prints a human-readable confirmation unless output is JSON or
// quiet.
func (a *App) notify(format string, v ...interface{}) {
	if a.JSON || a.Quiet {
		return
	}
	fmt.Fprintf(a.Out, format+"\n", v...)
}

func (a *App) listThreads(_ context.Context, command string, threads []model.ThreadSummary) error {
	return OutputJSON(a.Out, a.JSON, command, func() (interface{}, error) {
		out := make([]threadJSON, 0, len(threads))
		for _, th := range threads {
			out = append(out, toThreadJSON(th))
		}
		if a.JSON {
			return out, nil
		}

		if len(threads) == 0 {
			a.notify("%s", DimStyle.Render("대화가 없습니다"))
			return out, nil
		}
		width := listTitleWidth()
		for _, th := range threads {
			fmt.Fprintf(a.Out, "%s  %s  %s\n",
				DimStyle.Render(th.ID),
				util.PadRight(util.TruncateWidth(th.Title, width), width),
				DimStyle.Render(th.Updated().Format("2006-01-02 15:04")))
		}
		return out, nil
	})
}

func (a *App) loadThread(ctx context.Context, id string) (*model.Thread, error) {
	th, err := a.Store.Thread(ctx, id)
	if errors.Is(err, storage.ErrThreadNotFound) {
		return nil, ErrNotFound("thread", id)
	}
	return th, err
}

func (a *App) showThread(ctx context.Context, args Args) error {
	if len(args.Rest) < 1 {
		return ErrMissingArgument("id", "toonchat threads show ID")
	}
	id := args.Rest[0]

	if a.JSON {
		return OutputJSON(a.Out, true, "threads show", func() (interface{}, error) {
			th, err := a.loadThread(ctx, id)
			if err != nil {
				return nil, err
			}
			return threadDetailJSON{
				threadJSON: toThreadJSON(th.Summary()),
				Questions:  th.UserMessageCount(),
				Messages:   th.Messages,
			}, nil
		})
	}

	th, err := a.loadThread(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, TitleStyle.Render(th.Title))
	fmt.Fprintln(a.Out, DimStyle.Render(fmt.Sprintf("질문 %d개 · %s",
		th.UserMessageCount(), th.Updated().Format("2006-01-02 15:04"))))
	fmt.Fprintln(a.Out, RenderSeparator(util.StringWidth(th.Title)+4))
	printTranscript(a.Out, th.Messages, a.Config.UI.ShowChunks, a.Config.UI.ChunkLimit)
	return nil
}

func (a *App) exportThread(ctx context.Context, args Args) error {
	if len(args.Rest) < 1 {
		return ErrMissingArgument("id", "toonchat threads export ID --format md")
	}
	format := args.Format
	if format == "" {
		format = "md"
	}

	opts := export.DefaultOptions()
	opts.IncludeChunks = a.Config.UI.ShowChunks
	opts.ChunkLimit = a.Config.UI.ChunkLimit
	opts.OutputDir = args.Output

	exp, err := export.New(format, opts)
	if err != nil {
		return NewValidationErrorWithExample("format", format, err.Error(), "--format md|json|txt")
	}

	th, err := a.loadThread(ctx, args.Rest[0])
	if err != nil {
		return err
	}

	if args.Output == "" {
		data, err := exp.Export(th)
		if err != nil {
			return NewCommandError("threads", "export", "could not render thread", err)
		}
		_, err = a.Out.Write(data)
		return err
	}

	path, err := export.ExportToFile(th, exp, opts)
	if err != nil {
		return NewCommandError("threads", "export", "could not write file", err)
	}
	if a.JSON {
		return NewJSONResponse("threads export", map[string]string{"id": th.ID, "path": path}).Write(a.Out)
	}
	a.notify("%s %s", SuccessStyle.Render("[OK]"), path)
	return nil
}

// printTranscript writes messages in reading order.
func printTranscript(w io.Writer, msgs []model.Message, showChunks bool, chunkLimit int) {
	for i, m := range msgs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printMessage(w, m, showChunks, chunkLimit)
	}
}

func printMessage(w io.Writer, m model.Message, showChunks bool, chunkLimit int) {
	header := RenderSpeaker(m.Role) + " " + DimStyle.Render(m.Time)
	if badge := RenderBadge(m.Intent); badge != "" {
		header += " " + badge
	}
	fmt.Fprintln(w, header)

	text := m.Text
	if m.Role == model.RoleBot && strings.HasPrefix(text, model.FailurePrefix) {
		text = ErrorStyle.Render(text)
	}
	fmt.Fprintln(w, text)

	if showChunks && m.Role == model.RoleBot {
		for _, c := range m.Chunks {
			c = strings.Join(strings.Fields(c), " ")
			fmt.Fprintln(w, DimStyle.Render("  · "+model.PreviewChunk(c, chunkLimit)))
		}
	}
}
