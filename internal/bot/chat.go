package bot

import (
	"context"
	"fmt"
	"log/slog"

	conversationpkg "convbot/pkg/conversation"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"golang.org/x/time/rate"
)

const (
	PlatformDiscord  = "discord"
	PlatformTelegram = "telegram"
)

// ChatArgs is one reply to produce: the assembled transcript and the message
// to answer.
type ChatArgs struct {
	Platform   string                     `json:"platform" river:"unique"`
	ChannelID  string                     `json:"channel_id" river:"unique"`
	MessageID  string                     `json:"message_id"`
	Transcript conversationpkg.Transcript `json:"transcript"`
}

func (ChatArgs) Kind() string { return "chat" }

func (args ChatArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: 1,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}

// Responder runs a transcript through the completion endpoint and posts the
// answer. It never retries.
type Responder struct {
	Completer conversationpkg.Completer
	Limiter   *rate.Limiter
	Senders   map[string]*MessageSender
}

func (r *Responder) Respond(ctx context.Context, args ChatArgs) error {
	sender, ok := r.Senders[args.Platform]
	if !ok {
		return fmt.Errorf("no sender for platform %q", args.Platform)
	}

	err := r.Limiter.Wait(ctx)
	if err != nil {
		return err
	}

	content, err := r.Completer.Complete(ctx, args.Transcript)
	if err != nil {
		return fmt.Errorf("complete %s message %s: %w", args.Platform, args.MessageID, err)
	}

	err = sender.Send(ctx, args.ChannelID, args.MessageID, content)
	if err != nil {
		slog.ErrorContext(ctx, "Error sending message",
			slog.String("platform", args.Platform),
			slog.String("channel_id", args.ChannelID),
			slog.Any("error", err))
	}
	return nil
}

type ChatWorker struct {
	Responder *Responder
	river.WorkerDefaults[ChatArgs]
}

func (w *ChatWorker) Work(ctx context.Context, job *river.Job[ChatArgs]) error {
	return w.Responder.Respond(ctx, job.Args)
}
