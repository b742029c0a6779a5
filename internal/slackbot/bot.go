// Package slackbot exposes the answer pipeline in Slack over Socket
// Mode. DMs are answered directly; channel messages only when the bot
// is mentioned.
package slackbot

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

const respondedMaxAge = 1 * time.Hour

var mentionRe = regexp.MustCompile(`<@([A-Z0-9]+)(?:\|[^>]+)?>`)

// Answerer is implemented by answer.Service.
type Answerer interface {
	Answer(ctx context.Context, question string) string
}

// Bot wires Slack events to the answer pipeline. Message timestamps are
// remembered for an hour so Slack's event redeliveries do not produce
// duplicate replies.
type Bot struct {
	api       *slack.Client
	client    *socketmode.Client
	answerer  Answerer
	botUserID string
	log       *slog.Logger

	respondedMu sync.Mutex
	responded   map[string]time.Time
}

func New(log *slog.Logger, cfg *Config, answerer Answerer) (*Bot, error) {
	api := slack.New(cfg.BotToken, slack.OptionAppLevelToken(cfg.AppToken))

	auth, err := api.AuthTest()
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:       api,
		client:    socketmode.New(api),
		answerer:  answerer,
		botUserID: auth.UserID,
		log:       log.With("component", "slackbot"),
		responded: make(map[string]time.Time),
	}, nil
}

// Run processes events until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	go func() {
		if err := b.client.RunContext(ctx); err != nil && ctx.Err() == nil {
			b.log.Error("socket mode client stopped", "error", err)
		}
	}()
	go b.cleanupLoop(ctx)

	b.log.Info("slack bot running", "bot_user_id", b.botUserID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-b.client.Events:
			if !ok {
				return nil
			}
			b.handleEvent(ctx, evt)
		}
	}
}

func (b *Bot) handleEvent(ctx context.Context, evt socketmode.Event) {
	if evt.Type != socketmode.EventTypeEventsAPI {
		return
	}
	if evt.Request != nil {
		b.client.Ack(*evt.Request)
	}

	apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
	if !ok {
		return
	}

	switch ev := apiEvent.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		b.reply(ctx, ev.Channel, ev.TimeStamp, ev.ThreadTimeStamp, ev.Text)
	case *slackevents.MessageEvent:
		if ev.BotID != "" || ev.User == b.botUserID || ev.SubType != "" {
			return
		}
		// Channel traffic is handled via the mention event.
		if ev.ChannelType != "im" {
			return
		}
		b.reply(ctx, ev.Channel, ev.TimeStamp, ev.ThreadTimeStamp, ev.Text)
	}
}

func (b *Bot) reply(ctx context.Context, channel, ts, threadTS, text string) {
	key := channel + "/" + ts
	if b.hasResponded(key) {
		b.log.Debug("duplicate event, skipping", "key", key)
		return
	}
	b.markResponded(key)

	question := strings.TrimSpace(mentionRe.ReplaceAllString(text, ""))
	if question == "" {
		return
	}

	start := time.Now()
	response := b.answerer.Answer(ctx, question)

	replyTS := threadTS
	if replyTS == "" {
		replyTS = ts
	}
	_, _, err := b.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(response, false),
		slack.MsgOptionTS(replyTS),
	)
	if err != nil {
		b.log.Error("failed to post reply", "channel", channel, "error", err)
		return
	}

	messagesTotal.Inc()
	b.log.Info("replied", "channel", channel, "duration", time.Since(start))
}

func (b *Bot) hasResponded(key string) bool {
	b.respondedMu.Lock()
	defer b.respondedMu.Unlock()
	_, ok := b.responded[key]
	return ok
}

func (b *Bot) markResponded(key string) {
	b.respondedMu.Lock()
	defer b.respondedMu.Unlock()
	b.responded[key] = time.Now()
}

func (b *Bot) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			b.respondedMu.Lock()
			for key, at := range b.responded {
				if now.Sub(at) > respondedMaxAge {
					delete(b.responded, key)
				}
			}
			b.respondedMu.Unlock()
		}
	}
}
