package vk

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Prikur76/quiz-bots/internal/config"
	"github.com/Prikur76/quiz-bots/internal/domain"
	"github.com/Prikur76/quiz-bots/internal/engine"
)

const userKeyPrefix = "vk_user_"

const genericErrorText = "Что-то пошло не так. Попробуйте ещё раз."

// Bot adapts VK long-poll events to engine calls.
type Bot struct {
	client *Client
	poller *Poller
	engine *engine.Engine
	log    *slog.Logger
}

func New(cfg config.VKConfig, eng *engine.Engine, log *slog.Logger) *Bot {
	client := NewClient(cfg.Token, cfg.APIVersion)
	return &Bot{
		client: client,
		poller: NewPoller(client, cfg.GroupID, cfg.Wait, log),
		engine: eng,
		log:    log,
	}
}

// Run blocks on the long-poll loop until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("vk bot started")
	return b.poller.Run(ctx, b.handleMessage)
}

func (b *Bot) handleMessage(ctx context.Context, msg IncomingMessage) {
	in := domain.Message{
		UserKey: fmt.Sprintf("%s%d", userKeyPrefix, msg.FromID),
		Text:    msg.Text,
	}
	reply, err := b.engine.Handle(ctx, in)
	if err != nil {
		b.log.Error("handle message", "user", in.UserKey, "err", err)
		if sendErr := b.client.SendMessage(ctx, msg.PeerID, genericErrorText, nil); sendErr != nil {
			b.log.Error("send failure reply", "user", in.UserKey, "err", sendErr)
		}
		return
	}
	if err := b.client.SendMessage(ctx, msg.PeerID, reply.Text, keyboardFor(reply)); err != nil {
		b.log.Error("send reply", "user", in.UserKey, "err", err)
	}
}

// keyboardFor renders the engine's keyboard request in VK terms. VK keyboards
// cannot simply be removed mid-dialog, so RemoveKeyboard collapses to a single
// start button, which is how the user re-enters the quiz.
func keyboardFor(reply domain.Reply) *Keyboard {
	if reply.RemoveKeyboard {
		return &Keyboard{
			OneTime: true,
			Buttons: [][]Button{{TextButton(engine.ButtonStart, ColorPrimary)}},
		}
	}
	if len(reply.Keyboard) == 0 {
		return nil
	}
	row := make([]Button, 0, len(reply.Keyboard))
	for _, label := range reply.Keyboard {
		row = append(row, TextButton(label, colorFor(label)))
	}
	return &Keyboard{OneTime: true, Buttons: [][]Button{row}}
}

func colorFor(label string) string {
	switch label {
	case engine.ButtonNewQuestion:
		return ColorPositive
	case engine.ButtonGiveUp:
		return ColorNegative
	default:
		return ColorSecondary
	}
}
