package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/Prikur76/quiz-bots/internal/config"
	"github.com/Prikur76/quiz-bots/internal/domain"
	"github.com/Prikur76/quiz-bots/internal/engine"
)

const userKeyPrefix = "tg_user_"

const genericErrorText = "Что-то пошло не так. Попробуйте ещё раз."

// Bot adapts Telegram updates to engine calls: it extracts the user key and
// text, invokes the engine, and renders the reply with a reply keyboard.
// All quiz vocabulary lives in the engine; this layer only moves messages.
type Bot struct {
	bot    *tele.Bot
	engine *engine.Engine
	log    *slog.Logger
	ctx    context.Context
}

func New(cfg config.TelegramConfig, eng *engine.Engine, log *slog.Logger) (*Bot, error) {
	timeout := config.TTLDuration(cfg.LongPollTimeout, 10*time.Second)
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}

	bot := &Bot{bot: b, engine: eng, log: log, ctx: context.Background()}
	b.Handle("/start", bot.handleText)
	b.Handle("/cancel", bot.handleText)
	b.Handle(tele.OnText, bot.handleText)
	return bot, nil
}

// Run starts long polling and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	go func() {
		<-ctx.Done()
		b.bot.Stop()
	}()
	b.log.Info("telegram bot started", "username", b.bot.Me.Username)
	b.bot.Start()
	return nil
}

func (b *Bot) handleText(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	// typing indicator is an explicit pre-hook around the engine call,
	// not part of the quiz logic
	if err := c.Notify(tele.Typing); err != nil {
		b.log.Debug("typing notify failed", "err", err)
	}

	msg := domain.Message{
		UserKey:     fmt.Sprintf("%s%d", userKeyPrefix, sender.ID),
		DisplayName: sender.FirstName,
		Text:        c.Text(),
	}
	reply, err := b.engine.Handle(b.ctx, msg)
	if err != nil {
		b.log.Error("handle message", "user", msg.UserKey, "err", err)
		return c.Send(genericErrorText)
	}
	return c.Send(reply.Text, replyMarkup(reply))
}

func replyMarkup(reply domain.Reply) *tele.ReplyMarkup {
	if reply.RemoveKeyboard || len(reply.Keyboard) == 0 {
		return &tele.ReplyMarkup{RemoveKeyboard: true}
	}
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	buttons := make([]tele.Btn, 0, len(reply.Keyboard))
	for _, label := range reply.Keyboard {
		buttons = append(buttons, markup.Text(label))
	}
	markup.Reply(markup.Row(buttons...))
	return markup
}
