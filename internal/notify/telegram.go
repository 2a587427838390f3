package notify

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"
)

// telegramAdapter sends through a telebot Bot built offline, so no getMe
// round trip happens at load time.
type telegramAdapter struct {
	cfg     ClientConfig
	bot     *tele.Bot
	limiter *rate.Limiter
}

// chatRef addresses a chat by numeric id or @username.
type chatRef string

func (c chatRef) Recipient() string { return string(c) }

func newTelegramAdapter(cfg ClientConfig, hc *http.Client) (Adapter, error) {
	var tr http.RoundTripper
	if hc != nil {
		tr = hc.Transport
	}
	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.AccessToken,
		URL:     cfg.APIURL,
		Client:  &http.Client{Transport: tr, Timeout: cfg.Timeout},
		Offline: true,
	})
	if err != nil {
		return nil, err
	}
	return &telegramAdapter{cfg: cfg, bot: bot, limiter: newLimiter(cfg.RatePerSec)}, nil
}

func (a *telegramAdapter) Send(ctx context.Context, to RecipientSet, message string) []Result {
	out := make([]Result, 0, to.Len())
	for _, id := range to.Individuals {
		out = append(out, errResult(a.cfg.Name, id, ClassIndividual, invalidEventError{msg: "telegram recipients are chats; use groups"}))
	}
	for _, chat := range to.Groups {
		if err := a.send(ctx, chat, message); err != nil {
			out = append(out, errResult(a.cfg.Name, chat, ClassGroup, err))
			continue
		}
		out = append(out, okResult(a.cfg.Name, chat, ClassGroup))
	}
	return out
}

// send runs the blocking telebot call and gives up when ctx ends. The
// http.Client timeout bounds the abandoned call.
func (a *telegramAdapter) send(ctx context.Context, chat, message string) error {
	if err := wait(ctx, a.limiter); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		_, err := a.bot.Send(chatRef(chat), message)
		done <- err
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err == nil {
			return nil
		}
		var te *tele.Error
		if errors.As(err, &te) {
			return &BackendError{Status: te.Code, Body: te.Description}
		}
		var ue *url.Error
		if IsTimeout(err) || errors.As(err, &ue) {
			return err
		}
		// API-level rejection telebot did not map to a typed error.
		return &BackendError{Body: err.Error()}
	}
}
