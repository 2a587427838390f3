package notify

import (
	"context"
	"net/http"
	"strings"
)

// discordMaxContent is the message length limit of the channel messages endpoint.
const discordMaxContent = 2000

type discordAdapter struct {
	cfg  ClientConfig
	auth string
	http httpSender
}

func newDiscordAdapter(cfg ClientConfig, hc *http.Client) (Adapter, error) {
	return &discordAdapter{
		cfg:  cfg,
		auth: "Bot " + strings.TrimPrefix(cfg.AccessToken, "Bot "),
		http: newHTTPSender(cfg, hc),
	}, nil
}

type discordMessage struct {
	Content string `json:"content"`
}

func (a *discordAdapter) Send(ctx context.Context, to RecipientSet, message string) []Result {
	if r := []rune(message); len(r) > discordMaxContent {
		message = string(r[:discordMaxContent])
	}
	out := make([]Result, 0, to.Len())
	for _, id := range to.Individuals {
		out = append(out, errResult(a.cfg.Name, id, ClassIndividual, invalidEventError{msg: "discord does not support individual recipients"}))
	}
	for _, ch := range to.Groups {
		err := a.http.do(ctx, http.MethodPost, a.cfg.APIURL+"/channels/"+ch+"/messages", a.auth, discordMessage{Content: message})
		if err != nil {
			out = append(out, errResult(a.cfg.Name, ch, ClassGroup, err))
			continue
		}
		out = append(out, okResult(a.cfg.Name, ch, ClassGroup))
	}
	return out
}
