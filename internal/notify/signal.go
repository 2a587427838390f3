package notify

import (
	"context"
	"net/http"
)

// signalAdapter talks to signal-cli-rest-api. Individuals and groups are
// sent as two separate calls.
type signalAdapter struct {
	cfg  ClientConfig
	http httpSender
}

func newSignalAdapter(cfg ClientConfig, hc *http.Client) (Adapter, error) {
	return &signalAdapter{cfg: cfg, http: newHTTPSender(cfg, hc)}, nil
}

type signalSendRequest struct {
	Message    string   `json:"message"`
	Number     string   `json:"number"`
	Recipients []string `json:"recipients"`
}

func (a *signalAdapter) Send(ctx context.Context, to RecipientSet, message string) []Result {
	out := make([]Result, 0, to.Len())
	if len(to.Individuals) > 0 {
		err := a.post(ctx, to.Individuals, message)
		out = append(out, resultsFor(a.cfg.Name, RecipientSet{Individuals: to.Individuals}, err)...)
	}
	if len(to.Groups) > 0 {
		err := a.post(ctx, to.Groups, message)
		out = append(out, resultsFor(a.cfg.Name, RecipientSet{Groups: to.Groups}, err)...)
	}
	return out
}

func (a *signalAdapter) post(ctx context.Context, recipients []string, message string) error {
	return a.http.do(ctx, http.MethodPost, a.cfg.APIURL+"/v2/send", "", signalSendRequest{
		Message:    message,
		Number:     a.cfg.Sender,
		Recipients: recipients,
	})
}
