package notify

import (
	"context"
	"net/http"
)

const defaultWhatsAppSession = "default"

type whatsAppAdapter struct {
	cfg  ClientConfig
	http httpSender
}

func newWhatsAppAdapter(cfg ClientConfig, hc *http.Client) (Adapter, error) {
	if cfg.Session == "" {
		cfg.Session = defaultWhatsAppSession
	}
	return &whatsAppAdapter{cfg: cfg, http: newHTTPSender(cfg, hc)}, nil
}

type whatsAppSendRequest struct {
	Session    string   `json:"session"`
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
}

// Send posts one message for all recipients; the call's outcome is shared.
func (a *whatsAppAdapter) Send(ctx context.Context, to RecipientSet, message string) []Result {
	if to.Empty() {
		return nil
	}
	all := make([]string, 0, to.Len())
	all = append(all, to.Individuals...)
	all = append(all, to.Groups...)
	err := a.http.do(ctx, http.MethodPost, a.cfg.APIURL+"/v1/messages", "", whatsAppSendRequest{
		Session:    a.cfg.Session,
		Recipients: all,
		Message:    message,
	})
	return resultsFor(a.cfg.Name, to, err)
}
