package notify

import (
	"context"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// matrixAdapter sends one m.room.message per room through the client-server API.
type matrixAdapter struct {
	cfg  ClientConfig
	http httpSender
}

func newMatrixAdapter(cfg ClientConfig, hc *http.Client) (Adapter, error) {
	return &matrixAdapter{cfg: cfg, http: newHTTPSender(cfg, hc)}, nil
}

type matrixMessage struct {
	MsgType       string `json:"msgtype"`
	Body          string `json:"body"`
	Format        string `json:"format,omitempty"`
	FormattedBody string `json:"formatted_body,omitempty"`
}

// matrixHTML renders the formatted body. A message produced by the default
// template gets a bold title and a clickable link; anything else is escaped text.
func matrixHTML(tmpl, message string) string {
	if tmpl == "" || tmpl == DefaultTemplate {
		if title, link, ok := splitDefaultMessage(message); ok {
			t, u := html.EscapeString(title), html.EscapeString(link)
			return "🔖 <strong>" + t + `</strong><br/><a href="` + u + `">` + u + "</a>"
		}
	}
	return strings.ReplaceAll(html.EscapeString(message), "\n", "<br/>")
}

func splitDefaultMessage(message string) (title, link string, ok bool) {
	rest, found := strings.CutPrefix(message, "🔖 ")
	if !found {
		return "", "", false
	}
	i := strings.LastIndex(rest, "\n")
	if i < 0 {
		return "", "", false
	}
	title, link = rest[:i], rest[i+1:]
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return "", "", false
	}
	return title, link, true
}

func (a *matrixAdapter) Send(ctx context.Context, to RecipientSet, message string) []Result {
	out := make([]Result, 0, to.Len())
	for _, id := range to.Individuals {
		out = append(out, errResult(a.cfg.Name, id, ClassIndividual, invalidEventError{msg: "matrix does not support individual recipients"}))
	}
	msg := matrixMessage{
		MsgType:       "m.text",
		Body:          message,
		Format:        "org.matrix.custom.html",
		FormattedBody: matrixHTML(a.cfg.MessageTemplate, message),
	}
	for _, room := range to.Groups {
		endpoint := a.cfg.APIURL + "/_matrix/client/v3/rooms/" + url.PathEscape(room) +
			"/send/m.room.message/" + uuid.NewString()
		if err := a.http.do(ctx, http.MethodPut, endpoint, "Bearer "+a.cfg.AccessToken, msg); err != nil {
			out = append(out, errResult(a.cfg.Name, room, ClassGroup, err))
			continue
		}
		out = append(out, okResult(a.cfg.Name, room, ClassGroup))
	}
	return out
}
