package notify

import (
	"net/http"
	"sort"
)

// kindSpec describes one supported backend: how its recipients are checked
// and how its adapter is built.
type kindSpec struct {
	// nil means the kind has no such recipient class.
	validIndividual func(string) bool
	validGroup      func(string) bool
	// nil means the kind ignores sender.
	validSender    func(string) bool
	senderRequired bool
	validToken     func(string) bool
	tokenRequired  bool
	defaultAPIURL  string
	build          func(cfg ClientConfig, hc *http.Client) (Adapter, error)
}

func nonEmpty(s string) bool { return s != "" }

// kinds is the closed set of supported backends.
var kinds = map[string]kindSpec{
	"signal": {
		validIndividual: ValidPhone,
		validGroup:      ValidSignalGroup,
		validSender:     ValidPhone,
		senderRequired:  true,
		build:           newSignalAdapter,
	},
	"whatsapp": {
		validIndividual: ValidPhone,
		validGroup:      ValidWhatsAppGroup,
		build:           newWhatsAppAdapter,
	},
	"matrix": {
		validGroup:    ValidMatrixRoom,
		validSender:   ValidMatrixUser,
		validToken:    nonEmpty,
		tokenRequired: true,
		build:         newMatrixAdapter,
	},
	"discord": {
		validGroup:    ValidSnowflake,
		validToken:    ValidDiscordToken,
		tokenRequired: true,
		defaultAPIURL: "https://discord.com/api/v10",
		build:         newDiscordAdapter,
	},
	"telegram": {
		validGroup:    ValidTelegramChat,
		validToken:    nonEmpty,
		tokenRequired: true,
		defaultAPIURL: "https://api.telegram.org",
		build:         newTelegramAdapter,
	},
}

// Kinds lists the supported client types.
func Kinds() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
