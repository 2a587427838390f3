package notify

import (
	"net/url"
	"regexp"
	"strings"
)

// MaxCategoryLen is the longest accepted category.
const MaxCategoryLen = 100

var categoryRe = regexp.MustCompile(`^[a-zA-Z0-9 _/\-.]+$`)

// ValidCategory reports whether s is an acceptable category. The empty
// string means "no category" and is valid.
func ValidCategory(s string) bool {
	if s == "" {
		return true
	}
	return len(s) <= MaxCategoryLen && categoryRe.MatchString(s)
}

// ValidPhone accepts "+" followed by at least 7 ASCII digits.
func ValidPhone(s string) bool {
	if len(s) < 8 || s[0] != '+' {
		return false
	}
	return allDigits(s[1:])
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidSignalGroup accepts "group." followed by a non-empty id.
func ValidSignalGroup(s string) bool { return strings.HasPrefix(s, "group.") && len(s) > len("group.") }

// ValidWhatsAppGroup accepts ids ending in "@g.us".
func ValidWhatsAppGroup(s string) bool { return strings.HasSuffix(s, "@g.us") && len(s) > len("@g.us")+3 }

// ValidMatrixRoom accepts "!opaque:server" room ids.
func ValidMatrixRoom(s string) bool {
	i := strings.IndexByte(s, ':')
	return strings.HasPrefix(s, "!") && i > 1 && i < len(s)-1
}

// ValidMatrixUser accepts "@localpart:server" user ids.
func ValidMatrixUser(s string) bool {
	i := strings.IndexByte(s, ':')
	return strings.HasPrefix(s, "@") && i > 1 && i < len(s)-1
}

// ValidSnowflake accepts Discord ids: 17 to 20 digits.
func ValidSnowflake(s string) bool { return len(s) >= 17 && len(s) <= 20 && allDigits(s) }

// ValidTelegramChat accepts numeric chat ids (optionally negative) and
// "@channelname" usernames.
func ValidTelegramChat(s string) bool {
	if strings.HasPrefix(s, "@") {
		name := s[1:]
		if len(name) < 5 {
			return false
		}
		for i := 0; i < len(name); i++ {
			c := name[i]
			if !(c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
				return false
			}
		}
		return true
	}
	return allDigits(strings.TrimPrefix(s, "-"))
}

// ValidDiscordToken checks the three-part bot token shape. A "Bot " prefix is allowed.
func ValidDiscordToken(s string) bool {
	s = strings.TrimPrefix(s, "Bot ")
	if len(s) < 50 || len(strings.Split(s, ".")) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c == '.' || c == '_' || c == '-' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// validAPIURL requires an absolute http(s) URL with a host.
func validAPIURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
