package validation

import "strings"

// Mailbox providers whose local parts get canonicalized.
var (
	gmailDomains   = map[string]bool{"gmail.com": true, "googlemail.com": true}
	outlookDomains = map[string]bool{"hotmail.com": true, "live.com": true, "outlook.com": true}
	yahooDomains   = map[string]bool{"yahoo.com": true, "ymail.com": true, "rocketmail.com": true}
	icloudDomains  = map[string]bool{"icloud.com": true, "me.com": true, "mac.com": true}
)

// NormalizeEmail canonicalizes an address that already passed syntax validation.
//
// The whole address is lowercased. Gmail addresses lose dots and "+tag"
// sub-addresses and googlemail.com becomes gmail.com. Outlook and iCloud
// addresses lose their "+tag"; Yahoo addresses lose their final "-tag".
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return email
	}
	local, domain := email[:at], email[at+1:]

	switch {
	case gmailDomains[domain]:
		local = cutSubaddress(local, "+")
		local = strings.ReplaceAll(local, ".", "")
		domain = "gmail.com"
	case outlookDomains[domain], icloudDomains[domain]:
		local = cutSubaddress(local, "+")
	case yahooDomains[domain]:
		// Yahoo local parts may contain dashes; only the last segment is a tag.
		if i := strings.LastIndex(local, "-"); i >= 0 {
			local = local[:i]
		}
	}

	if local == "" {
		return email
	}
	return local + "@" + domain
}

func cutSubaddress(local, sep string) string {
	before, _, _ := strings.Cut(local, sep)
	return before
}
