package check

import (
	"regexp"

	"github.com/optimode/emailprobe/internal/smtpwire"
	"github.com/optimode/emailprobe/types"
)

// mailboxMissingCodes are the permanent failure codes that mean the
// recipient does not exist.
var mailboxMissingCodes = map[int]struct{}{
	510: {}, 511: {}, 513: {}, 550: {}, 551: {}, 553: {},
}

var (
	// Some carriers answer with a ratware warning while still accepting mail.
	ratwareText = regexp.MustCompile(`(?i)ratware`)

	// Policy rejections that share codes with missing mailboxes but say
	// nothing about the mailbox itself.
	policyText = regexp.MustCompile(`(?i)(junk|spam|openspf|spoofing|host.*blocked)`)
)

// ClassifyReply maps a complete reply to a command onto a verdict.
// terminal is false when the reply is positive and the dialogue may go on;
// in that case verdict is Unknown and carries no meaning.
func ClassifyReply(r smtpwire.Reply) (verdict types.Tristate, terminal bool) {
	if ratwareText.MatchString(r.Text) {
		return types.True, true
	}
	if _, ok := mailboxMissingCodes[r.Code]; ok && !policyText.MatchString(r.Text) {
		return types.False, true
	}
	if !r.Positive() {
		return types.Unknown, true
	}
	return types.Unknown, false
}
