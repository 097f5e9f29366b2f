package invite

import (
	"strings"
	"text/template"
)

var invitationTmpl = template.Must(template.New("invitation").Parse(
	`Hello!

{{ .InviterName }} has invited you to join GardenHub, the easiest way to
coordinate harvests with your community garden.

Follow this link to activate your account:

    {{ .ActivateURL }}

If you weren't expecting this invitation you can safely ignore it.

- The GardenHub team
`))

type invitationData struct {
	InviterName string
	ActivateURL string
}

func renderInvitation(data invitationData) (string, error) {
	var buf strings.Builder
	if err := invitationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
