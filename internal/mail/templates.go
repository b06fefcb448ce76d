package mail

import (
	"bytes"
	"text/template"
)

var confirmations = template.Must(template.New("confirmations").Parse(`
{{- define "submission" -}}
Dear {{.Name}},

Thank you for registering for the PACUIT conference. We have received your paper submission.

Registration ID: {{.ID}}
Research title: {{.Title}}

Your submission is now pending review. Please keep your registration ID for future reference.

PACUIT Secretariat
{{- end}}
{{- define "individual" -}}
Dear {{.Name}},

We have received your individual membership application.

Application ID: {{.ID}}

Our team will review your application and contact you once it has been processed.

PACUIT Secretariat
{{- end}}
{{- define "institutional" -}}
Dear {{.Name}},

We have received the institutional membership application of {{.Title}}.

Application ID: {{.ID}}

Our team will review the submitted documents and contact you once the application has been processed.

PACUIT Secretariat
{{- end}}
`))

type confirmationData struct {
	Name  string
	ID    string
	Title string
}

// SubmissionConfirmation monta a confirmação de envio de trabalho.
func SubmissionConfirmation(to, name, registrationID, researchTitle string) (Message, error) {
	return render("submission", to, "PACUIT Conference Registration "+registrationID, confirmationData{Name: name, ID: registrationID, Title: researchTitle})
}

// IndividualConfirmation monta a confirmação de filiação individual.
func IndividualConfirmation(to, name, applicationID string) (Message, error) {
	return render("individual", to, "PACUIT Membership Application "+applicationID, confirmationData{Name: name, ID: applicationID})
}

// InstitutionalConfirmation monta a confirmação de filiação institucional.
func InstitutionalConfirmation(to, contactPerson, institution, applicationID string) (Message, error) {
	return render("institutional", to, "PACUIT Institutional Membership Application "+applicationID, confirmationData{Name: contactPerson, ID: applicationID, Title: institution})
}

func render(name, to, subject string, data confirmationData) (Message, error) {
	var buf bytes.Buffer
	if err := confirmations.ExecuteTemplate(&buf, name, data); err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subject, Body: buf.String()}, nil
}
