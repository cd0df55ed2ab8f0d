package domain

import (
	"fmt"

	tasks "github.com/hearthhq/hearth/internal/tasks/domain"
)

// Content is the localized title/body pair delivered with a reminder.
type Content struct {
	Title string
	Body  string
}

type contentTemplate struct {
	title string
	body  string
}

// Templates take the task title as their only argument so that content
// stays deterministic for a given (task, type, language) triple.
var contentTemplates = map[string]map[Type]contentTemplate{
	"en": {
		TypeDeadline: {"Upcoming deadline", "%q is due soon. Plan some time for it."},
		TypeOverdue:  {"Task overdue", "%q has passed its deadline. Finish or reschedule it."},
		TypeFollowUp: {"Still on your list", "%q has been waiting for a while. Is it still needed?"},
		TypeCheckIn:  {"Quick check-in", "How is %q going?"},
	},
	"fr": {
		TypeDeadline: {"Échéance proche", "%q arrive à échéance. Prévoyez du temps pour cette tâche."},
		TypeOverdue:  {"Tâche en retard", "%q a dépassé son échéance. Terminez-la ou replanifiez-la."},
		TypeFollowUp: {"Toujours en attente", "%q attend depuis un moment. Est-elle toujours utile ?"},
		TypeCheckIn:  {"Petit point", "Où en est %q ?"},
	},
}

const fallbackLanguage = "en"

// GenerateContent renders the localized reminder content for a task.
// Unsupported languages fall back to English.
func GenerateContent(t tasks.Task, typ Type, language string) Content {
	templates, ok := contentTemplates[language]
	if !ok {
		templates = contentTemplates[fallbackLanguage]
	}
	tpl, ok := templates[typ]
	if !ok {
		tpl = templates[TypeCheckIn]
	}
	return Content{
		Title: tpl.title,
		Body:  fmt.Sprintf(tpl.body, t.Title),
	}
}
