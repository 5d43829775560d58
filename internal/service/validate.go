package service

import (
	"fmt"
	"regexp"

	"github.com/akorchev/notesafe/internal/errs"
	"github.com/akorchev/notesafe/internal/model"
)

// Field rules mirror the API contract: names capped at 255 chars,
// usernames 5..255, passwords 5..20.
const (
	maxNameLen     = 255
	minUsernameLen = 5
	minPasswordLen = 5
	maxPasswordLen = 20
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func issue(field, msg string) errs.FieldIssue { return errs.FieldIssue{Field: field, Message: msg} }

func checkName(field, v string, required bool, issues []errs.FieldIssue) []errs.FieldIssue {
	if v == "" {
		if required {
			issues = append(issues, issue(field, "must not be empty"))
		}
		return issues
	}
	if len(v) > maxNameLen {
		issues = append(issues, issue(field, fmt.Sprintf("must be %d or fewer characters long", maxNameLen)))
	}
	return issues
}

func finish(issues []errs.FieldIssue) error {
	if len(issues) > 0 {
		return errs.Validation("validation failed", issues)
	}
	return nil
}

func validateNoteInput(in model.NoteInput) error {
	return finish(checkName("title", in.Title, true, nil))
}

func validateNotePatch(p model.NotePatch) error {
	var issues []errs.FieldIssue
	if p.Title != nil {
		issues = checkName("title", *p.Title, true, issues)
	}
	return finish(issues)
}

func validateTodoInput(in model.TodoInput) error {
	issues := checkName("title", in.Title, true, nil)
	if !model.ValidPriority(in.Priority) {
		issues = append(issues, issue("priority", "must be one of LOW, MEDIUM, HIGH, CRITICAL"))
	}
	if in.DueDate.IsZero() {
		issues = append(issues, issue("dueDate", "must be set"))
	}
	return finish(issues)
}

func validateTodoPatch(p model.TodoPatch) error {
	var issues []errs.FieldIssue
	if p.Title != nil {
		issues = checkName("title", *p.Title, true, issues)
	}
	if p.Priority != nil && !model.ValidPriority(*p.Priority) {
		issues = append(issues, issue("priority", "must be one of LOW, MEDIUM, HIGH, CRITICAL"))
	}
	if p.DueDate != nil && p.DueDate.IsZero() {
		issues = append(issues, issue("dueDate", "must be set"))
	}
	return finish(issues)
}

func validatePasswordInput(in model.PasswordInput) error {
	issues := checkName("fieldname", in.Fieldname, true, nil)
	if in.Email != "" && !emailRe.MatchString(in.Email) {
		issues = append(issues, issue("email", "must be an email"))
	}
	if !model.ValidPriority(in.Priority) {
		issues = append(issues, issue("priority", "must be one of LOW, MEDIUM, HIGH, CRITICAL"))
	}
	return finish(issues)
}

func validatePasswordPatch(p model.PasswordPatch) error {
	var issues []errs.FieldIssue
	if p.Fieldname != nil {
		issues = checkName("fieldname", *p.Fieldname, true, issues)
	}
	if p.Email != nil && *p.Email != "" && !emailRe.MatchString(*p.Email) {
		issues = append(issues, issue("email", "must be an email"))
	}
	if p.Priority != nil && !model.ValidPriority(*p.Priority) {
		issues = append(issues, issue("priority", "must be one of LOW, MEDIUM, HIGH, CRITICAL"))
	}
	return finish(issues)
}

func validateCredentials(username, email, password string, requireEmail bool) error {
	var issues []errs.FieldIssue
	if len(username) < minUsernameLen || len(username) > maxNameLen {
		issues = append(issues, issue("username",
			fmt.Sprintf("must be %d to %d characters long", minUsernameLen, maxNameLen)))
	}
	if requireEmail && !emailRe.MatchString(email) {
		issues = append(issues, issue("email", "must be an email"))
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		issues = append(issues, issue("password",
			fmt.Sprintf("must be %d to %d characters long", minPasswordLen, maxPasswordLen)))
	}
	return finish(issues)
}

func validatePasswordRule(password string) error {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return errs.Validation("validation failed", []errs.FieldIssue{issue("password",
			fmt.Sprintf("must be %d to %d characters long", minPasswordLen, maxPasswordLen))})
	}
	return nil
}
