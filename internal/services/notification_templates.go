package services

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode/utf8"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

const smsMaxLength = 320

var emailHTML = template.Must(template.New("email").Parse(`<!doctype html>
<html><body style="font-family: sans-serif; line-height: 1.5">
<h2>{{.Subject}}</h2>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}</body></html>`))

func renderEmailHTML(subject, body string) string {
	var buf bytes.Buffer
	data := struct {
		Subject    string
		Paragraphs []string
	}{Subject: subject, Paragraphs: strings.Split(strings.TrimSpace(body), "\n\n")}
	if err := emailHTML.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

func smsText(subject, body string) string {
	text := subject
	if body != "" {
		text += ": " + body
	}
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > smsMaxLength {
		cut := smsMaxLength - 3
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return text
}

// AnnouncementJob targets every active member of the chapter
func AnnouncementJob(a *gormModels.Announcement, authorName string) *common.NotificationJob {
	job := common.NewNotificationJob(constants.NotifyAnnouncement, a.ChapterID)
	job.Subject = a.Title
	job.Body = a.Content
	if authorName != "" {
		job.Body = fmt.Sprintf("%s\n\nPosted by %s", a.Content, authorName)
	}
	job.SMSBody = smsText(a.Title, a.Content)
	job.SendEmail = a.SendEmail
	job.SendSMS = a.SendSMS
	return job
}

func MessageJob(sender *gormModels.Profile, recipientID, baseURL string) *common.NotificationJob {
	job := common.NewNotificationJob(constants.NotifyMessage, sender.ChapterID)
	job.UserIDs = []string{recipientID}
	job.Subject = fmt.Sprintf("New message from %s", sender.FullName)
	job.Body = fmt.Sprintf("%s sent you a message.\n\nRead it at %s/messages", sender.FullName, baseURL)
	job.SendEmail = true
	return job
}

func ConnectionRequestJob(requester *gormModels.Profile, recipientID, baseURL string) *common.NotificationJob {
	job := common.NewNotificationJob(constants.NotifyConnectionRequest, requester.ChapterID)
	job.UserIDs = []string{recipientID}
	job.Subject = fmt.Sprintf("%s wants to connect", requester.FullName)
	job.Body = fmt.Sprintf("%s sent you a connection request.\n\nRespond at %s/connections", requester.FullName, baseURL)
	job.SendEmail = true
	return job
}

// ConnectionAcceptedJob goes to the original requester only
func ConnectionAcceptedJob(accepter *gormModels.Profile, requesterID, baseURL string) *common.NotificationJob {
	job := common.NewNotificationJob(constants.NotifyConnectionAccepted, accepter.ChapterID)
	job.UserIDs = []string{requesterID}
	job.Subject = fmt.Sprintf("%s accepted your connection request", accepter.FullName)
	job.Body = fmt.Sprintf("You are now connected with %s.\n\nSay hello at %s/messages", accepter.FullName, baseURL)
	job.SendEmail = true
	return job
}

func WelcomeJob(p *gormModels.Profile, chapterName, baseURL string) *common.NotificationJob {
	job := common.NewNotificationJob(constants.NotifyWelcome, p.ChapterID)
	job.UserIDs = []string{p.ID}
	job.Subject = fmt.Sprintf("Welcome to %s", chapterName)
	if p.MemberStatus == constants.MemberStatusPendingApproval {
		job.Body = fmt.Sprintf("Hi %s,\n\nYour account was created and is waiting for a chapter admin to approve it.", p.FullName)
	} else {
		job.Body = fmt.Sprintf("Hi %s,\n\nYour account is ready. Sign in at %s", p.FullName, baseURL)
	}
	job.SendEmail = true
	return job
}
