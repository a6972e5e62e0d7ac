package core

import (
	"bytes"
	htmltmpl "html/template"
	"io/fs"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

const emailTemplatesDir = "templates/email"

type (
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// EmailTemplates holds the parsed email templates, keyed by name.
type EmailTemplates struct {
	mu   sync.RWMutex
	text map[string]*texttmpl.Template
	html map[string]*htmltmpl.Template
	ctx  ContextData
}

// ParseEmailTemplates parses every "<name>.txt" and "<name>.gohtml" found in fsys,
// each one combined with its "_base" layout.
func ParseEmailTemplates(fsys fs.FS, conf *Config) (*EmailTemplates, error) {
	tmpls := &EmailTemplates{
		text: make(map[string]*texttmpl.Template),
		html: make(map[string]*htmltmpl.Template),
		ctx:  ContextData{AppName: conf.AppName, FrontendBaseURL: conf.FrontendBaseURL},
	}

	entries, err := fs.ReadDir(fsys, emailTemplatesDir)
	if err != nil {
		return nil, errors.Wrap(err, "reading email templates dir")
	}
	strict := conf.Debug || conf.TestMode

	for _, entry := range entries {
		fname := entry.Name()
		ext := path.Ext(fname)
		if strings.HasPrefix(fname, "_") || entry.IsDir() {
			continue
		}
		name := strings.TrimSuffix(fname, ext)
		fp := path.Join(emailTemplatesDir, fname)

		switch ext {
		case ".txt":
			tmpl, err := texttmpl.ParseFS(fsys, path.Join(emailTemplatesDir, "_base.txt"), fp)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %s", fname)
			}
			if strict {
				tmpl = tmpl.Option("missingkey=error")
			}
			tmpls.text[name] = tmpl
		case ".gohtml":
			tmpl, err := htmltmpl.ParseFS(fsys, path.Join(emailTemplatesDir, "_base.gohtml"), fp)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %s", fname)
			}
			if strict {
				tmpl = tmpl.Option("missingkey=error")
			}
			tmpls.html[name] = tmpl
		}
	}
	return tmpls, nil
}

// Render fills TextContent and HTMLContent of msg.
func (t *EmailTemplates) Render(msg *EmailMessage) error {
	if msg.BodyStr != "" {
		msg.TextContent = msg.BodyStr
	}
	if msg.TemplateName == "" {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	data := t.ctx
	data.Data = msg.TemplateData

	if tmpl, ok := t.text[msg.TemplateName]; ok && msg.BodyStr == "" {
		var buff bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buff, "base", data); err != nil {
			return errors.Wrapf(err, "rendering %s.txt", msg.TemplateName)
		}
		msg.TextContent = buff.String()
	}
	if tmpl, ok := t.html[msg.TemplateName]; ok {
		var buff bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buff, "base", data); err != nil {
			return errors.Wrapf(err, "rendering %s.gohtml", msg.TemplateName)
		}
		msg.HTMLContent = buff.String()
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }
