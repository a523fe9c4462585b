package core

import (
	"io/fs"
	"net/mail"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfs "github.com/trezcool/bulletin/fs"
)

func TestEmailTemplates_embedded(t *testing.T) {
	for _, name := range []string{"_base.gohtml", "_base.txt", "bulletin_ready.gohtml", "bulletin_ready.txt"} {
		_, err := fs.Stat(appfs.FS, path.Join(emailTemplatesDir, name))
		assert.NoError(t, err, name)
	}
}

func TestEmailMessage_Render(t *testing.T) {
	conf := NewTestConfig()

	t.Run("bulletin_ready", func(t *testing.T) {
		msg := &EmailMessage{
			To:           []mail.Address{{Address: "awa@test.ml"}},
			TemplateName: "bulletin_ready",
			TemplateData: map[string]string{
				"Name":         "AWA Traoré",
				"Period":       "1ère Période",
				"ClassName":    "Terminale C",
				"Average":      "14,40 /20",
				"Appreciation": "Bien",
				"Rank":         "2e",
			},
		}
		require.NoError(t, msg.Render(conf))
		assert.True(t, msg.HasContent())

		assert.True(t, strings.HasPrefix(msg.TextContent, "Bonjour AWA Traoré,"))
		assert.Contains(t, msg.TextContent, "Moyenne générale : 14,40 /20")
		assert.Contains(t, msg.TextContent, conf.AppName)

		assert.Contains(t, msg.HTMLContent, "<!DOCTYPE html>")
		assert.Contains(t, msg.HTMLContent, "<strong>1ère Période</strong>")
		assert.Contains(t, msg.HTMLContent, "Rang : 2e")
	})

	t.Run("missing data", func(t *testing.T) {
		msg := &EmailMessage{TemplateName: "bulletin_ready", TemplateData: map[string]string{"Name": "AWA"}}
		assert.Error(t, msg.Render(conf))
	})

	t.Run("plain body", func(t *testing.T) {
		msg := &EmailMessage{BodyStr: "hello"}
		require.NoError(t, msg.Render(conf))
		assert.Equal(t, "hello", msg.TextContent)
		assert.Empty(t, msg.HTMLContent)
	})
}
