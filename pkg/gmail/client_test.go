package gmail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	raw := string(BuildMessage("talent@acme.test", "cand@example.com", "Interview scheduled", "Hello\nSee you soon"))

	assert.Contains(t, raw, "From: talent@acme.test\r\n")
	assert.Contains(t, raw, "To: cand@example.com\r\n")
	assert.Contains(t, raw, "Subject: Interview scheduled\r\n")
	assert.Contains(t, raw, "\r\n\r\nHello\r\nSee you soon")
}

func TestBuildMessageEncodesNonASCIISubject(t *testing.T) {
	raw := string(BuildMessage("", "cand@example.com", "Entretien planifié", "x"))

	assert.NotContains(t, raw, "From:")
	assert.Contains(t, raw, "Subject: =?utf-8?q?")
}
