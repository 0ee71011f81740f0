package filename

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecure(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"My Report 2024.pdf", "My_Report_2024.pdf"},
		{"../../etc/passwd", "etc_passwd"},
		{`C:\Users\me\plan.pdf`, "C_Users_me_plan.pdf"},
		{"café menu.pdf", "cafe_menu.pdf"},
		{"  .hidden.pdf", "hidden.pdf"},
		{"résumé (final)!.pdf", "resume_final.pdf"},
		{"東京.pdf", "pdf"},
		{"", ""},
		{"...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Secure(tt.in))
		})
	}
}

func TestHasExtension(t *testing.T) {
	allowed := []string{"pdf"}

	assert.True(t, HasExtension("doc.pdf", allowed))
	assert.True(t, HasExtension("DOC.PDF", allowed))
	assert.True(t, HasExtension("archive.tar.pdf", allowed))
	assert.True(t, HasExtension("doc.pdf", []string{".PDF"}))
	assert.False(t, HasExtension("doc.txt", allowed))
	assert.False(t, HasExtension("pdf", allowed))
	assert.False(t, HasExtension("doc.", allowed))
	assert.False(t, HasExtension("doc.pdf", nil))
}
