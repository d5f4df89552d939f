package mailer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		filepath.Join(dir, "ballet_men.xlsx"),
		filepath.Join(dir, "ballet_women.xlsx"),
	}
	for _, f := range files {
		err := os.WriteFile(f, []byte("contents"), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}

	mail, err := NewMessage("counter@example.com", []string{"office@example.com"}, "01.04.2023-30.04.2023", files)
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, "Mariinsky Counter <counter@example.com>", mail.From)
	require.Equal(t, []string{"office@example.com"}, mail.To)
	require.Equal(t, "Participation report 01.04.2023-30.04.2023", mail.Subject)
	require.Len(t, mail.Attachments, 2)
	require.Equal(t, "ballet_men.xlsx", mail.Attachments[0].Filename)
	require.Equal(t, "ballet_women.xlsx", mail.Attachments[1].Filename)

	raw, err := mail.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, strings.Contains(string(raw), "ballet_women.xlsx"))
}

func TestNewMessageMissingFile(t *testing.T) {
	_, err := NewMessage("a@example.com", []string{"b@example.com"}, "p", []string{filepath.Join(t.TempDir(), "missing.xlsx")})
	require.Error(t, err)
}

func TestSendWithoutRecipients(t *testing.T) {
	err := Send(context.Background(), SmtpConfig{Server: "localhost", Port: 25}, nil, "p", nil)
	require.Error(t, err)
}
