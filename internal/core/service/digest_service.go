package service

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/apoclyps/cr8s/internal/core/domain"
	"github.com/apoclyps/cr8s/internal/core/ports"
)

// digestTemplate renders the plain-text crate digest.
var digestTemplate = template.Must(template.New("digest").
	Funcs(template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}).
	Parse(`Crates published in the last {{.Window}}:
{{range .Crates}}
  {{.Name}} {{.Version}} ({{.Code}}){{if .Description}} - {{deref .Description}}{{end}}{{end}}
`))

// MessageQueue accepts outbound digest messages for asynchronous delivery.
type MessageQueue interface {
	Enqueue(msg ports.Message)
}

// DigestService composes the periodic crate digest email.
type DigestService struct {
	crates ports.CrateRepository
	logger zerolog.Logger
}

func NewDigestService(crates ports.CrateRepository, logger zerolog.Logger) *DigestService {
	return &DigestService{crates: crates, logger: logger}
}

// SendDigest renders a digest of crates created within the window and
// enqueues one message per recipient. An empty window sends nothing.
// Returns the number of crates included.
func (s *DigestService) SendDigest(ctx context.Context, window time.Duration, recipients []string, out MessageQueue) (int, error) {
	cutoff := time.Now().UTC().Add(-window)
	crates, err := s.crates.FindSince(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("collect crates: %w", err)
	}
	if len(crates) == 0 {
		s.logger.Info().Dur("window", window).Msg("no new crates, digest skipped")
		return 0, nil
	}

	body, err := renderDigest(window, crates)
	if err != nil {
		return 0, err
	}

	subject := fmt.Sprintf("cr8s digest: %d new crate(s)", len(crates))
	for _, to := range recipients {
		out.Enqueue(ports.Message{To: to, Subject: subject, Body: body})
	}

	s.logger.Info().
		Int("crates", len(crates)).
		Int("recipients", len(recipients)).
		Msg("digest enqueued")
	return len(crates), nil
}

func renderDigest(window time.Duration, crates []domain.Crate) (string, error) {
	var sb strings.Builder
	data := struct {
		Window string
		Crates []domain.Crate
	}{
		Window: window.String(),
		Crates: crates,
	}
	if err := digestTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return sb.String(), nil
}
