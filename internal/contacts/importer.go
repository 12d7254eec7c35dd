// Package contacts turns vCard address books into person cards.
package contacts

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/birthday-reminder/internal/birthday"
	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/model"
)

// Source describes where the address book lives.
type Source struct {
	Mode      string // config.SourceModeWeb or config.SourceModeLocal
	LocalPath string
	WebURL    string
	WebUser   string
	WebPass   string
}

// Importer reads vCards and produces persons with stable identifiers.
type Importer struct {
	Fetcher VCardFetcher
}

// NewImporter returns an importer downloading over HTTP.
func NewImporter() *Importer {
	return &Importer{Fetcher: NewHTTPFetcher()}
}

// Import reads every card of the source. Cards without a usable birthday are
// returned too, with an empty Birthday, so the caller can cancel their reminders.
func (i *Importer) Import(ctx context.Context, src Source) ([]model.Person, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompContacts,
		config.LogKeyMode, src.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	reader, err := i.open(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	persons, err := Decode(ctx, reader)
	if err != nil {
		return nil, err
	}

	found := 0
	for _, p := range persons {
		if p.HasBirthday() {
			found++
		}
	}
	log.Info(config.MsgImportDone,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, len(persons)),
			slog.Int(config.LogKeyFound, found),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return persons, nil
}

func (i *Importer) open(ctx context.Context, src Source) (io.ReadCloser, error) {
	switch src.Mode {
	case config.SourceModeLocal:
		if src.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(src.LocalPath)
	case config.SourceModeWeb:
		if src.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if i.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return i.Fetcher.Fetch(ctx, src.WebURL, src.WebUser, src.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, src.Mode)
	}
}

// Decode parses a vCard stream. Malformed cards are skipped, and so are
// cards whose BDAY cannot be parsed; they keep no birthday. A failure of the
// underlying reader aborts the whole decode.
func Decode(ctx context.Context, r io.Reader) ([]model.Person, error) {
	src := &stickyReader{r: r}
	decoder := vcard.NewDecoder(src)
	var persons []model.Person

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if src.err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrVCardRead, src.err)
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompContacts,
				config.LogKeyError, err)
			continue
		}

		persons = append(persons, personOf(card))
	}
	return persons, nil
}

// stickyReader remembers the first non-EOF error of r and keeps returning it.
type stickyReader struct {
	r   io.Reader
	err error
}

func (s *stickyReader) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		s.err = err
	}
	return n, err
}

func personOf(card vcard.Card) model.Person {
	// FN (Formatted) > N (Structured) > Fallback
	name := config.FallbackName
	if fn := card.PreferredValue(config.VCardFN); fn != "" {
		name = fn
	} else if n := card.Get(config.VCardN); n != nil && n.Value != "" {
		name = strings.Join(strings.Fields(strings.ReplaceAll(n.Value, ";", " ")), " ")
	}

	var bday string
	if f := card.Get(config.VCardBDAY); f != nil && f.Value != "" {
		if d, err := birthday.Parse(f.Value); err == nil {
			bday = d.String()
		} else {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompContacts,
				config.LogKeyValue, f.Value)
		}
	}

	return model.Person{
		ID:          personID(card, name, bday),
		Name:        name,
		Birthday:    bday,
		Description: card.PreferredValue(config.VCardNote),
	}
}

// personID prefers the card UID so renames keep their reminders.
func personID(card vcard.Card, name, bday string) string {
	input := card.PreferredValue(config.VCardUID)
	if input == "" {
		input = fmt.Sprintf(config.FormatHashInput, name, bday, config.UIDSalt)
	} else {
		input = config.UIDSalt + input
	}
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}
