package contacts_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/contacts"
)

const addressBook = "BEGIN:VCARD\r\n" +
	"VERSION:3.0\r\n" +
	"FN:Alice Martin\r\n" +
	"BDAY:1990-03-10\r\n" +
	"NOTE:Likes tulips\r\n" +
	"END:VCARD\r\n" +
	"BEGIN:VCARD\r\n" +
	"VERSION:4.0\r\n" +
	"N:Petrov;Boris;;;\r\n" +
	"BDAY:--0305\r\n" +
	"UID:urn:uuid:boris\r\n" +
	"END:VCARD\r\n" +
	"BEGIN:VCARD\r\n" +
	"VERSION:3.0\r\n" +
	"FN:No Birthday\r\n" +
	"END:VCARD\r\n" +
	"BEGIN:VCARD\r\n" +
	"VERSION:3.0\r\n" +
	"FN:Broken Date\r\n" +
	"BDAY:someday\r\n" +
	"END:VCARD\r\n"

type stubFetcher struct {
	body string
	err  error
	url  string
}

func (s *stubFetcher) Fetch(_ context.Context, url, _, _ string) (io.ReadCloser, error) {
	s.url = url
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.body)), nil
}

// brokenReader fails every read, like a connection reset mid-body.
type brokenReader struct {
	reads int
}

func (b *brokenReader) Read([]byte) (int, error) {
	b.reads++
	return 0, errors.New("connection reset by peer")
}

func card(i int) string {
	return fmt.Sprintf("BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Person %03d\r\nBDAY:1990-01-01\r\nEND:VCARD\r\n", i)
}

// -----------------------------------------------------------------------------
// Decode
// -----------------------------------------------------------------------------

func TestDecode(t *testing.T) {
	persons, err := contacts.Decode(context.Background(), strings.NewReader(addressBook))
	require.NoError(t, err)
	require.Len(t, persons, 4)

	alice := persons[0]
	assert.Equal(t, "Alice Martin", alice.Name)
	assert.Equal(t, "1990-03-10", alice.Birthday)
	assert.Equal(t, "Likes tulips", alice.Description)
	assert.Len(t, alice.ID, config.UIDHashLength*2)

	boris := persons[1]
	assert.Equal(t, "Petrov Boris", boris.Name, "N is used when FN is absent")
	assert.Equal(t, "--03-05", boris.Birthday, "year-less dates are normalized")

	assert.False(t, persons[2].HasBirthday())
	assert.False(t, persons[3].HasBirthday(), "unparseable BDAY is dropped")
}

func TestDecode_StableIDs(t *testing.T) {
	first, err := contacts.Decode(context.Background(), strings.NewReader(addressBook))
	require.NoError(t, err)
	second, err := contacts.Decode(context.Background(), strings.NewReader(addressBook))
	require.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}

	t.Run("UID survives a rename", func(t *testing.T) {
		renamed := strings.Replace(addressBook, "N:Petrov;Boris;;;", "FN:Boris P.", 1)
		persons, err := contacts.Decode(context.Background(), strings.NewReader(renamed))
		require.NoError(t, err)
		assert.Equal(t, "Boris P.", persons[1].Name)
		assert.Equal(t, first[1].ID, persons[1].ID)
	})

	t.Run("Distinct cards get distinct IDs", func(t *testing.T) {
		seen := map[string]bool{}
		for _, p := range first {
			assert.False(t, seen[p.ID], "duplicate id for %s", p.Name)
			seen[p.ID] = true
		}
	})
}

func TestDecode_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := contacts.Decode(ctx, strings.NewReader(addressBook))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecode_ReaderFailure(t *testing.T) {
	t.Run("Failing from the start", func(t *testing.T) {
		broken := &brokenReader{}

		persons, err := contacts.Decode(context.Background(), broken)
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrVCardRead)
		assert.Contains(t, err.Error(), "connection reset")
		assert.Nil(t, persons)
		assert.LessOrEqual(t, broken.reads, 1, "a broken stream is not read again")
	})

	t.Run("Failing after a complete card", func(t *testing.T) {
		broken := &brokenReader{}
		r := io.MultiReader(strings.NewReader(card(1)+"BEGIN:VCARD\r\nFN:Cut"), broken)

		persons, err := contacts.Decode(context.Background(), r)
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrVCardRead)
		assert.Nil(t, persons, "partial address books are not returned")
		assert.Equal(t, 1, broken.reads)
	})
}

func TestDecode_Empty(t *testing.T) {
	persons, err := contacts.Decode(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, persons)
}

// -----------------------------------------------------------------------------
// Import
// -----------------------------------------------------------------------------

func TestImport_Local(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book"+config.ExtVCF)
	require.NoError(t, os.WriteFile(path, []byte(addressBook), config.FilePermUserRW))

	imp := &contacts.Importer{}
	persons, err := imp.Import(context.Background(), contacts.Source{Mode: config.SourceModeLocal, LocalPath: path})
	require.NoError(t, err)
	assert.Len(t, persons, 4)
}

func TestImport_Web(t *testing.T) {
	fetcher := &stubFetcher{body: addressBook}
	imp := &contacts.Importer{Fetcher: fetcher}

	persons, err := imp.Import(context.Background(), contacts.Source{Mode: config.SourceModeWeb, WebURL: "https://dav.example.com/book"})
	require.NoError(t, err)
	assert.Len(t, persons, 4)
	assert.Equal(t, "https://dav.example.com/book", fetcher.url)
}

func TestImport_WebTooLarge(t *testing.T) {
	var book strings.Builder
	for i := range 200 {
		book.WriteString(card(i))
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(book.String()))
	}))
	defer ts.Close()

	fetcher := contacts.NewHTTPFetcher()
	fetcher.MaxBytes = int64(3 * len(card(0)))
	imp := &contacts.Importer{Fetcher: fetcher}

	persons, err := imp.Import(context.Background(), contacts.Source{Mode: config.SourceModeWeb, WebURL: ts.URL})
	require.ErrorIs(t, err, contacts.ErrTooLarge)
	assert.Nil(t, persons)
}

func TestImport_Errors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		imp     *contacts.Importer
		src     contacts.Source
		wantMsg string
		wantErr error
	}{
		{"Local path empty", &contacts.Importer{}, contacts.Source{Mode: config.SourceModeLocal}, config.ErrLocalPathEmpty, nil},
		{"Local file missing", &contacts.Importer{}, contacts.Source{Mode: config.SourceModeLocal, LocalPath: filepath.Join(t.TempDir(), "nope.vcf")}, "", os.ErrNotExist},
		{"Web URL empty", &contacts.Importer{Fetcher: &stubFetcher{}}, contacts.Source{Mode: config.SourceModeWeb}, config.ErrWebURLEmpty, nil},
		{"Fetcher missing", &contacts.Importer{}, contacts.Source{Mode: config.SourceModeWeb, WebURL: "https://x"}, config.ErrFetcherMissing, nil},
		{"Fetch fails", &contacts.Importer{Fetcher: &stubFetcher{err: boom}}, contacts.Source{Mode: config.SourceModeWeb, WebURL: "https://x"}, "", boom},
		{"Unknown mode", &contacts.Importer{}, contacts.Source{Mode: "ftp"}, config.ErrModeUnsupport, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.imp.Import(context.Background(), tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), config.ErrVCardParse)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
