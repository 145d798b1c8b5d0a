package transcript

import (
	"database/sql"
	"errors"
	"fmt"
	"html"
	"io"
	"mime/quotedprintable"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/matheus3301/wpphistory/internal/backup"
	"github.com/matheus3301/wpphistory/internal/chatstore"
	"go.uber.org/zap"
)

// MediaDirName is the subdirectory of the output area that holds copied media.
const MediaDirName = "media"

// MediaLayout selects how copied media files are named.
type MediaLayout string

const (
	// LayoutFlat keeps only the base file name, so equal names from different
	// conversations overwrite each other. Matches earlier exports.
	LayoutFlat MediaLayout = "flat"
	// LayoutConversation stores files under a per-conversation directory and
	// prefixes them with the media item id.
	LayoutConversation MediaLayout = "conversation"
)

// ParseMediaLayout validates a configured layout name.
func ParseMediaLayout(s string) (MediaLayout, error) {
	switch l := MediaLayout(s); l {
	case LayoutFlat, LayoutConversation:
		return l, nil
	case "":
		return LayoutConversation, nil
	}
	return "", fmt.Errorf("unknown media layout %q", s)
}

// MediaLookup fetches media items from the message store.
type MediaLookup interface {
	MediaItem(id int64) (*chatstore.MediaItem, error)
}

// Resolver maps a backup domain and relative path to a file on disk.
// A miss is reported with backup.ErrNotFound.
type Resolver interface {
	Resolve(domain, relativePath string) (string, error)
}

// MediaRenderer turns media items into transcript HTML, copying file-backed
// media out of the backup into the output area.
type MediaRenderer struct {
	store    MediaLookup
	resolver Resolver
	domain   string
	outDir   string
	layout   MediaLayout
	escape   bool
	logger   *zap.Logger

	missing int
}

// NewMediaRenderer returns a renderer copying into outDir/media. domain is the
// backup domain of the app whose Library holds the media.
func NewMediaRenderer(store MediaLookup, resolver Resolver, domain, outDir string, layout MediaLayout, escape bool, logger *zap.Logger) *MediaRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaRenderer{
		store:    store,
		resolver: resolver,
		domain:   domain,
		outDir:   outDir,
		layout:   layout,
		escape:   escape,
		logger:   logger,
	}
}

// Missing returns how many media references rendered as placeholders so far.
func (r *MediaRenderer) Missing() int {
	return r.missing
}

// Render returns the transcript body for a media row of the given kind.
// scope names the conversation's media directory for LayoutConversation.
func (r *MediaRenderer) Render(kind MessageKind, ref sql.NullInt64, scope string) (string, error) {
	if !kind.IsMedia() {
		return "", fmt.Errorf("message kind %d has no media", kind)
	}
	if !ref.Valid {
		return r.missingPlaceholder(kind), nil
	}
	item, err := r.store.MediaItem(ref.Int64)
	if err != nil {
		return "", err
	}

	switch kind {
	case KindContact:
		if !item.VCardName.Valid {
			return r.missingPlaceholder(kind), nil
		}
		name := item.VCardName.String
		if strings.HasPrefix(name, "=") {
			name = decodeQuotedPrintable(name)
		}
		return fmt.Sprintf("[%s - %s]", kind, r.text(name)), nil
	case KindLocation:
		if !item.Latitude.Valid || !item.Longitude.Valid {
			return r.missingPlaceholder(kind), nil
		}
		return fmt.Sprintf("[%s - %s, %s]", kind,
			formatCoordinate(item.Latitude.Float64), formatCoordinate(item.Longitude.Float64)), nil
	}

	if !item.LocalPath.Valid {
		return r.missingPlaceholder(kind), nil
	}
	return r.renderFile(kind, item, scope)
}

func (r *MediaRenderer) renderFile(kind MessageKind, item *chatstore.MediaItem, scope string) (string, error) {
	stored := item.LocalPath.String
	relPath := "Library/" + stored
	if strings.HasPrefix(stored, "/") {
		relPath = "Library" + stored
	}

	src, err := r.resolver.Resolve(r.domain, relPath)
	if errors.Is(err, backup.ErrNotFound) {
		r.logger.Warn("media not in backup",
			zap.String("kind", kind.String()),
			zap.String("path", relPath),
			zap.Int64("media_item", item.ID))
		return r.missingPlaceholder(kind), nil
	}
	if err != nil {
		return "", err
	}

	name := path.Base(relPath)
	segments := []string{MediaDirName, name}
	if r.layout == LayoutConversation {
		segments = []string{MediaDirName, scope, strconv.FormatInt(item.ID, 10) + "-" + name}
	}
	dst := filepath.Join(append([]string{r.outDir}, segments...)...)
	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("copy %s media %s: %w", kind, relPath, err)
	}

	controls := " controls"
	if kind == KindImage {
		controls = ""
	}
	href := mediaHref(segments)
	if r.escape {
		href = html.EscapeString(href)
	}
	return fmt.Sprintf(`<a href="%[2]s"><%[1]s src="%[2]s" style="width:200px;"%[3]s></a>`,
		kind.htmlTag(), href, controls), nil
}

// mediaHref joins path segments into a relative URL, escaping characters
// such as '#' and '%' that would otherwise break the link.
func mediaHref(segments []string) string {
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = url.PathEscape(seg)
	}
	return strings.Join(escaped, "/")
}

func (r *MediaRenderer) missingPlaceholder(kind MessageKind) string {
	r.missing++
	return fmt.Sprintf("[missing %s]", kind)
}

func (r *MediaRenderer) text(s string) string {
	if r.escape {
		return html.EscapeString(s)
	}
	return s
}

// decodeQuotedPrintable decodes a quoted-printable vCard name. Input that
// does not decode to valid UTF-8 is returned unchanged.
func decodeQuotedPrintable(s string) string {
	b, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(s)))
	if err != nil || !utf8.Valid(b) {
		return s
	}
	return string(b)
}

// formatCoordinate prints a coordinate the way earlier exports did: whole
// numbers keep a trailing ".0", and exponents below -4 or from 16 up switch
// to exponent form ("1e-05").
func formatCoordinate(f float64) string {
	e := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if err == nil && (exp < -4 || exp >= 16) {
		return e
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
