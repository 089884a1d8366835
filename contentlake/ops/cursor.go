package ops

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/contentlake/contentlake/contentlake/groq"
	"github.com/contentlake/contentlake/contentlake/storage"
)

const shortCursorPrefix = "c:"

// CursorMode specifies cursor type
type CursorMode string

const (
	CursorFull  CursorMode = "full"  // self-contained base64url JSON
	CursorShort CursorMode = "short" // c:handle stored in cursor_store
)

// CursorPayload is the resume position of a query. Hash ties the cursor
// to the filter and parameters that produced it.
type CursorPayload struct {
	After string `json:"after"`
	Hash  string `json:"hash"`
}

// CursorStore abstracts cursor storage
type CursorStore interface {
	Resolve(ctx context.Context, token string) (*CursorPayload, error)
	Store(ctx context.Context, payload CursorPayload, mode CursorMode) (string, error)
}

// ErrCursorExpired is returned for short cursors past their TTL.
var ErrCursorExpired = errors.New("cursor expired or not found")

// DBCursorStore implements CursorStore backed by database
type DBCursorStore struct {
	db   *sql.DB
	sqlt storage.SQL
	ttl  time.Duration
	now  func() time.Time
}

// NewDBCursorStore creates a new database-backed cursor store
func NewDBCursorStore(db *sql.DB, sqlt storage.SQL, ttl time.Duration, now func() time.Time) *DBCursorStore {
	if now == nil {
		now = time.Now
	}
	return &DBCursorStore{
		db:   db,
		sqlt: sqlt,
		ttl:  ttl,
		now:  now,
	}
}

// Resolve resolves a cursor token to its payload
func (s *DBCursorStore) Resolve(ctx context.Context, token string) (*CursorPayload, error) {
	if handle, ok := strings.CutPrefix(token, shortCursorPrefix); ok {
		return s.resolveShort(ctx, handle)
	}
	return decodeFull(token)
}

// Store stores a cursor payload and returns a token
func (s *DBCursorStore) Store(ctx context.Context, payload CursorPayload, mode CursorMode) (string, error) {
	if mode == CursorShort {
		return s.storeShort(ctx, payload)
	}
	return encodeFull(payload)
}

// CleanupExpired removes expired cursors
func (s *DBCursorStore) CleanupExpired(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.sqlt.CleanupExpiredCursors, s.now().UnixMilli())
	return err
}

func (s *DBCursorStore) resolveShort(ctx context.Context, handle string) (*CursorPayload, error) {
	var payloadJSON string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, s.sqlt.GetCursor, handle).Scan(&payloadJSON, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCursorExpired
	}
	if err != nil {
		return nil, fmt.Errorf("query cursor: %w", err)
	}
	if s.now().UnixMilli() > expiresAt {
		return nil, ErrCursorExpired
	}

	var payload CursorPayload
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal cursor payload: %w", err)
	}
	return &payload, nil
}

func (s *DBCursorStore) storeShort(ctx context.Context, payload CursorPayload) (string, error) {
	handle, err := makeShortHandle()
	if err != nil {
		return "", fmt.Errorf("generate handle: %w", err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	nowMS := s.now().UnixMilli()
	expiresAtMS := nowMS + s.ttl.Milliseconds()
	if _, err := s.db.ExecContext(ctx, s.sqlt.PutCursor, handle, string(payloadJSON), nowMS, expiresAtMS); err != nil {
		return "", fmt.Errorf("store cursor: %w", err)
	}
	return shortCursorPrefix + handle, nil
}

func encodeFull(payload CursorPayload) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func decodeFull(token string) (*CursorPayload, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	var payload CursorPayload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal cursor: %w", err)
	}
	return &payload, nil
}

func makeShortHandle() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// IsShortCursorToken returns true if the token is a short cursor
func IsShortCursorToken(token string) bool {
	return strings.HasPrefix(token, shortCursorPrefix)
}

// HashQuery fingerprints a filter and its parameters. Map keys are encoded
// in sorted order, so equal parameter tables hash equally.
func HashQuery(expr groq.Expr, params map[string]any) (string, error) {
	if params == nil {
		params = map[string]any{}
	}
	pb, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(groq.Format(expr)))
	h.Write([]byte("\n"))
	h.Write(pb)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FullCursorStore keeps everything in the token and needs no database.
type FullCursorStore struct{}

func (FullCursorStore) Resolve(_ context.Context, token string) (*CursorPayload, error) {
	return decodeFull(token)
}

func (FullCursorStore) Store(_ context.Context, payload CursorPayload, _ CursorMode) (string, error) {
	return encodeFull(payload)
}
