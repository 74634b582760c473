// Package local stores uploads on disk behind signed PUT URLs. It stands in
// for the bucket when no S3 bucket is configured.
package local

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jbaikge/boneless/internal/config"
	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	"github.com/jbaikge/boneless/internal/httputil"
)

const (
	uploadPrefix = "/uploads/"
	staticPrefix = "/static/"
)

// Store signs upload URLs pointing back at this server and writes accepted
// payloads under BaseDir
type Store struct {
	baseDir string
	baseURL string // public URL of the server, no trailing slash
	secret  []byte
	expiry  time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewStore creates the upload directory. A nil secret is replaced by a random
// one, which invalidates outstanding URLs on restart.
func NewStore(baseDir, baseURL string, secret []byte, expiry time.Duration, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate upload secret: %w", err)
		}
	}
	if expiry <= 0 {
		expiry = 5 * time.Minute
	}
	return &Store{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		expiry:  expiry,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// SignUpload issues a PUT URL for req.Key valid until the requested expiry
func (s *Store) SignUpload(ctx context.Context, req content.UploadRequest) (*content.UploadDescriptor, error) {
	key, err := cleanKey(req.Key)
	if err != nil {
		return nil, err
	}

	expiry := s.expiry
	if req.Expires != "" {
		if expiry, err = time.ParseDuration(req.Expires); err != nil {
			return nil, fmt.Errorf("%w: expires: %v", domain.ErrValidation, err)
		}
	}
	expires := strconv.FormatInt(s.now().Add(expiry).Unix(), 10)

	q := url.Values{}
	q.Set("expires", expires)
	q.Set("signature", s.sign(key, expires))

	headers := http.Header{}
	if req.ContentType != "" {
		headers.Set("Content-Type", req.ContentType)
	}

	return &content.UploadDescriptor{
		URL:      s.baseURL + uploadPrefix + escapeKey(key) + "?" + q.Encode(),
		Method:   http.MethodPut,
		Headers:  headers,
		Location: s.baseURL + staticPrefix + escapeKey(key),
	}, nil
}

// Register mounts the upload and static routes
func (s *Store) Register(mux *http.ServeMux) {
	mux.HandleFunc("PUT "+uploadPrefix+"{key...}", s.HandleUpload)
	mux.Handle("GET "+staticPrefix, http.StripPrefix(staticPrefix, http.FileServer(http.Dir(s.baseDir))))
}

// HandleUpload accepts a payload sent to a signed URL
// PUT /uploads/{key...}?expires=&signature=
func (s *Store) HandleUpload(w http.ResponseWriter, r *http.Request) {
	key, err := cleanKey(r.PathValue("key"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	expires := r.URL.Query().Get("expires")
	if !hmac.Equal([]byte(s.sign(key, expires)), []byte(r.URL.Query().Get("signature"))) {
		httputil.RespondError(w, http.StatusForbidden, "signature does not match")
		return
	}
	deadline, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || s.now().Unix() > deadline {
		httputil.RespondError(w, http.StatusForbidden, "upload URL expired")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	written, err := s.SaveFile(r.Body, key)
	if err != nil {
		s.logger.Error("save upload failed", "key", key, "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "failed to save file")
		return
	}

	s.logger.Info("upload stored", "key", key, "bytes", written)
	w.WriteHeader(http.StatusOK)
}

// SaveFile streams reader to key under the base directory
func (s *Store) SaveFile(reader io.Reader, key string) (int64, error) {
	dest := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, reader)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, err
	}
	return written, os.Rename(tmp.Name(), dest)
}

func (s *Store) sign(key, expires string) string {
	mac := hmac.New(sha256.New, s.secret)
	io.WriteString(mac, http.MethodPut+"\n"+key+"\n"+expires)
	return hex.EncodeToString(mac.Sum(nil))
}

// cleanKey rejects keys that would escape the base directory
func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("%w: upload key is required", domain.ErrValidation)
	}
	cleaned := path.Clean(key)
	if cleaned != key || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return "", fmt.Errorf("%w: invalid upload key %q", domain.ErrValidation, key)
	}
	return cleaned, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
