// Package media implements the access-control gateway between callers
// and encrypted media blobs: it decides per request whether to hand out
// a time-limited public link or to decrypt and stream a private file,
// and it owns the decrypt-to-scoped-temp-file primitive that the
// timelapse compiler reuses.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/smazurov/progresslapse/internal/common"
	"github.com/smazurov/progresslapse/internal/cryptox"
	"github.com/smazurov/progresslapse/internal/filex"
	"github.com/smazurov/progresslapse/internal/server/blob"
	"github.com/smazurov/progresslapse/internal/server/models"
	"github.com/smazurov/progresslapse/internal/server/repositories/images"
	"github.com/smazurov/progresslapse/internal/server/repositories/videos"
)

// DefaultPresignTTL bounds the lifetime of public links unless
// configured otherwise.
const DefaultPresignTTL = time.Hour

// VideoKeyPrefix is the storage namespace for a user's compiled videos.
// The gateway falls back to this prefix when no metadata record matches
// a requested key.
func VideoKeyPrefix(userID string) string {
	return "videos/" + userID + "/"
}

// ImageKeyPrefix is the storage namespace for a user's uploaded images.
func ImageKeyPrefix(userID string) string {
	return "images/" + userID + "/"
}

type DecisionKind int

const (
	// DecisionRedirect: public media, serve via presigned URL without
	// ever decrypting.
	DecisionRedirect DecisionKind = iota
	// DecisionStream: private media, decrypted into a scoped temp file
	// that the caller must Close.
	DecisionStream
)

// Decision is the outcome of resolving a media request. For
// DecisionStream the plaintext lives in File; closing the Decision
// removes it from disk, so handlers defer Close immediately.
type Decision struct {
	Kind        DecisionKind
	URL         string
	File        *filex.TempFile
	Size        int64
	ContentType string
	FileName    string
}

func (d *Decision) Close() error {
	if d.File != nil {
		return d.File.Close()
	}
	return nil
}

type Gateway struct {
	images     images.Repository
	videos     videos.Repository
	store      blob.Store
	cipher     *cryptox.MediaCipher
	tempDir    string
	presignTTL time.Duration
}

func NewGateway(images images.Repository, videos videos.Repository, store blob.Store,
	cipher *cryptox.MediaCipher, tempDir string, presignTTL time.Duration) *Gateway {
	if presignTTL <= 0 {
		presignTTL = DefaultPresignTTL
	}
	return &Gateway{
		images:     images,
		videos:     videos,
		store:      store,
		cipher:     cipher,
		tempDir:    tempDir,
		presignTTL: presignTTL,
	}
}

// lookup finds the media record backing key for requester, trying
// images then videos. Both variants are consumed through the
// models.MediaRecord capability.
func (g *Gateway) lookup(ctx context.Context, key, requesterID string) (models.MediaRecord, error) {
	img, err := g.images.GetByStorageKey(ctx, requesterID, key)
	if err == nil {
		return img, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	video, err := g.videos.GetByStorageKey(ctx, requesterID, key)
	if err == nil {
		return video, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	return nil, common.ErrNotFound
}

// Resolve maps a requested storage key to an access decision for the
// requesting user. It never serves media owned by someone else: a key
// with no matching record is allowed only inside the requester's own
// video namespace, and everything else is ErrForbidden.
func (g *Gateway) Resolve(ctx context.Context, key, requesterID string) (*Decision, error) {
	record, err := g.lookup(ctx, key, requesterID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	if record == nil {
		if !strings.HasPrefix(key, VideoKeyPrefix(requesterID)) {
			return nil, fmt.Errorf("%w: key outside requester namespace", common.ErrForbidden)
		}
	}

	if record != nil && record.Public() {
		// Public media is pre-cleared for link sharing and served
		// as stored; no decryption, no temp file.
		url, err := g.store.PresignGet(ctx, key, g.presignTTL)
		if err != nil {
			return nil, err
		}
		return &Decision{Kind: DecisionRedirect, URL: url}, nil
	}

	tmp, err := g.DecryptToTemp(ctx, key, requesterID, g.tempDir)
	if err != nil {
		return nil, err
	}

	size, err := tmp.Size()
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("stat temp file: %w", err)
	}

	name := path.Base(key)
	return &Decision{
		Kind:        DecisionStream,
		File:        tmp,
		Size:        size,
		ContentType: contentTypeFor(name),
		FileName:    name,
	}, nil
}

// DecryptToTemp fetches the ciphertext blob for key and decrypts it
// into a fresh temp file in dir, keyed for userID. On any failure the
// temp file is already removed; on success the caller owns the file and
// must Close it. The returned file is positioned at offset zero.
func (g *Gateway) DecryptToTemp(ctx context.Context, key, userID, dir string) (*filex.TempFile, error) {
	body, err := g.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	tmp, err := filex.NewTempFile(dir, path.Ext(key))
	if err != nil {
		return nil, err
	}

	if err := g.cipher.DecryptStream(tmp, body, userID); err != nil {
		tmp.Close()
		return nil, err
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("rewind temp file: %w", err)
	}

	return tmp, nil
}

// PutEncrypted streams plaintext through the cipher straight into the
// blob store under key; the plaintext never touches disk.
func (g *Gateway) PutEncrypted(ctx context.Context, key, userID string, plaintext io.Reader) error {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(g.cipher.EncryptStream(pw, plaintext, userID))
	}()

	if err := g.store.Put(ctx, key, pr); err != nil {
		pr.CloseWithError(err)
		return err
	}
	return nil
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
