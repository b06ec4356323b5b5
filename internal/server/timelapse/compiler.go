package timelapse

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smazurov/progresslapse/internal/common"
	"github.com/smazurov/progresslapse/internal/filex"
	"github.com/smazurov/progresslapse/internal/logging"
	"github.com/smazurov/progresslapse/internal/server/media"
	"github.com/smazurov/progresslapse/internal/server/models"
	"github.com/smazurov/progresslapse/internal/server/repositories/categories"
	"github.com/smazurov/progresslapse/internal/server/repositories/images"
	"github.com/smazurov/progresslapse/internal/server/repositories/users"
	"github.com/smazurov/progresslapse/internal/server/repositories/videos"
)

const (
	OrderOldest = "oldest"
	OrderNewest = "newest"

	quotaWindow = 7 * 24 * time.Hour
)

// CompileRequest selects an ordered, inclusive index range of a user's
// images in one category and the playback parameters for the resulting
// video. EndIndex < 0 means "last available".
type CompileRequest struct {
	Category   string
	StartIndex int
	EndIndex   int
	FPS        float64
	Width      int
	Height     int
	Order      string
}

// Result describes a successfully compiled video.
type Result struct {
	VideoID         string
	Path            string
	Count           int
	DurationSeconds float64
	FPS             float64
	StartDate       time.Time
	EndDate         time.Time
}

// Compiler runs the decrypt → encode → encrypt → persist pipeline. Each
// Compile call owns a private scratch directory that is removed on
// every exit path, so no temporary plaintext survives the call.
type Compiler struct {
	users       users.Repository
	categories  categories.Repository
	images      images.Repository
	videos      videos.Repository
	gateway     *media.Gateway
	encoder     Encoder
	tempDir     string
	weeklyQuota int
	logger      logging.Logger

	now func() time.Time
}

func NewCompiler(users users.Repository, cats categories.Repository, imgs images.Repository,
	vids videos.Repository, gateway *media.Gateway, encoder Encoder,
	tempDir string, weeklyQuota int, logger logging.Logger) *Compiler {
	return &Compiler{
		users:       users,
		categories:  cats,
		images:      imgs,
		videos:      vids,
		gateway:     gateway,
		encoder:     encoder,
		tempDir:     tempDir,
		weeklyQuota: weeklyQuota,
		logger:      logger,
		now:         time.Now,
	}
}

// clampRange applies the inclusive-range clamping rules to n items:
// negative or out-of-range end means the last index, start is forced
// into bounds. Clamping is idempotent. A clamped start above the
// clamped end is the one range error left for the caller to reject.
func clampRange(start, end, n int) (int, int) {
	if end < 0 || end >= n {
		end = n - 1
	}
	if start < 0 {
		start = 0
	}
	if start > n-1 {
		start = n - 1
	}
	return start, end
}

func (c *Compiler) checkQuota(ctx context.Context, userID string) error {
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user.IsPremium {
		return nil
	}

	count, err := c.videos.CountCreatedSince(ctx, userID, c.now().Add(-quotaWindow))
	if err != nil {
		return fmt.Errorf("count recent videos: %w", err)
	}
	if count >= c.weeklyQuota {
		return fmt.Errorf("%w: free users can create up to %d videos per week",
			common.ErrQuotaExceeded, c.weeklyQuota)
	}
	return nil
}

// selectImages validates the request and returns the chosen frames in
// playback order. All validation happens here, before any blob is
// fetched or decrypted.
func (c *Compiler) selectImages(ctx context.Context, userID string, req CompileRequest) ([]*models.ProgressImage, *models.Category, error) {
	if strings.TrimSpace(req.Category) == "" {
		return nil, nil, fmt.Errorf("%w: category is required", common.ErrInvalidArgument)
	}

	category, err := c.categories.GetByName(ctx, req.Category)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: category is required", common.ErrInvalidArgument)
		}
		return nil, nil, fmt.Errorf("load category: %w", err)
	}

	imgs, err := c.images.ListByCategory(ctx, userID, category.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load images: %w", err)
	}
	if len(imgs) == 0 {
		return nil, nil, fmt.Errorf("%w: no images found in this category", common.ErrInvalidArgument)
	}

	if strings.ToLower(req.Order) == OrderNewest {
		for i, j := 0, len(imgs)-1; i < j; i, j = i+1, j-1 {
			imgs[i], imgs[j] = imgs[j], imgs[i]
		}
	}

	start, end := clampRange(req.StartIndex, req.EndIndex, len(imgs))
	if start > end {
		return nil, nil, fmt.Errorf("%w: start_index must be <= end_index", common.ErrInvalidArgument)
	}

	if req.FPS <= 0 {
		return nil, nil, fmt.Errorf("%w: fps must be > 0", common.ErrInvalidArgument)
	}

	return imgs[start : end+1], category, nil
}

// Compile decrypts the selected images, invokes the encoder,
// re-encrypts the output into the user's video namespace and records
// the provenance. Temporary plaintext files are confined to a per-call
// directory removed in the deferred cleanup, which runs on success,
// error, panic and context cancellation alike.
func (c *Compiler) Compile(ctx context.Context, userID string, req CompileRequest) (*Result, error) {
	if err := c.checkQuota(ctx, userID); err != nil {
		return nil, err
	}

	selected, category, err := c.selectImages(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	scratch, err := filex.NewTempDir(c.tempDir)
	if err != nil {
		return nil, err
	}
	var frames []*filex.TempFile
	defer func() {
		for _, f := range frames {
			if err := f.Close(); err != nil {
				c.logger.Warn(ctx, "temp frame cleanup failed", "error", err.Error())
			}
		}
		if err := scratch.Remove(); err != nil {
			c.logger.Warn(ctx, "scratch dir cleanup failed", "dir", scratch.Path(), "error", err.Error())
		}
	}()

	framePaths := make([]string, 0, len(selected))
	for _, img := range selected {
		frame, err := c.gateway.DecryptToTemp(ctx, img.StorageKey, userID, scratch.Path())
		if err != nil {
			return nil, fmt.Errorf("decrypt frame %s: %w", img.ID, err)
		}
		frames = append(frames, frame)
		framePaths = append(framePaths, frame.Path())
	}

	encoderFPS := int(math.Round(req.FPS))
	if encoderFPS < 1 {
		encoderFPS = 1
	}

	outPath := scratch.Join("out.mp4")
	job := EncodeJob{
		Frames:        framePaths,
		FrameDuration: 1.0 / req.FPS,
		FPS:           encoderFPS,
		Width:         req.Width,
		Height:        req.Height,
		OutPath:       outPath,
	}
	if err := c.encoder.Encode(ctx, job); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncoding, err)
	}

	out, err := os.Open(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open encoder output: %v", common.ErrEncoding, err)
	}
	defer out.Close()

	storageKey := c.videoStorageKey(userID)
	if err := c.gateway.PutEncrypted(ctx, storageKey, userID, out); err != nil {
		return nil, err
	}

	video := &models.ProgressVideo{
		UserID:     userID,
		CategoryID: category.ID,
		StorageKey: storageKey,
		IsPublic:   false,
		FPS:        req.FPS,
		StartDate:  selected[0].Date,
		EndDate:    selected[len(selected)-1].Date,
	}
	created, err := c.videos.Create(ctx, video)
	if err != nil {
		return nil, fmt.Errorf("persist video record: %w", err)
	}

	c.logger.Info(ctx, "timelapse compiled",
		"user_id", userID, "category", category.Name,
		"frames", len(selected), "storage_key", storageKey)

	return &Result{
		VideoID:         created.ID,
		Path:            "/api/media/" + storageKey,
		Count:           len(selected),
		DurationSeconds: float64(len(selected)) / req.FPS,
		FPS:             req.FPS,
		StartDate:       video.StartDate,
		EndDate:         video.EndDate,
	}, nil
}

func (c *Compiler) videoStorageKey(userID string) string {
	stamp := c.now().UTC().Format("20060102T150405")
	return media.VideoKeyPrefix(userID) + stamp + "_" + uuid.NewString()[:8] + ".mp4"
}
