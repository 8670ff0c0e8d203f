package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/pkg/client"
	"github.com/kengakuru/kibanda/pkg/domain"
)

// AvatarBucket is the storage bucket avatars are uploaded to.
const AvatarBucket = "avatars"

// UpdateProfile applies a partial update to the signed-in user's profile and
// replaces the identity with the stored row.
func (c *Controller) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) error {
	if c.store.Identity() == nil {
		return apperr.New(apperr.State, MsgNotLoggedIn)
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return apperr.New(apperr.Validation, MsgNameRequired)
		}
		upd.Name = &name
	}
	if upd.Email != nil {
		email := NormalizeEmail(*upd.Email)
		if !emailPattern.MatchString(email) {
			return apperr.New(apperr.Validation, MsgInvalidEmail)
		}
		upd.Email = &email
	}
	if upd.Empty() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	ticket := c.w.Begin()
	cur := c.store.Identity()
	if cur == nil {
		return apperr.New(apperr.State, MsgNotLoggedIn)
	}

	u, err := c.backend.UpdateProfile(ctx, cur.ID, upd)
	if err != nil {
		c.log.Warn().Err(err).Str("op", "updateProfile").Str("user_id", cur.ID.String()).Msg("profile update failed")
		if client.IsUniqueViolation(err) {
			return apperr.Wrap(apperr.Conflict, MsgAccountExists, err)
		}
		return transportError(err)
	}
	if !c.w.Authenticate(ticket, *u) {
		return apperr.New(apperr.State, MsgNotLoggedIn)
	}
	c.log.Info().Str("op", "updateProfile").Str("user_id", u.ID.String()).Msg("profile updated")
	return nil
}

// UploadAvatar uploads the image at localPath as the signed-in user's avatar,
// points the profile at it and returns its public URL. The identity in the
// store is replaced with the updated row.
func (c *Controller) UploadAvatar(ctx context.Context, localPath string) (string, error) {
	if c.store.Identity() == nil {
		return "", apperr.New(apperr.State, MsgNotLoggedIn)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	ticket := c.w.Begin()
	cur := c.store.Identity()
	if cur == nil {
		return "", apperr.New(apperr.State, MsgNotLoggedIn)
	}
	log := c.log.With().Str("op", "uploadAvatar").Str("user_id", cur.ID.String()).Logger()

	localPath = strings.TrimPrefix(localPath, "file://")
	f, err := os.Open(localPath)
	if err != nil {
		return "", apperr.Wrap(apperr.Validation, MsgImageUnreadable, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	ext, contentType := avatarType(localPath)
	objectPath := AvatarPath(cur.ID.String(), c.now().UnixMilli(), ext)

	if err := c.backend.Upload(ctx, AvatarBucket, objectPath, f, client.UploadOptions{ContentType: contentType, Upsert: true}); err != nil {
		log.Warn().Err(err).Msg("avatar upload failed")
		return "", transportError(err)
	}
	publicURL := c.backend.PublicURL(AvatarBucket, objectPath)

	u, err := c.backend.UpdateProfile(ctx, cur.ID, domain.ProfileUpdate{AvatarURL: &publicURL})
	if err != nil {
		log.Warn().Err(err).Msg("avatar reference update failed")
		return "", transportError(err)
	}
	c.w.Authenticate(ticket, *u)
	log.Info().Str("path", objectPath).Msg("avatar uploaded")
	return publicURL, nil
}

// AvatarPath returns the storage path of an avatar uploaded at unixMillis.
// The user id is always the first path component.
func AvatarPath(userID string, unixMillis int64, ext string) string {
	return fmt.Sprintf("%s/avatar-%d.%s", userID, unixMillis, ext)
}

var imageTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"heic": "image/heic",
	"heif": "image/heif",
}

// avatarType returns the file extension to store under and the content
// type to send. A missing extension becomes jpg; an unknown one is kept
// but sent as JPEG.
func avatarType(path string) (ext, contentType string) {
	ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" || strings.ContainsAny(ext, `/\?#`) {
		ext = "jpg"
	}
	if ct, ok := imageTypes[ext]; ok {
		return ext, ct
	}
	return ext, "image/jpeg"
}
