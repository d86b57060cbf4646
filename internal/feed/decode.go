package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Decode errors. A shared post without a sharer or without its original
// snapshot cannot be rendered and is rejected at the boundary.
var (
	ErrMissingSharer   = errors.New("shared post is missing sharer identity")
	ErrMissingOriginal = errors.New("shared post is missing original post snapshot")
	ErrMissingPostID   = errors.New("post record has no id")
)

// timeLayout is the backend's datetime format.
const timeLayout = "2006-01-02 15:04:05"

// flexInt decodes JSON numbers that the backend sometimes serializes as
// strings ("3" vs 3).
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("parse count %q: %w", data, err)
	}
	*f = flexInt(n)
	return nil
}

// flexString tolerates numeric ids.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*f = ""
		return nil
	}
	*f = flexString(bytes.Trim(data, `"`))
	return nil
}

// rawPost mirrors one record of the gateway's posts-with-reactions payload.
// Both variants arrive in the same array; the presence of postS_id decides
// which variant a record is.
type rawPost struct {
	PostID           flexString `json:"post_id"`
	PostCaption      string     `json:"post_caption"`
	PostCreatedAt    string     `json:"post_createdAt"`
	PostUserID       flexString `json:"post_userId"`
	UserName         string     `json:"user_name"`
	ImageFiles       string     `json:"image_files"`
	ImageUploadTypes string     `json:"image_upload_types"`
	ApproverName     string     `json:"approver_name"`

	PostSID        flexString `json:"postS_id"`
	PostSCaption   string     `json:"postS_caption"`
	PostSUserID    flexString `json:"postS_userId"`
	PostSCreatedAt string     `json:"postS_createdAt"`

	OriginalID        flexString `json:"original_post_id"`
	OriginalCaption   string     `json:"original_caption"`
	OriginalUserID    flexString `json:"original_userId"`
	OriginalUserName  string     `json:"original_user_name"`
	OriginalCreatedAt string     `json:"original_createdAt"`
	OriginalImages    string     `json:"original_images"`
	OriginalTypes     string     `json:"original_upload_types"`

	LikeCount      flexInt `json:"like_count"`
	LoveCount      flexInt `json:"love_count"`
	HahaCount      flexInt `json:"haha_count"`
	SadCount       flexInt `json:"sad_count"`
	AngryCount     flexInt `json:"angry_count"`
	WowCount       flexInt `json:"wow_count"`
	TotalReactions flexInt `json:"total_reactions"`
	ShareCount     flexInt `json:"share_count"`
	UserReaction   string  `json:"user_reaction"`
}

// DecodePost resolves one raw gateway record into its variant.
func DecodePost(data json.RawMessage) (Post, error) {
	var raw rawPost
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode post record: %w", err)
	}

	counts := NewCounts()
	counts.ByKind[ReactionLike] = int(raw.LikeCount)
	counts.ByKind[ReactionLove] = int(raw.LoveCount)
	counts.ByKind[ReactionHaha] = int(raw.HahaCount)
	counts.ByKind[ReactionSad] = int(raw.SadCount)
	counts.ByKind[ReactionAngry] = int(raw.AngryCount)
	counts.ByKind[ReactionWow] = int(raw.WowCount)
	counts.Total = int(raw.TotalReactions)
	if k := ReactionKind(raw.UserReaction); k.Valid() {
		counts.Own = k
	}

	if raw.PostSID != "" {
		if raw.PostSUserID == "" {
			return nil, fmt.Errorf("share %s: %w", raw.PostSID, ErrMissingSharer)
		}
		if raw.OriginalID == "" && raw.OriginalCaption == "" && raw.OriginalUserName == "" {
			return nil, fmt.Errorf("share %s: %w", raw.PostSID, ErrMissingOriginal)
		}
		return &SharedPost{
			ID:        string(raw.PostSID),
			Sharer:    User{ID: string(raw.PostSUserID), Name: raw.UserName},
			Caption:   raw.PostSCaption,
			CreatedAt: ParseTime(raw.PostSCreatedAt),
			Original: OriginalPost{
				ID:        string(raw.OriginalID),
				Author:    User{ID: string(raw.OriginalUserID), Name: raw.OriginalUserName},
				Caption:   raw.OriginalCaption,
				CreatedAt: ParseTime(raw.OriginalCreatedAt),
				Images:    splitImages(raw.OriginalImages, raw.OriginalTypes),
			},
			Reactions:  counts,
			ShareCount: int(raw.ShareCount),
		}, nil
	}

	if raw.PostID == "" {
		return nil, ErrMissingPostID
	}
	return &RegularPost{
		ID:           string(raw.PostID),
		User:         User{ID: string(raw.PostUserID), Name: raw.UserName},
		Caption:      raw.PostCaption,
		CreatedAt:    ParseTime(raw.PostCreatedAt),
		Images:       splitImages(raw.ImageFiles, raw.ImageUploadTypes),
		Reactions:    counts,
		ShareCount:   int(raw.ShareCount),
		ApproverName: raw.ApproverName,
	}, nil
}

// DecodePosts resolves a gateway post array, preserving order. Records that
// fail to decode are skipped and reported so one malformed row does not blank
// the whole feed.
func DecodePosts(data []json.RawMessage) ([]Post, []error) {
	posts := make([]Post, 0, len(data))
	var errs []error
	for i, rec := range data {
		p, err := DecodePost(rec)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		posts = append(posts, p)
	}
	return posts, errs
}

// splitImages zips the comma-joined image list with its parallel upload-type
// list. A missing type entry defaults to local, matching the legacy rows that
// predate drive uploads.
func splitImages(files, types string) []ImageRef {
	files = strings.TrimSpace(files)
	if files == "" {
		return nil
	}
	names := strings.Split(files, ",")
	kinds := strings.Split(types, ",")
	refs := make([]ImageRef, 0, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		src := SourceLocal
		if i < len(kinds) && strings.TrimSpace(kinds[i]) == string(SourceGoogleDrive) {
			src = SourceGoogleDrive
		}
		refs = append(refs, ImageRef{Ref: name, Source: src})
	}
	return refs
}

// ParseTime parses the backend's datetime strings, tolerating RFC 3339.
// Blank or unparseable input yields the zero time.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
