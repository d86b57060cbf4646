// Package feedgate is a development gateway for the campus feed client: an
// in-memory backend speaking the same form-encoded RPC the production PHP
// endpoints speak. It exists for demos and for exercising the client against
// authoritative reaction and lifecycle semantics. Nothing persists.
package feedgate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/campuslink/campusfeed/internal/feed"
)

// Post lifecycle buckets.
const (
	statusActive  = "active"
	statusArchive = "archive"
	statusTrash   = "trash"
)

const timeLayout = "2006-01-02 15:04:05"

// Store errors surface to the client as success=false envelopes.
var (
	ErrNotFound  = errors.New("post not found")
	ErrForbidden = errors.New("not the post owner")
)

type postRecord struct {
	id           string
	userID       string
	userName     string
	caption      string
	createdAt    time.Time
	imageFiles   string
	imageTypes   string
	approverName string
	status       string
	shareCount   int
}

// shareRecord is a shared post with its original snapshot captured at share
// time, so later edits to the original never rewrite existing shares.
type shareRecord struct {
	id        string
	sharerID  string
	sharer    string
	caption   string
	createdAt time.Time
	status    string

	origID        string
	origUserID    string
	origUserName  string
	origCaption   string
	origCreatedAt time.Time
	origImages    string
	origTypes     string
}

type commentRecord struct {
	id        string
	postKind  feed.Kind
	postID    string
	userID    string
	userName  string
	message   string
	createdAt time.Time
}

// Store is the mutex-guarded in-memory backend state.
type Store struct {
	mu       sync.Mutex
	posts    map[string]*postRecord
	shares   map[string]*shareRecord
	comments []*commentRecord

	// reactions holds the per-user-per-post singleton, keyed by the post's
	// kind-qualified key then user id.
	reactions map[string]map[string]feed.ReactionKind

	users  map[string]string
	nextID int
	now    func() time.Time
}

// NewStore creates an empty backend store.
func NewStore() *Store {
	return &Store{
		posts:     make(map[string]*postRecord),
		shares:    make(map[string]*shareRecord),
		reactions: make(map[string]map[string]feed.ReactionKind),
		users:     make(map[string]string),
		nextID:    1,
		now:       time.Now,
	}
}

func (s *Store) nextIDLocked() string {
	id := strconv.Itoa(s.nextID)
	s.nextID++
	return id
}

// AddUser registers a display name for an id.
func (s *Store) AddUser(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = name
}

func (s *Store) userName(id string) string {
	if name, ok := s.users[id]; ok {
		return name
	}
	return "User " + id
}

// CreatePost adds an active regular post and returns its id.
func (s *Store) CreatePost(userID, caption, imageFiles, imageTypes string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &postRecord{
		id:         s.nextIDLocked(),
		userID:     userID,
		userName:   s.userName(userID),
		caption:    caption,
		createdAt:  s.now(),
		imageFiles: imageFiles,
		imageTypes: imageTypes,
		status:     statusActive,
	}
	s.posts[p.id] = p
	return p.id
}

// React applies the per-user-per-post singleton rule and returns the action
// the client must reconcile: no prior reaction means added, the same kind
// again means removed, a different kind means changed.
func (s *Store) React(userID string, key feed.PostKey, kind feed.ReactionKind) (feed.Action, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown reaction kind %q", kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.postExistsLocked(key) {
		return "", ErrNotFound
	}

	slot := s.reactions[key.String()]
	if slot == nil {
		slot = make(map[string]feed.ReactionKind)
		s.reactions[key.String()] = slot
	}

	prev, had := slot[userID]
	switch {
	case !had:
		slot[userID] = kind
		return feed.ActionAdded, nil
	case prev == kind:
		delete(slot, userID)
		return feed.ActionRemoved, nil
	default:
		slot[userID] = kind
		return feed.ActionChanged, nil
	}
}

func (s *Store) postExistsLocked(key feed.PostKey) bool {
	if key.Kind == feed.KindShared {
		_, ok := s.shares[key.ID]
		return ok
	}
	_, ok := s.posts[key.ID]
	return ok
}

// ListActive returns every active post and share as wire records, newest
// records in insertion order, with reaction aggregates resolved for viewer.
func (s *Store) ListActive(viewerID string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []map[string]any
	for _, id := range s.sortedPostIDsLocked() {
		if p := s.posts[id]; p.status == statusActive {
			out = append(out, s.postWireLocked(p, viewerID))
		}
	}
	for _, id := range s.sortedShareIDsLocked() {
		if sh := s.shares[id]; sh.status == statusActive {
			out = append(out, s.shareWireLocked(sh, viewerID))
		}
	}
	return out
}

// ListInactive returns ownerID's posts sitting in the given bucket.
func (s *Store) ListInactive(ownerID, status string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []map[string]any
	for _, id := range s.sortedPostIDsLocked() {
		if p := s.posts[id]; p.status == status && p.userID == ownerID {
			out = append(out, s.postWireLocked(p, ownerID))
		}
	}
	for _, id := range s.sortedShareIDsLocked() {
		if sh := s.shares[id]; sh.status == status && sh.sharerID == ownerID {
			out = append(out, s.shareWireLocked(sh, ownerID))
		}
	}
	return out
}

func (s *Store) sortedPostIDsLocked() []string {
	return sortNumeric(s.posts)
}

func (s *Store) sortedShareIDsLocked() []string {
	return sortNumeric(s.shares)
}

func sortNumeric[T any](m map[string]*T) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && numLess(ids[j], ids[j-1]); j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

func numLess(a, b string) bool {
	na, _ := strconv.Atoi(a)
	nb, _ := strconv.Atoi(b)
	return na < nb
}

func (s *Store) countsLocked(key feed.PostKey, viewerID string) map[string]any {
	slot := s.reactions[key.String()]
	byKind := make(map[feed.ReactionKind]int)
	for _, k := range slot {
		byKind[k]++
	}
	wire := map[string]any{
		"like_count":      byKind[feed.ReactionLike],
		"love_count":      byKind[feed.ReactionLove],
		"haha_count":      byKind[feed.ReactionHaha],
		"sad_count":       byKind[feed.ReactionSad],
		"angry_count":     byKind[feed.ReactionAngry],
		"wow_count":       byKind[feed.ReactionWow],
		"total_reactions": len(slot),
	}
	if own, ok := slot[viewerID]; ok {
		wire["user_reaction"] = string(own)
	}
	return wire
}

func (s *Store) postWireLocked(p *postRecord, viewerID string) map[string]any {
	wire := s.countsLocked(feed.PostKey{Kind: feed.KindRegular, ID: p.id}, viewerID)
	wire["post_id"] = p.id
	wire["post_caption"] = p.caption
	wire["post_createdAt"] = p.createdAt.Format(timeLayout)
	wire["post_userId"] = p.userID
	wire["user_name"] = p.userName
	wire["image_files"] = p.imageFiles
	wire["image_upload_types"] = p.imageTypes
	wire["approver_name"] = p.approverName
	wire["share_count"] = p.shareCount
	return wire
}

func (s *Store) shareWireLocked(sh *shareRecord, viewerID string) map[string]any {
	wire := s.countsLocked(feed.PostKey{Kind: feed.KindShared, ID: sh.id}, viewerID)
	wire["postS_id"] = sh.id
	wire["postS_caption"] = sh.caption
	wire["postS_createdAt"] = sh.createdAt.Format(timeLayout)
	wire["postS_userId"] = sh.sharerID
	wire["user_name"] = sh.sharer
	wire["original_post_id"] = sh.origID
	wire["original_caption"] = sh.origCaption
	wire["original_userId"] = sh.origUserID
	wire["original_user_name"] = sh.origUserName
	wire["original_createdAt"] = sh.origCreatedAt.Format(timeLayout)
	wire["original_images"] = sh.origImages
	wire["original_upload_types"] = sh.origTypes
	wire["share_count"] = 0
	return wire
}

// Comments returns a post's comments oldest first, as wire records.
func (s *Store) Comments(key feed.PostKey) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []map[string]any
	for _, cm := range s.comments {
		if cm.postKind != key.Kind || cm.postID != key.ID {
			continue
		}
		if key.Kind == feed.KindShared {
			out = append(out, map[string]any{
				"commentS_id":        cm.id,
				"commentS_message":   cm.message,
				"commentS_createdAt": cm.createdAt.Format(timeLayout),
				"commentS_userId":    cm.userID,
				"user_name":          cm.userName,
			})
			continue
		}
		out = append(out, map[string]any{
			"comment_id":        cm.id,
			"comment_message":   cm.message,
			"comment_createdAt": cm.createdAt.Format(timeLayout),
			"comment_userId":    cm.userID,
			"user_name":         cm.userName,
		})
	}
	return out
}

// AddComment appends a comment to a post's thread.
func (s *Store) AddComment(userID string, key feed.PostKey, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", errors.New("comment message is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.postExistsLocked(key) {
		return "", ErrNotFound
	}
	cm := &commentRecord{
		id:        s.nextIDLocked(),
		postKind:  key.Kind,
		postID:    key.ID,
		userID:    userID,
		userName:  s.userName(userID),
		message:   message,
		createdAt: s.now(),
	}
	s.comments = append(s.comments, cm)
	return cm.id, nil
}

// EditComment rewrites the author's own comment.
func (s *Store) EditComment(userID string, kind feed.Kind, commentID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cm := range s.comments {
		if cm.postKind == kind && cm.id == commentID {
			if cm.userID != userID {
				return ErrForbidden
			}
			cm.message = message
			return nil
		}
	}
	return errors.New("comment not found")
}

// DeleteComment removes the author's own comment.
func (s *Store) DeleteComment(userID string, kind feed.Kind, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cm := range s.comments {
		if cm.postKind == kind && cm.id == commentID {
			if cm.userID != userID {
				return ErrForbidden
			}
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			return nil
		}
	}
	return errors.New("comment not found")
}

// UpdateCaption rewrites the owner's caption. For a share the share caption
// changes, never the original snapshot.
func (s *Store) UpdateCaption(userID string, key feed.PostKey, caption string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key.Kind == feed.KindShared {
		sh, ok := s.shares[key.ID]
		if !ok {
			return ErrNotFound
		}
		if sh.sharerID != userID {
			return ErrForbidden
		}
		sh.caption = caption
		return nil
	}
	p, ok := s.posts[key.ID]
	if !ok {
		return ErrNotFound
	}
	if p.userID != userID {
		return ErrForbidden
	}
	p.caption = caption
	return nil
}

// UpdateStatus moves an active post to archive or trash.
func (s *Store) UpdateStatus(userID string, key feed.PostKey, status string) error {
	if status != statusArchive && status != statusTrash {
		return fmt.Errorf("unknown status %q", status)
	}
	return s.setStatus(userID, key, status, statusActive)
}

// Restore returns an archived or trashed post to the active set.
func (s *Store) Restore(userID string, key feed.PostKey) error {
	return s.setStatus(userID, key, statusActive, "")
}

func (s *Store) setStatus(userID string, key feed.PostKey, to, from string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key.Kind == feed.KindShared {
		sh, ok := s.shares[key.ID]
		if !ok {
			return ErrNotFound
		}
		if sh.sharerID != userID {
			return ErrForbidden
		}
		if from != "" && sh.status != from {
			return fmt.Errorf("post is %s, not %s", sh.status, from)
		}
		sh.status = to
		return nil
	}
	p, ok := s.posts[key.ID]
	if !ok {
		return ErrNotFound
	}
	if p.userID != userID {
		return ErrForbidden
	}
	if from != "" && p.status != from {
		return fmt.Errorf("post is %s, not %s", p.status, from)
	}
	p.status = to
	return nil
}

// Delete permanently removes a post sitting in the target bucket, together
// with its reactions and comments.
func (s *Store) Delete(userID string, key feed.PostKey, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key.Kind == feed.KindShared {
		sh, ok := s.shares[key.ID]
		if !ok {
			return ErrNotFound
		}
		if sh.sharerID != userID {
			return ErrForbidden
		}
		if sh.status != target {
			return fmt.Errorf("post is %s, not %s", sh.status, target)
		}
		delete(s.shares, key.ID)
	} else {
		p, ok := s.posts[key.ID]
		if !ok {
			return ErrNotFound
		}
		if p.userID != userID {
			return ErrForbidden
		}
		if p.status != target {
			return fmt.Errorf("post is %s, not %s", p.status, target)
		}
		delete(s.posts, key.ID)
	}

	delete(s.reactions, key.String())
	kept := s.comments[:0]
	for _, cm := range s.comments {
		if cm.postKind != key.Kind || cm.postID != key.ID {
			kept = append(kept, cm)
		}
	}
	s.comments = kept
	return nil
}

// Share creates a shared post wrapping postID, snapshotting the original's
// current fields, and bumps the original's share count.
func (s *Store) Share(userID, postID, caption string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orig, ok := s.posts[postID]
	if !ok {
		return "", ErrNotFound
	}
	sh := &shareRecord{
		id:            s.nextIDLocked(),
		sharerID:      userID,
		sharer:        s.userName(userID),
		caption:       caption,
		createdAt:     s.now(),
		status:        statusActive,
		origID:        orig.id,
		origUserID:    orig.userID,
		origUserName:  orig.userName,
		origCaption:   orig.caption,
		origCreatedAt: orig.createdAt,
		origImages:    orig.imageFiles,
		origTypes:     orig.imageTypes,
	}
	s.shares[sh.id] = sh
	orig.shareCount++
	return sh.id, nil
}

// Seed loads a small demo data set.
func (s *Store) Seed() {
	s.AddUser("1", "Alice Navarro")
	s.AddUser("2", "Bola Adeyemi")
	s.AddUser("3", "Chidi Okafor")

	p1 := s.CreatePost("1", "Orientation week photos are up!", "1AbcDriveId7,1DefDriveId9", "google_drive,google_drive")
	s.CreatePost("2", "Library extends hours during finals.", "", "")
	p3 := s.CreatePost("3", "Intramurals signup closes Friday.", "intramurals.jpg", "local")

	_, _ = s.React("2", feed.PostKey{Kind: feed.KindRegular, ID: p1}, feed.ReactionLove)
	_, _ = s.React("3", feed.PostKey{Kind: feed.KindRegular, ID: p1}, feed.ReactionLike)
	_, _ = s.AddComment("2", feed.PostKey{Kind: feed.KindRegular, ID: p1}, "Great shots!")

	shareID, _ := s.Share("2", p3, "Sign up, everyone")
	_, _ = s.React("1", feed.PostKey{Kind: feed.KindShared, ID: shareID}, feed.ReactionWow)
}
