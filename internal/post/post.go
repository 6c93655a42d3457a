package post

import (
	"strconv"
	"time"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/group"
)

const (
	TypeAnnouncement = "announcement"
	TypeAssessment   = "assessment"
	TypePull         = "pull"
)

// PermissionAction maps a post type onto the group permission dimension
// that gates creating it.
func PermissionAction(postType string) (group.PostAction, bool) {
	switch postType {
	case TypeAnnouncement:
		return group.ActionAnnouncement, true
	case TypeAssessment:
		return group.ActionAssessment, true
	case TypePull:
		return group.ActionPull, true
	}
	return "", false
}

// Post is authored by a user in a group's name. PermissionSet is a
// comma-joined list of group ids allowed to view it; empty means public.
// A restricted set always contains the authoring group.
type Post struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	Username      string    `json:"username" gorm:"column:username;not null;index"`
	GroupID       int64     `json:"group_id" gorm:"column:group_id;not null;index"`
	Type          string    `json:"type" gorm:"column:type;not null"`
	Title         string    `json:"title" gorm:"not null"`
	Content       string    `json:"content"`
	PermissionSet string    `json:"permission_set" gorm:"column:permission_set"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) IsPublic() bool {
	return p.PermissionSet == ""
}

// Pull holds the vote tallies of a poll-type post.
type Pull struct {
	PostID   int64 `json:"post_id" gorm:"primaryKey;column:post_id"`
	Agree    int   `json:"agree" gorm:"default:0"`
	Disagree int   `json:"disagree" gorm:"default:0"`
}

func (Pull) TableName() string {
	return "pulls"
}

// Follow links a user to a post on their timeline.
type Follow struct {
	ID       int64  `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"column:username;not null;uniqueIndex:idx_follow"`
	PostID   int64  `json:"post_id" gorm:"column:post_id;not null;uniqueIndex:idx_follow"`
}

func (Follow) TableName() string {
	return "post_follows"
}

const (
	OpinionAgree    = "agree"
	OpinionDisagree = "disagree"
)

// EncodePermissionSet joins group ids, always folding the authoring group
// in: a group can always see what it posted.
func EncodePermissionSet(groupIDs []int64, postAs int64) string {
	seen := map[int64]struct{}{postAs: {}}
	encoded := strconv.FormatInt(postAs, 10)
	for _, id := range groupIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		encoded += "," + strconv.FormatInt(id, 10)
	}
	return encoded
}

var (
	ErrNotPull     = internal.NewValidationError("post is not a pull", internal.ErrCodeInvalidAction)
	ErrNotAuthor   = internal.NewForbiddenError("only the author may modify a post", internal.ErrCodeNotRequester)
	ErrCannotView  = internal.NewForbiddenError("post is restricted", internal.ErrCodeNoCapability)
	ErrBadPostType = internal.NewValidationError("unknown post type", internal.ErrCodeInvalidAction)
)
