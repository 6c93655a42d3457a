package group

import (
	"strings"

	"github.com/adisurya/campushub/internal"
)

// Group rows keep their member and permission sets as comma-joined username
// strings. The encoding is a compatibility requirement with existing data;
// all mutation goes through the locked read-modify-write in the repository
// so the denormalization stays race-free.
type Group struct {
	ID                     int64  `json:"id" gorm:"primaryKey"`
	Name                   string `json:"name" gorm:"uniqueIndex;not null"`
	Admins                 string `json:"-" gorm:"column:admin;not null"`
	NotPublic              int    `json:"not_public" gorm:"column:not_public;default:0"`
	CanPostAnnouncement    string `json:"-" gorm:"column:can_post_announcement;not null"`
	CanPostAssessment      string `json:"-" gorm:"column:can_post_assessment;not null"`
	CanPostPull            string `json:"-" gorm:"column:can_post_pull;not null"`
	CanPostRoomReservation string `json:"-" gorm:"column:can_post_room_reservation;not null"`
	Members                string `json:"-" gorm:"column:member;not null"`
	Capabilities           string `json:"-" gorm:"column:capabilities"`
}

func (Group) TableName() string {
	return "user_groups"
}

// Ref is the id/name pair returned by listing endpoints.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PostAction names one of the four posting-permission dimensions.
type PostAction string

const (
	ActionAnnouncement    PostAction = "announcement"
	ActionAssessment      PostAction = "assessment"
	ActionPull            PostAction = "pull"
	ActionRoomReservation PostAction = "room_reservation"
)

func (a PostAction) Valid() bool {
	switch a {
	case ActionAnnouncement, ActionAssessment, ActionPull, ActionRoomReservation:
		return true
	}
	return false
}

// Capabilities granted by group membership. A user's effective capabilities
// are the union over every group they belong to.
const (
	CapabilityGlobalAdmin = "global_admin"
	CapabilityRoomAdmin   = "room_admin"
)

func (g *Group) IsPublic() bool {
	return g.NotPublic == 0
}

func (g *Group) IsMember(username string) bool {
	return SetHas(g.Members, username)
}

func (g *Group) IsAdmin(username string) bool {
	return SetHas(g.Admins, username)
}

func (g *Group) GrantsCapability(capability string) bool {
	return SetHas(g.Capabilities, capability)
}

// PermissionSet returns the delimited set for one posting dimension.
func (g *Group) PermissionSet(action PostAction) string {
	switch action {
	case ActionAnnouncement:
		return g.CanPostAnnouncement
	case ActionAssessment:
		return g.CanPostAssessment
	case ActionPull:
		return g.CanPostPull
	case ActionRoomReservation:
		return g.CanPostRoomReservation
	}
	return ""
}

func (g *Group) setPermissionSet(action PostAction, value string) {
	switch action {
	case ActionAnnouncement:
		g.CanPostAnnouncement = value
	case ActionAssessment:
		g.CanPostAssessment = value
	case ActionPull:
		g.CanPostPull = value
	case ActionRoomReservation:
		g.CanPostRoomReservation = value
	}
}

// ---- delimited-set codec ----

// SplitSet decodes a comma-joined set. Empty input and empty elements decode
// to nothing, so "a,,b" and "a,b" are the same set.
func SplitSet(encoded string) []string {
	if encoded == "" {
		return nil
	}
	parts := strings.Split(encoded, ",")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func JoinSet(members []string) string {
	return strings.Join(members, ",")
}

func SetHas(encoded, member string) bool {
	for _, m := range SplitSet(encoded) {
		if m == member {
			return true
		}
	}
	return false
}

// SetAdd returns the encoding with member present; adding an existing member
// is a no-op.
func SetAdd(encoded, member string) string {
	if SetHas(encoded, member) {
		return encoded
	}
	members := append(SplitSet(encoded), member)
	return JoinSet(members)
}

// SetRemove returns the encoding with member absent; removing an absent
// member is a no-op.
func SetRemove(encoded, member string) string {
	members := SplitSet(encoded)
	out := members[:0]
	for _, m := range members {
		if m != member {
			out = append(out, m)
		}
	}
	return JoinSet(out)
}

// ---- domain errors ----

var (
	ErrGroupPrivate = internal.NewForbiddenError("group is not public", internal.ErrCodeGroupPrivate)
	ErrNotMember    = internal.NewForbiddenError("user is not a member of the group", internal.ErrCodeNotMember)
)
